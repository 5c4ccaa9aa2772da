package registry

import "sync"

// runBatch fans n jobs out to a bounded pool of workers and returns results
// in job order. Every job owns its own group's files, so jobs never contend;
// the per-group write stays the atomic unit.
func runBatch[T any](workers, n int, job func(i int) T) []T {
	if n == 0 {
		return nil
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	results := make([]T, n)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = job(i)
			}
		}()
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}
