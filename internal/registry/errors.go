package registry

import (
	"fmt"
	"sort"
	"strings"
)

// ConfigError reports a reference to a site key that is not present in the
// static site configuration. It is raised before any store is written.
type ConfigError struct {
	SiteKey string
	Valid   []string
}

func (e *ConfigError) Error() string {
	valid := append([]string(nil), e.Valid...)
	sort.Strings(valid)
	return fmt.Sprintf("unknown site %q (valid sites: %s)", e.SiteKey, strings.Join(valid, ", "))
}

// ValidationError reports operator input rejected at the mutation boundary:
// an unparseable date, a malformed window, a non-positive area. Nothing has
// been written when it is returned.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
