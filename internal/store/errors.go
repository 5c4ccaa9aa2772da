package store

import "fmt"

// NotFoundError reports that a referenced resource does not exist. Kind
// names what was missing: a module in the roster, a document on disk, or a
// module entry inside an existing document.
type NotFoundError struct {
	Kind string // "module", "document", "entry"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// DuplicateError reports an attempt to append a module ID that is already
// present in the roster.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("module %q already registered", e.ID)
}
