package folio

import "fmt"

// PersistenceError reports that the post list could not be written to its
// slot. The in-memory state is left as it was before the failed operation.
type PersistenceError struct {
	Op  string // create, update, delete, reset
	Key string // slot name
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
