package evidence

import "fmt"

// StorageError wraps a failure in a storage backend with the backend name and
// the operation that failed.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

// NewStorageError builds a StorageError.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("evidence storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error { return e.Err }

// RecorderError reports a record that could not be enqueued or written.
type RecorderError struct {
	RecordID string
	Err      error
}

// NewRecorderError builds a RecorderError.
func NewRecorderError(recordID string, err error) *RecorderError {
	return &RecorderError{RecordID: recordID, Err: err}
}

// Error implements the error interface.
func (e *RecorderError) Error() string {
	return fmt.Sprintf("evidence recorder: record %s: %v", e.RecordID, e.Err)
}

// Unwrap returns the underlying error.
func (e *RecorderError) Unwrap() error { return e.Err }
