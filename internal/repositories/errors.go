package repositories

import "errors"

// Sentinel errors shared by all repository implementations. Callers classify
// failures with errors.Is; the wrapping message carries the record identity.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrInsufficientStock indicates a conditional stock decrement matched no
	// row, i.e. the decrement would have driven stock negative.
	ErrInsufficientStock = errors.New("insufficient stock")
)
