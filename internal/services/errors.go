package services

import (
	"errors"
	"fmt"
)

// Validation errors shared by the cart and checkout services. Handlers map
// them to HTTP status codes with errors.Is / errors.As.
var (
	// ErrNotAuthenticated indicates no user identity was supplied.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidInput indicates a malformed or missing request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the record exists but belongs to another user.
	ErrForbidden = errors.New("forbidden")
)

// StockExceededError rejects a single quantity change that exceeds the
// product's current stock. Used by the update path, which hard-rejects
// instead of clamping.
type StockExceededError struct {
	Available int
}

func (e *StockExceededError) Error() string {
	return fmt.Sprintf("Only %d items available in stock", e.Available)
}

// StockIssue describes one cart item whose quantity exceeds current stock.
type StockIssue struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockConflictError aborts a checkout whose cart no longer fits current
// stock. It carries every offending item so the client can show them all.
type StockConflictError struct {
	Issues []StockIssue
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("stock issues detected for %d item(s)", len(e.Issues))
}
