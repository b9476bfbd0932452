package ledger

import "errors"

// Ledger error taxonomy. Every operation that fails with one of these
// leaves the ledger completely unmodified; the boundary layer maps them
// to a {success:false, message} response.
var (
	// ErrInvalidOrder rejects orders with non-positive price or shares.
	ErrInvalidOrder = errors.New("price and shares must be positive")

	// ErrInsufficientFunds rejects buys whose total cost exceeds cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNoPosition rejects sells of a stock that is not held.
	ErrNoPosition = errors.New("no position in this stock")

	// ErrInsufficientShares rejects sells of more shares than held.
	ErrInsufficientShares = errors.New("insufficient shares in position")
)
