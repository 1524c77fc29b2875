package inventory

import "errors"

var (
	// ErrNotFound means the update/delete matched zero rows for this user.
	ErrNotFound = errors.New("Diamond not found")
	// ErrDuplicateStock means the stock number already exists in this user's inventory.
	ErrDuplicateStock = errors.New("Stock number already exists")
	// ErrInvalidStockNumber means the target stock number is empty or malformed.
	ErrInvalidStockNumber = errors.New("Invalid stock number format")
)
