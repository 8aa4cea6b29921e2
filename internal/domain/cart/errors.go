package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrQuantityLimit   = errors.New("quantity exceeds the per-line limit")
	ErrMissingProduct  = errors.New("product id is required")
)
