package order

import "errors"

var (
	ErrMissingBuyer = errors.New("buyer name is required")
	ErrNoItems      = errors.New("order must contain at least one item")
	ErrMissingID    = errors.New("order id is required")
)
