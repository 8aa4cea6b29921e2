package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrEmptyQuery      = errors.New("search query is empty")
	ErrDuplicateID     = errors.New("duplicate product id")
	ErrInvalidProduct  = errors.New("product id is required and price must not be negative")
)
