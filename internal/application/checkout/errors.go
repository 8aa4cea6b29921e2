package checkout

import (
	"errors"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/catalog"
	"shopcart/internal/domain/order"
)

var (
	ErrEmptyCart     = errors.New("cart is empty")
	ErrMissingBuyer  = order.ErrMissingBuyer
	ErrOrderNotFound = errors.New("order not found")
)

// IsValidation reports whether err rejected a command before any state changed
// because of bad input.
func IsValidation(err error) bool {
	return errors.Is(err, cart.ErrInvalidQuantity) ||
		errors.Is(err, cart.ErrQuantityLimit) ||
		errors.Is(err, cart.ErrMissingProduct) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrMissingBuyer) ||
		errors.Is(err, catalog.ErrEmptyQuery)
}

// IsLookup reports whether err names a product or order that does not exist.
func IsLookup(err error) bool {
	return errors.Is(err, catalog.ErrProductNotFound) || errors.Is(err, ErrOrderNotFound)
}
