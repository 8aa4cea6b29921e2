package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is an immutable catalog entry. Carts refer to it by ID.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

func NewProduct(id, name string, price decimal.Decimal) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" || price.IsNegative() {
		return Product{}, ErrInvalidProduct
	}
	return Product{ID: id, Name: name, Price: price}, nil
}

// DefaultProducts is the sample catalog shipped with the application.
func DefaultProducts() []Product {
	return []Product{
		{ID: "P001", Name: "Wireless Mouse", Price: decimal.NewFromInt(599)},
		{ID: "P002", Name: "Mechanical Keyboard", Price: decimal.NewFromInt(1799)},
		{ID: "P003", Name: "USB-C Charger 65W", Price: decimal.NewFromInt(1299)},
		{ID: "P004", Name: "Wireless Headphones", Price: decimal.NewFromInt(2499)},
		{ID: "P005", Name: "Laptop Stand", Price: decimal.NewFromInt(899)},
		{ID: "P006", Name: "External SSD 1TB", Price: decimal.NewFromInt(5999)},
	}
}
