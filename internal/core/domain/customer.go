package domain

import (
	"fmt"

	"github.com/govalues/decimal"
)

type Customer struct {
	ID          uint64
	WorkspaceID uint64
	Name        string
	Email       string
	Phone       string
	OrdersCount int
	TotalSpent  decimal.Decimal
}

// RegisterOrder updates the customer's aggregate order statistics.
func (c *Customer) RegisterOrder(amount decimal.Decimal) error {
	total, err := c.TotalSpent.Add(amount)
	if err != nil {
		return fmt.Errorf("math error: %w", err)
	}
	c.OrdersCount++
	c.TotalSpent = total
	return nil
}

func (c *Customer) Snapshot() CustomerSnapshot {
	return CustomerSnapshot{Name: c.Name, Email: c.Email, Phone: c.Phone}
}

// ProductVariant is the catalog view the order core reads: enough to
// snapshot a line item and to price it at creation time. Catalog CRUD
// lives elsewhere.
type ProductVariant struct {
	ID                uint64
	WorkspaceID       uint64
	ProductID         uint64
	SKU               string
	Name              string
	Category          string
	Images            []string
	Price             decimal.Decimal
	ShippingPackageID *uint64
}
