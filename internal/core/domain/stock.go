package domain

import "time"

// StockRecord is the quantity of one variant at one location. Created
// lazily on the first stock-affecting operation for the pair.
type StockRecord struct {
	ID         uint64
	VariantID  uint64
	LocationID uint64
	OnHand     int
	Available  int
	Condition  string
	UpdatedAt  time.Time
}

// Reserve decrements the record for an order line. The caller must hold
// the row lock for the whole read-check-write sequence.
func (s *StockRecord) Reserve(qty int) error {
	if qty <= 0 {
		return &ValidationError{Field: "quantity", Msg: "must be positive"}
	}
	if s.Available < qty {
		return ErrInsufficientStock
	}
	s.Available -= qty
	s.OnHand -= qty
	return nil
}

// Restore puts a cancelled reservation back. Always succeeds.
func (s *StockRecord) Restore(qty int) error {
	if qty <= 0 {
		return &ValidationError{Field: "quantity", Msg: "must be positive"}
	}
	s.Available += qty
	s.OnHand += qty
	return nil
}

// Consistent reports the available <= on-hand, floor-at-zero invariant.
func (s *StockRecord) Consistent() bool {
	return s.Available >= 0 && s.OnHand >= 0 && s.Available <= s.OnHand
}
