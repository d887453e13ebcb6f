package dispensing

import (
	"time"

	"github.com/google/uuid"
)

// CartLine is one committed-to-cart (batch, quantity) pair pending commit
type CartLine struct {
	Medicine     string    `json:"medicine"`
	BatchID      uuid.UUID `json:"batch_id"`
	BatchNumber  string    `json:"batch_number"`
	ProductID    uuid.UUID `json:"product_id"`
	ExpiryDate   time.Time `json:"expiry_date"`
	Quantity     int64     `json:"quantity"`
	QtyAvailable int64     `json:"qty_available"` // availability recorded at entry time
}

// CartTotals is a derived view of the pending cart
type CartTotals struct {
	Lines         int   `json:"lines"`
	TotalQuantity int64 `json:"total_quantity"`
}

// Cart is the ordered set of lines for a single sale. No two lines reference
// the same (product, batch) pair: a repeat pick merges quantities instead of
// duplicating the line.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// NewCart creates an empty cart
func NewCart() *Cart {
	return &Cart{Lines: make([]CartLine, 0)}
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// AddLine validates and adds a selection with the requested quantity.
// Validation failures leave the cart exactly as it was.
//
// The ceiling is enforced as a running total: merging into an existing line
// for the same batch re-validates (existing + new) against the availability
// snapshotted by the selection, not against the stale per-line record.
func (c *Cart) AddLine(sel *Selection, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if quantity > sel.QtyAvailable {
		return ErrExceedsAvailable
	}

	for i := range c.Lines {
		line := &c.Lines[i]
		if line.ProductID == sel.ProductID && line.BatchID == sel.BatchID {
			if line.Quantity+quantity > sel.QtyAvailable {
				return ErrExceedsAvailable
			}
			line.Quantity += quantity
			line.QtyAvailable = sel.QtyAvailable
			return nil
		}
	}

	c.Lines = append(c.Lines, CartLine{
		Medicine:     sel.Medicine,
		BatchID:      sel.BatchID,
		BatchNumber:  sel.BatchNumber,
		ProductID:    sel.ProductID,
		ExpiryDate:   sel.ExpiryDate,
		Quantity:     quantity,
		QtyAvailable: sel.QtyAvailable,
	})
	return nil
}

// Clear empties all lines; there is no partial clear
func (c *Cart) Clear() {
	c.Lines = c.Lines[:0]
}

// Totals returns the derived line count and total quantity
func (c *Cart) Totals() CartTotals {
	var total int64
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return CartTotals{
		Lines:         len(c.Lines),
		TotalQuantity: total,
	}
}
