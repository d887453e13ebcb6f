package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/medisync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InventoryBatch represents one physical lot of one medicine held at one store.
// A batch with zero quantity is excluded from selectable results but never deleted;
// receiving flows may top it back up.
type InventoryBatch struct {
	shared.BaseEntity
	StoreID     uuid.UUID
	Medicine    string
	BatchNumber string
	ProductID   uuid.UUID
	Quantity    int64 // units on hand, never negative
	UnitPrice   decimal.Decimal
	ExpiryDate  time.Time // calendar date, time-of-day is not meaningful
}

// NewInventoryBatch creates a new inventory batch for a store
func NewInventoryBatch(
	storeID uuid.UUID,
	medicine string,
	batchNumber string,
	productID uuid.UUID,
	quantity int64,
	unitPrice decimal.Decimal,
	expiryDate time.Time,
) *InventoryBatch {
	return &InventoryBatch{
		BaseEntity:  shared.NewBaseEntity(),
		StoreID:     storeID,
		Medicine:    medicine,
		BatchNumber: batchNumber,
		ProductID:   productID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		ExpiryDate:  dateOnly(expiryDate),
	}
}

// HasStock returns true if the batch has sellable quantity
func (b *InventoryBatch) HasStock() bool {
	return b.Quantity > 0
}

// IsExpired returns true if the batch's expiry date is before today
func (b *InventoryBatch) IsExpired(today time.Time) bool {
	return dateOnly(b.ExpiryDate).Before(dateOnly(today))
}

// Deduct reduces the batch quantity. It rejects rather than clamps: a
// request beyond the current quantity leaves the batch untouched and
// returns ErrInsufficientStock, so an upstream cart bug cannot silently
// drive stock to zero.
func (b *InventoryBatch) Deduct(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidInput
	}
	if quantity > b.Quantity {
		return shared.ErrInsufficientStock
	}
	b.Quantity -= quantity
	b.Touch()
	return nil
}

// Add increases the batch quantity (receiving and corrections)
func (b *InventoryBatch) Add(quantity int64) error {
	if quantity <= 0 {
		return shared.ErrInvalidInput
	}
	b.Quantity += quantity
	b.Touch()
	return nil
}

// dateOnly strips the time-of-day component, keeping the calendar date in UTC
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
