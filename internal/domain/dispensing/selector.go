package dispensing

import (
	"time"

	"github.com/google/uuid"
	"github.com/medisync/backend/internal/domain/inventory"
	"github.com/medisync/backend/internal/domain/shared/strategy"
)

// Selection is a snapshot of the batch currently chosen for the medicine being
// keyed in. The available quantity is captured at selection time to bound
// later quantity entry; it is re-validated on merge, never trusted stale.
type Selection struct {
	Medicine     string
	BatchID      uuid.UUID
	BatchNumber  string
	ProductID    uuid.UUID
	ExpiryDate   time.Time
	QtyAvailable int64
	Severity     Severity
}

// FEFOSelector enforces first-expiry-first-out batch selection with a
// controlled override for privileged operators.
type FEFOSelector struct {
	strategy.BaseStrategy
	thresholds Thresholds
	now        func() time.Time
}

// NewFEFOSelector creates a selector with the given expiry policy. The clock
// is injectable for tests; pass nil for time.Now.
func NewFEFOSelector(thresholds Thresholds, now func() time.Time) *FEFOSelector {
	if now == nil {
		now = time.Now
	}
	return &FEFOSelector{
		BaseStrategy: strategy.NewBaseStrategy(
			"fefo_dispensing",
			strategy.StrategyTypeBatch,
			"FEFO dispensing selector - earliest expiry first, override gated by operator capability",
		),
		thresholds: thresholds,
		now:        now,
	}
}

// DefaultSelection returns the earliest-expiry in-stock batch of the medicine,
// or ErrNoStockAvailable when none exists. Given identical catalog state it
// always returns the same batch: the catalog sort is stable with a documented
// batch-number tie-break.
func (s *FEFOSelector) DefaultSelection(catalog *inventory.BatchCatalog, medicine string) (*Selection, error) {
	batches := catalog.BatchesFor(medicine)
	if len(batches) == 0 {
		return nil, ErrNoStockAvailable
	}
	return s.snapshot(&batches[0]), nil
}

// Select validates picking a specific batch of the medicine.
//
// The earliest batch (index 0) is always structurally permitted; any later
// batch requires the override capability. An expired batch is never
// dispensable without override, even when it happens to be earliest, which
// occurs when every batch of a medicine is expired.
//
// Select is pure: on failure the caller's current selection must stay as it
// was, so the session applies the returned snapshot only on success.
func (s *FEFOSelector) Select(catalog *inventory.BatchCatalog, medicine string, batchID uuid.UUID, canOverride bool) (*Selection, error) {
	batches := catalog.BatchesFor(medicine)
	if len(batches) == 0 {
		return nil, ErrNoStockAvailable
	}

	idx := -1
	for i := range batches {
		if batches[i].ID == batchID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNoStockAvailable
	}

	target := &batches[idx]
	if target.IsExpired(s.now()) && !canOverride {
		return nil, ErrExpiredBatchBlocked
	}
	if idx > 0 && !canOverride {
		return nil, ErrOverrideNotPermitted
	}

	return s.snapshot(target), nil
}

// snapshot captures the batch state relevant to quantity entry
func (s *FEFOSelector) snapshot(b *inventory.InventoryBatch) *Selection {
	daysLeft := DaysLeft(s.now(), b.ExpiryDate)
	return &Selection{
		Medicine:     b.Medicine,
		BatchID:      b.ID,
		BatchNumber:  b.BatchNumber,
		ProductID:    b.ProductID,
		ExpiryDate:   b.ExpiryDate,
		QtyAvailable: b.Quantity,
		Severity:     s.thresholds.Classify(daysLeft),
	}
}

// Thresholds returns the expiry policy the selector classifies with
func (s *FEFOSelector) Thresholds() Thresholds {
	return s.thresholds
}
