package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/medisync/backend/internal/domain/dispensing"
	"github.com/medisync/backend/internal/domain/inventory"
	"github.com/medisync/backend/internal/domain/shared"
)

// InventoryService handles branch inventory operations: the branch stock view,
// batch receiving and the single-product dispense used by external callers.
type InventoryService struct {
	repo       inventory.BranchInventoryRepository
	thresholds dispensing.Thresholds
	logger     *zap.Logger
	now        func() time.Time
}

// NewInventoryService creates the service; pass nil for time.Now
func NewInventoryService(
	repo inventory.BranchInventoryRepository,
	thresholds dispensing.Thresholds,
	logger *zap.Logger,
	now func() time.Time,
) *InventoryService {
	if now == nil {
		now = time.Now
	}
	return &InventoryService{
		repo:       repo,
		thresholds: thresholds,
		logger:     logger,
		now:        now,
	}
}

// BatchRow is one inventory row of the branch view, classified against the
// same expiry policy the dispensing screen uses
type BatchRow struct {
	BatchID     uuid.UUID       `json:"batch_id"`
	Medicine    string          `json:"medicine"`
	BatchNumber string          `json:"batch_number"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExpiryDate  string          `json:"expiry_date"`
	DaysLeft    int             `json:"days_left"`
	Severity    string          `json:"severity"`
}

// BranchInventory is the full stock view of one store
type BranchInventory struct {
	StoreID    uuid.UUID  `json:"store_id"`
	Batches    []BatchRow `json:"batches"`
	TotalUnits int64      `json:"total_units"`
}

// ReceiveBatchInput is the receiving-flow payload
type ReceiveBatchInput struct {
	Medicine    string          `json:"medicine" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"required"`
	Quantity    int64           `json:"quantity" binding:"required,min=1"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExpiryDate  string          `json:"expiry_date" binding:"required"`
}

// GetBranchInventory returns every batch row the store owns, including
// zero-quantity rows, ordered as stored
func (s *InventoryService) GetBranchInventory(ctx context.Context, storeID uuid.UUID) (*BranchInventory, error) {
	batches, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	today := s.now()
	view := &BranchInventory{
		StoreID: storeID,
		Batches: make([]BatchRow, 0, len(batches)),
	}
	for _, b := range batches {
		daysLeft := dispensing.DaysLeft(today, b.ExpiryDate)
		view.Batches = append(view.Batches, BatchRow{
			BatchID:     b.ID,
			Medicine:    b.Medicine,
			BatchNumber: b.BatchNumber,
			ProductID:   b.ProductID,
			Quantity:    b.Quantity,
			UnitPrice:   b.UnitPrice,
			ExpiryDate:  b.ExpiryDate.Format("2006-01-02"),
			DaysLeft:    daysLeft,
			Severity:    s.thresholds.Classify(daysLeft).String(),
		})
		view.TotalUnits += b.Quantity
	}
	return view, nil
}

// ReceiveBatch records a newly received batch at the store. A batch that
// already exists for the same (medicine, batch number) is topped up instead
// of duplicated.
func (s *InventoryService) ReceiveBatch(ctx context.Context, storeID uuid.UUID, input ReceiveBatchInput) (*BatchRow, error) {
	expiry, err := time.Parse("2006-01-02", input.ExpiryDate)
	if err != nil {
		return nil, shared.ErrInvalidInput
	}
	if input.Quantity < 1 {
		return nil, shared.ErrInvalidInput
	}

	existing, err := s.repo.FindByStoreAndMedicine(ctx, storeID, input.Medicine)
	if err != nil {
		return nil, err
	}
	var batch *inventory.InventoryBatch
	for i := range existing {
		if existing[i].BatchNumber == input.BatchNumber {
			batch = &existing[i]
			break
		}
	}

	if batch != nil {
		if err := batch.Add(input.Quantity); err != nil {
			return nil, err
		}
	} else {
		batch = inventory.NewInventoryBatch(
			storeID,
			input.Medicine,
			input.BatchNumber,
			uuid.New(),
			input.Quantity,
			input.UnitPrice,
			expiry,
		)
	}
	if err := s.repo.Save(ctx, batch); err != nil {
		return nil, err
	}

	s.logger.Info("batch received",
		zap.String("store_id", storeID.String()),
		zap.String("medicine", batch.Medicine),
		zap.String("batch_number", batch.BatchNumber),
		zap.Int64("quantity", input.Quantity),
	)

	daysLeft := dispensing.DaysLeft(s.now(), batch.ExpiryDate)
	return &BatchRow{
		BatchID:     batch.ID,
		Medicine:    batch.Medicine,
		BatchNumber: batch.BatchNumber,
		ProductID:   batch.ProductID,
		Quantity:    batch.Quantity,
		UnitPrice:   batch.UnitPrice,
		ExpiryDate:  batch.ExpiryDate.Format("2006-01-02"),
		DaysLeft:    daysLeft,
		Severity:    s.thresholds.Classify(daysLeft).String(),
	}, nil
}

// DispenseProduct performs a single-product stock decrement outside the cart
// flow. It shares the executor's semantics: reject beyond-stock requests,
// never clamp.
func (s *InventoryService) DispenseProduct(ctx context.Context, productID uuid.UUID, quantity int64) error {
	if quantity < 1 {
		return dispensing.ErrInvalidQuantity
	}
	if err := s.repo.Decrement(ctx, productID, quantity); err != nil {
		return err
	}
	s.logger.Info("product dispensed",
		zap.String("product_id", productID.String()),
		zap.Int64("quantity", quantity),
	)
	return nil
}
