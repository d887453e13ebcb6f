package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medisync/backend/internal/domain/inventory"
	"github.com/medisync/backend/internal/domain/shared"
	"github.com/medisync/backend/internal/infrastructure/persistence/models"
)

// GormBranchInventoryRepository implements BranchInventoryRepository using GORM
type GormBranchInventoryRepository struct {
	db *gorm.DB
}

// NewGormBranchInventoryRepository creates a new GormBranchInventoryRepository
func NewGormBranchInventoryRepository(db *gorm.DB) *GormBranchInventoryRepository {
	return &GormBranchInventoryRepository{db: db}
}

// FindByStore returns every batch row owned by the store, earliest expiry
// first. Zero-quantity rows are included; catalog filtering is a domain
// concern.
func (r *GormBranchInventoryRepository) FindByStore(ctx context.Context, storeID uuid.UUID) ([]inventory.InventoryBatch, error) {
	var rows []models.InventoryBatchModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("expiry_date ASC, batch_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(rows), nil
}

// FindByStoreAndMedicine returns the store's batch rows for one medicine
func (r *GormBranchInventoryRepository) FindByStoreAndMedicine(ctx context.Context, storeID uuid.UUID, medicine string) ([]inventory.InventoryBatch, error) {
	var rows []models.InventoryBatchModel
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND medicine = ?", storeID, medicine).
		Order("expiry_date ASC, batch_number ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toDomainBatches(rows), nil
}

// FindByProductID returns the batch row backing a product
func (r *GormBranchInventoryRepository) FindByProductID(ctx context.Context, productID uuid.UUID) (*inventory.InventoryBatch, error) {
	var row models.InventoryBatchModel
	if err := r.db.WithContext(ctx).First(&row, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return row.ToDomain(), nil
}

// Decrement atomically reduces a product's quantity with a conditional
// UPDATE. The quantity guard runs inside the statement, so two concurrent
// sales can never drive the row negative; the loser sees zero rows affected.
func (r *GormBranchInventoryRepository) Decrement(ctx context.Context, productID uuid.UUID, quantity int64) error {
	result := r.db.WithContext(ctx).
		Model(&models.InventoryBatchModel{}).
		Where("product_id = ? AND quantity >= ?", productID, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// zero rows: either the product vanished or stock is short
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryBatchModel{}).
		Where("product_id = ?", productID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return shared.ErrNotFound
	}
	return shared.ErrInsufficientStock
}

// Save creates or updates a batch row
func (r *GormBranchInventoryRepository) Save(ctx context.Context, batch *inventory.InventoryBatch) error {
	var row models.InventoryBatchModel
	row.FromDomain(batch)
	return r.db.WithContext(ctx).Save(&row).Error
}

func toDomainBatches(rows []models.InventoryBatchModel) []inventory.InventoryBatch {
	batches := make([]inventory.InventoryBatch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches
}
