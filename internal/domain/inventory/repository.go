package inventory

import (
	"context"

	"github.com/google/uuid"
)

// BranchInventoryRepository defines persistence for branch-scoped inventory
type BranchInventoryRepository interface {
	// FindByStore returns every batch row owned by the store, including
	// zero-quantity batches
	FindByStore(ctx context.Context, storeID uuid.UUID) ([]InventoryBatch, error)

	// FindByStoreAndMedicine returns the store's batch rows for one medicine
	FindByStoreAndMedicine(ctx context.Context, storeID uuid.UUID, medicine string) ([]InventoryBatch, error)

	// FindByProductID returns the batch row backing a product
	FindByProductID(ctx context.Context, productID uuid.UUID) (*InventoryBatch, error)

	// Decrement atomically reduces a product's quantity. Returns
	// shared.ErrNotFound if the product vanished, shared.ErrInsufficientStock
	// if the requested quantity exceeds what is on hand. The decrement must be
	// linearizable per product: two concurrent sales must not both succeed
	// past the available quantity.
	Decrement(ctx context.Context, productID uuid.UUID, quantity int64) error

	// Save creates or updates a batch row (receiving flow)
	Save(ctx context.Context, batch *InventoryBatch) error
}
