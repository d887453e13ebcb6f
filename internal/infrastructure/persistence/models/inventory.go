package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medisync/backend/internal/domain/inventory"
)

// InventoryBatchModel is the persistence model for one branch inventory batch
type InventoryBatchModel struct {
	BaseModel
	StoreID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_batches_store_batch,priority:1"`
	Medicine    string          `gorm:"type:varchar(255);not null;index:idx_inventory_batches_store_medicine"`
	BatchNumber string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_inventory_batches_store_batch,priority:2"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	Quantity    int64           `gorm:"not null;default:0;check:quantity >= 0"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExpiryDate  time.Time       `gorm:"type:date;not null;index"`
}

// TableName returns the table name for GORM
func (InventoryBatchModel) TableName() string {
	return "inventory_batches"
}

// ToDomain converts the persistence model to a domain InventoryBatch
func (m *InventoryBatchModel) ToDomain() *inventory.InventoryBatch {
	return &inventory.InventoryBatch{
		BaseEntity:  m.BaseModel.ToDomain(),
		StoreID:     m.StoreID,
		Medicine:    m.Medicine,
		BatchNumber: m.BatchNumber,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		ExpiryDate:  m.ExpiryDate,
	}
}

// FromDomain populates the persistence model from a domain InventoryBatch
func (m *InventoryBatchModel) FromDomain(b *inventory.InventoryBatch) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.StoreID = b.StoreID
	m.Medicine = b.Medicine
	m.BatchNumber = b.BatchNumber
	m.ProductID = b.ProductID
	m.Quantity = b.Quantity
	m.UnitPrice = b.UnitPrice
	m.ExpiryDate = b.ExpiryDate
}
