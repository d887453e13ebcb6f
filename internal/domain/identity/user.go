package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/medisync/backend/internal/domain/shared"
)

// Role is a portal role. Roles carry fixed capabilities; there is no
// per-user permission matrix.
type Role string

const (
	// RolePharmacist dispenses against the earliest-expiry batch only
	RolePharmacist Role = "pharmacist"
	// RoleChiefPharmacist may override the earliest-expiry rule
	RoleChiefPharmacist Role = "chief_pharmacist"
	// RoleInventoryManager manages receiving and the branch stock view
	RoleInventoryManager Role = "inventory_manager"
	// RoleAdmin holds every capability
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the portal roles
func (r Role) Valid() bool {
	switch r {
	case RolePharmacist, RoleChiefPharmacist, RoleInventoryManager, RoleAdmin:
		return true
	}
	return false
}

// CanOverrideFEFO reports whether the role may dispense from a batch other
// than the earliest-expiry one
func (r Role) CanOverrideFEFO() bool {
	return r == RoleChiefPharmacist || r == RoleAdmin
}

// CanManageInventory reports whether the role may receive batches
func (r Role) CanManageInventory() bool {
	return r == RoleInventoryManager || r == RoleAdmin
}

// User is a portal account bound to one store
type User struct {
	shared.BaseEntity
	Username     string
	PasswordHash string
	Role         Role
	StoreID      uuid.UUID
	Active       bool
}

// NewUser creates an active user with a pre-hashed password
func NewUser(username, passwordHash string, role Role, storeID uuid.UUID) (*User, error) {
	if username == "" || passwordHash == "" {
		return nil, shared.ErrInvalidInput
	}
	if !role.Valid() {
		return nil, shared.ErrInvalidInput
	}
	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		StoreID:      storeID,
		Active:       true,
	}, nil
}

// UserRepository defines persistence for portal accounts
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Save(ctx context.Context, user *User) error
}
