package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	dispensingapp "github.com/medisync/backend/internal/application/dispensing"
	identityapp "github.com/medisync/backend/internal/application/identity"
	inventoryapp "github.com/medisync/backend/internal/application/inventory"
	reportapp "github.com/medisync/backend/internal/application/report"
	"github.com/medisync/backend/internal/domain/dispensing"
	"github.com/medisync/backend/internal/domain/identity"
	"github.com/medisync/backend/internal/domain/inventory"
	"github.com/medisync/backend/internal/domain/shared"
	"github.com/medisync/backend/internal/infrastructure/auth"
	"github.com/medisync/backend/internal/infrastructure/cache"
	"github.com/medisync/backend/internal/infrastructure/config"
	"github.com/medisync/backend/internal/interfaces/http/middleware"
	"github.com/medisync/backend/internal/interfaces/http/router"
)

// memoryInventoryRepo is an in-memory BranchInventoryRepository for
// handler tests.
type memoryInventoryRepo struct {
	mu      sync.Mutex
	batches []*inventory.InventoryBatch
}

func (r *memoryInventoryRepo) FindByStore(_ context.Context, storeID uuid.UUID) ([]inventory.InventoryBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.InventoryBatch
	for _, b := range r.batches {
		if b.StoreID == storeID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryInventoryRepo) FindByStoreAndMedicine(_ context.Context, storeID uuid.UUID, medicine string) ([]inventory.InventoryBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.InventoryBatch
	for _, b := range r.batches {
		if b.StoreID == storeID && b.Medicine == medicine {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memoryInventoryRepo) FindByProductID(_ context.Context, productID uuid.UUID) (*inventory.InventoryBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.ProductID == productID {
			copied := *b
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryInventoryRepo) Decrement(_ context.Context, productID uuid.UUID, quantity int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.ProductID == productID {
			if b.Quantity < quantity {
				return shared.ErrInsufficientStock
			}
			b.Quantity -= quantity
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memoryInventoryRepo) Save(_ context.Context, batch *inventory.InventoryBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.batches {
		if b.ID == batch.ID {
			copied := *batch
			r.batches[i] = &copied
			return nil
		}
	}
	copied := *batch
	r.batches = append(r.batches, &copied)
	return nil
}

func (r *memoryInventoryRepo) quantityOf(productID uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.batches {
		if b.ProductID == productID {
			return b.Quantity
		}
	}
	return -1
}

// memoryUserRepo is an in-memory identity.UserRepository
type memoryUserRepo struct {
	byUsername map[string]*identity.User
	byID       map[uuid.UUID]*identity.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{
		byUsername: make(map[string]*identity.User),
		byID:       make(map[uuid.UUID]*identity.User),
	}
}

func (r *memoryUserRepo) add(username, password string, role identity.Role, storeID uuid.UUID) *identity.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	user := &identity.User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		StoreID:      storeID,
		Active:       true,
	}
	r.byUsername[username] = user
	r.byID[user.ID] = user
	return user
}

func (r *memoryUserRepo) FindByUsername(_ context.Context, username string) (*identity.User, error) {
	if u, ok := r.byUsername[username]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryUserRepo) Save(_ context.Context, user *identity.User) error {
	r.byUsername[user.Username] = user
	r.byID[user.ID] = user
	return nil
}

// portalFixture wires the full HTTP stack over in-memory stores
type portalFixture struct {
	engine   *gin.Engine
	repo     *memoryInventoryRepo
	users    *memoryUserRepo
	jwt      *auth.JWTService
	storeID  uuid.UUID
	sessions *cache.InMemorySessionStore
}

func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storeID := uuid.New()
	repo := &memoryInventoryRepo{}
	users := newMemoryUserRepo()
	sessions := cache.NewInMemorySessionStore(time.Hour)
	t.Cleanup(func() { sessions.Close() })

	thresholds := dispensing.Thresholds{CriticalDays: 15, NearDays: 30, HorizonDays: 90}
	selector := dispensing.NewFEFOSelector(thresholds, nil)
	logger := zap.NewNop()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret",
		AccessTokenExpiration:  time.Hour,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "medisync-test",
	})

	dispensingService := dispensingapp.NewDispensingService(repo, sessions, selector, logger, nil)
	inventoryService := inventoryapp.NewInventoryService(repo, thresholds, logger, nil)
	reportService := reportapp.NewExpiryReportService(repo, thresholds, logger, nil)
	authService := identityapp.NewAuthService(users, jwtService, logger)

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(middleware.JWTAuthMiddleware(jwtService))

	router.NewRouter(engine).
		Register(NewAuthHandler(authService)).
		Register(NewDispensingHandler(dispensingService)).
		Register(NewInventoryHandler(inventoryService)).
		Register(NewReportHandler(reportService)).
		Setup()

	return &portalFixture{
		engine:   engine,
		repo:     repo,
		users:    users,
		jwt:      jwtService,
		storeID:  storeID,
		sessions: sessions,
	}
}

// tokenFor issues an access token for a fresh user with the given role
func (f *portalFixture) tokenFor(t *testing.T, role identity.Role) string {
	t.Helper()
	user := f.users.add("user-"+uuid.NewString(), "pw-secret", role, f.storeID)
	pair, err := f.jwt.GenerateTokenPair(user)
	if err != nil {
		t.Fatal(err)
	}
	return pair.AccessToken
}

// seedBatch adds a batch to the fixture store and returns it
func (f *portalFixture) seedBatch(medicine, batchNumber string, quantity int64, daysToExpiry int) *inventory.InventoryBatch {
	batch := inventory.NewInventoryBatch(
		f.storeID, medicine, batchNumber, uuid.New(), quantity,
		decimal.NewFromFloat(3.50), time.Now().AddDate(0, 0, daysToExpiry),
	)
	f.repo.mu.Lock()
	f.repo.batches = append(f.repo.batches, batch)
	f.repo.mu.Unlock()
	return batch
}
