package dispensing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medisync/backend/internal/domain/dispensing"
	"github.com/medisync/backend/internal/domain/inventory"
	"github.com/medisync/backend/internal/domain/shared"
)

type fakeInventoryRepo struct {
	batches    []inventory.InventoryBatch
	failWith   map[uuid.UUID]error
	decrements []uuid.UUID
}

func (r *fakeInventoryRepo) FindByStore(_ context.Context, storeID uuid.UUID) ([]inventory.InventoryBatch, error) {
	var out []inventory.InventoryBatch
	for _, b := range r.batches {
		if b.StoreID == storeID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) FindByStoreAndMedicine(_ context.Context, storeID uuid.UUID, medicine string) ([]inventory.InventoryBatch, error) {
	var out []inventory.InventoryBatch
	for _, b := range r.batches {
		if b.StoreID == storeID && b.Medicine == medicine {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeInventoryRepo) FindByProductID(_ context.Context, productID uuid.UUID) (*inventory.InventoryBatch, error) {
	for i := range r.batches {
		if r.batches[i].ProductID == productID {
			return &r.batches[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeInventoryRepo) Decrement(_ context.Context, productID uuid.UUID, quantity int64) error {
	r.decrements = append(r.decrements, productID)
	if err, ok := r.failWith[productID]; ok {
		return err
	}
	for i := range r.batches {
		if r.batches[i].ProductID == productID {
			return r.batches[i].Deduct(quantity)
		}
	}
	return shared.ErrNotFound
}

func (r *fakeInventoryRepo) Save(_ context.Context, batch *inventory.InventoryBatch) error {
	r.batches = append(r.batches, *batch)
	return nil
}

type fakeSessionStore struct {
	sessions map[uuid.UUID]*dispensing.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[uuid.UUID]*dispensing.Session)}
}

func (s *fakeSessionStore) Get(_ context.Context, operatorID uuid.UUID) (*dispensing.Session, error) {
	return s.sessions[operatorID], nil
}

func (s *fakeSessionStore) Put(_ context.Context, session *dispensing.Session) error {
	s.sessions[session.OperatorID] = session
	return nil
}

func (s *fakeSessionStore) Delete(_ context.Context, operatorID uuid.UUID) error {
	delete(s.sessions, operatorID)
	return nil
}

type serviceFixture struct {
	service *DispensingService
	repo    *fakeInventoryRepo
	store   *fakeSessionStore
	op      OperatorContext
	today   time.Time
}

func newServiceFixture(t *testing.T, canOverride bool) *serviceFixture {
	t.Helper()
	today := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	op := OperatorContext{
		OperatorID:  uuid.New(),
		StoreID:     uuid.New(),
		CanOverride: canOverride,
	}
	repo := &fakeInventoryRepo{failWith: make(map[uuid.UUID]error)}
	store := newFakeSessionStore()
	selector := dispensing.NewFEFOSelector(dispensing.DefaultThresholds(), func() time.Time { return today })
	svc := NewDispensingService(repo, store, selector, zap.NewNop(), func() time.Time { return today })
	return &serviceFixture{service: svc, repo: repo, store: store, op: op, today: today}
}

func (f *serviceFixture) addBatch(medicine, batchNumber string, quantity int64, daysUntilExpiry int) *inventory.InventoryBatch {
	b := inventory.NewInventoryBatch(
		f.op.StoreID,
		medicine,
		batchNumber,
		uuid.New(),
		quantity,
		decimal.NewFromFloat(4.50),
		f.today.AddDate(0, 0, daysUntilExpiry),
	)
	f.repo.batches = append(f.repo.batches, *b)
	return b
}

func TestDispensingService_SearchMedicines(t *testing.T) {
	f := newServiceFixture(t, false)
	f.addBatch("Paracetamol 650mg", "B-1", 40, 60)
	f.addBatch("Amoxicillin 500mg", "B-2", 25, 90)
	f.addBatch("Cetirizine 10mg", "B-3", 0, 30) // out of stock, hidden

	names, err := f.service.SearchMedicines(context.Background(), f.op, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Amoxicillin 500mg", "Paracetamol 650mg"}, names)

	names, err = f.service.SearchMedicines(context.Background(), f.op, "para")
	require.NoError(t, err)
	assert.Equal(t, []string{"Paracetamol 650mg"}, names)
}

func TestDispensingService_GetBatchesForMedicine(t *testing.T) {
	f := newServiceFixture(t, false)
	f.addBatch("Paracetamol 650mg", "B-LATE", 40, 120)
	early := f.addBatch("Paracetamol 650mg", "B-EARLY", 30, 10)

	view, err := f.service.GetBatchesForMedicine(context.Background(), f.op, "Paracetamol 650mg")
	require.NoError(t, err)
	require.Len(t, view.Batches, 2)

	assert.Equal(t, "B-EARLY", view.Batches[0].BatchNumber)
	assert.True(t, view.Batches[0].IsEarliest)
	assert.Equal(t, "urgent", view.Batches[0].Severity)
	assert.Equal(t, 10, view.Batches[0].DaysLeft)

	assert.Equal(t, "B-LATE", view.Batches[1].BatchNumber)
	assert.False(t, view.Batches[1].IsEarliest)
	assert.Equal(t, "ok", view.Batches[1].Severity)

	// earliest batch becomes the default selection
	sess := f.store.sessions[f.op.OperatorID]
	require.NotNil(t, sess)
	require.NotNil(t, sess.Selection)
	assert.Equal(t, early.ID, sess.Selection.BatchID)
}

func TestDispensingService_GetBatchesForMedicine_NoStock(t *testing.T) {
	f := newServiceFixture(t, false)
	f.addBatch("Paracetamol 650mg", "B-1", 0, 60)

	_, err := f.service.GetBatchesForMedicine(context.Background(), f.op, "Paracetamol 650mg")
	assert.ErrorIs(t, err, dispensing.ErrNoStockAvailable)
}

func TestDispensingService_SelectBatch_OverrideGating(t *testing.T) {
	f := newServiceFixture(t, false)
	f.addBatch("Paracetamol 650mg", "B-EARLY", 30, 10)
	late := f.addBatch("Paracetamol 650mg", "B-LATE", 40, 120)

	_, err := f.service.GetBatchesForMedicine(context.Background(), f.op, "Paracetamol 650mg")
	require.NoError(t, err)

	_, err = f.service.SelectBatch(context.Background(), f.op, "Paracetamol 650mg", late.ID)
	assert.ErrorIs(t, err, dispensing.ErrOverrideNotPermitted)

	// failed pick leaves the earlier default selection in place
	sess := f.store.sessions[f.op.OperatorID]
	require.NotNil(t, sess.Selection)
	assert.Equal(t, "B-EARLY", sess.Selection.BatchNumber)

	f.op.CanOverride = true
	view, err := f.service.SelectBatch(context.Background(), f.op, "Paracetamol 650mg", late.ID)
	require.NoError(t, err)
	assert.Equal(t, "B-LATE", view.BatchNumber)
}

func TestDispensingService_SelectBatch_ExpiredBlocked(t *testing.T) {
	f := newServiceFixture(t, false)
	expired := f.addBatch("Paracetamol 650mg", "B-EXP", 30, -3)

	_, err := f.service.SelectBatch(context.Background(), f.op, "Paracetamol 650mg", expired.ID)
	assert.ErrorIs(t, err, dispensing.ErrExpiredBatchBlocked)
}

func TestDispensingService_AddToCart(t *testing.T) {
	f := newServiceFixture(t, false)
	f.addBatch("Paracetamol 650mg", "B-1", 30, 60)

	_, err := f.service.GetBatchesForMedicine(context.Background(), f.op, "Paracetamol 650mg")
	require.NoError(t, err)

	cart, err := f.service.AddToCart(context.Background(), f.op, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cart.TotalQuantity)
	assert.Equal(t, 1, cart.LineCount)

	// repeat pick merges into the same line, ceiling on the running total
	cart, err = f.service.AddToCart(context.Background(), f.op, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(25), cart.TotalQuantity)
	assert.Equal(t, 1, cart.LineCount)

	_, err = f.service.AddToCart(context.Background(), f.op, 10)
	assert.ErrorIs(t, err, dispensing.ErrExceedsAvailable)
}

func TestDispensingService_AddToCart_WithoutSelection(t *testing.T) {
	f := newServiceFixture(t, false)

	_, err := f.service.AddToCart(context.Background(), f.op, 5)
	assert.ErrorIs(t, err, dispensing.ErrNoStockAvailable)
}

func TestDispensingService_ConfirmAndCommit_EmptyCart(t *testing.T) {
	f := newServiceFixture(t, false)

	_, err := f.service.ConfirmAndCommit(context.Background(), f.op)
	assert.ErrorIs(t, err, dispensing.ErrEmptyCart)
	assert.Empty(t, f.repo.decrements, "empty cart must not touch the repository")
}

type pick struct {
	medicine string
	qty      int64
}

func commitCartOf(t *testing.T, f *serviceFixture, picks ...pick) {
	t.Helper()
	for _, p := range picks {
		_, err := f.service.GetBatchesForMedicine(context.Background(), f.op, p.medicine)
		require.NoError(t, err)
		_, err = f.service.AddToCart(context.Background(), f.op, p.qty)
		require.NoError(t, err)
	}
}

func TestDispensingService_ConfirmAndCommit_AllSucceeded(t *testing.T) {
	f := newServiceFixture(t, false)
	a := f.addBatch("Paracetamol 650mg", "B-1", 30, 60)
	b := f.addBatch("Amoxicillin 500mg", "B-2", 20, 90)

	commitCartOf(t, f,
		pick{"Paracetamol 650mg", 10},
		pick{"Amoxicillin 500mg", 5},
	)

	result, err := f.service.ConfirmAndCommit(context.Background(), f.op)
	require.NoError(t, err)
	assert.Equal(t, CommitAllSucceeded, result.Status)
	assert.True(t, result.CartCleared)
	assert.Len(t, result.Lines, 2)
	assert.Empty(t, result.FailedLines)

	got, err := f.repo.FindByProductID(context.Background(), a.ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(20), got.Quantity)
	got, err = f.repo.FindByProductID(context.Background(), b.ProductID)
	require.NoError(t, err)
	assert.Equal(t, int64(15), got.Quantity)

	cart, err := f.service.GetCart(context.Background(), f.op)
	require.NoError(t, err)
	assert.Zero(t, cart.LineCount)
}

func TestDispensingService_ConfirmAndCommit_PartialFailure(t *testing.T) {
	f := newServiceFixture(t, false)
	f.addBatch("Paracetamol 650mg", "B-1", 30, 60)
	failing := f.addBatch("Amoxicillin 500mg", "B-2", 20, 90)
	f.addBatch("Cetirizine 10mg", "B-3", 50, 120)
	f.repo.failWith[failing.ProductID] = shared.ErrInsufficientStock

	commitCartOf(t, f,
		pick{"Paracetamol 650mg", 10},
		pick{"Amoxicillin 500mg", 5},
		pick{"Cetirizine 10mg", 8},
	)

	result, err := f.service.ConfirmAndCommit(context.Background(), f.op)
	require.NoError(t, err)
	assert.Equal(t, CommitPartialFailure, result.Status)
	assert.True(t, result.CartCleared)

	// every line attempted despite the middle failure
	assert.Len(t, f.repo.decrements, 3)
	require.Len(t, result.FailedLines, 1)
	assert.Equal(t, "Amoxicillin 500mg", result.FailedLines[0].Medicine)
	assert.Equal(t, "INSUFFICIENT_STOCK", result.FailedLines[0].ErrorCode)
}

func TestDispensingService_ConfirmAndCommit_AllFailed_PreservesCart(t *testing.T) {
	f := newServiceFixture(t, false)
	failing := f.addBatch("Paracetamol 650mg", "B-1", 30, 60)
	f.repo.failWith[failing.ProductID] = shared.ErrNotFound

	commitCartOf(t, f, pick{"Paracetamol 650mg", 10})

	result, err := f.service.ConfirmAndCommit(context.Background(), f.op)
	require.NoError(t, err)
	assert.Equal(t, CommitAllFailed, result.Status)
	assert.False(t, result.CartCleared)

	cart, err := f.service.GetCart(context.Background(), f.op)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.LineCount)
	assert.Equal(t, int64(10), cart.TotalQuantity)
}

func TestDispensingService_ClearCart(t *testing.T) {
	f := newServiceFixture(t, false)
	f.addBatch("Paracetamol 650mg", "B-1", 30, 60)

	commitCartOf(t, f, pick{"Paracetamol 650mg", 10})

	require.NoError(t, f.service.ClearCart(context.Background(), f.op))

	cart, err := f.service.GetCart(context.Background(), f.op)
	require.NoError(t, err)
	assert.Zero(t, cart.LineCount)
	assert.Nil(t, f.store.sessions[f.op.OperatorID].Selection)
}
