package report

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

type stubInventoryRepo struct {
	batches []inventory.InventoryBatch
}

func (r *stubInventoryRepo) FindByStore(_ context.Context, storeID uuid.UUID) ([]inventory.InventoryBatch, error) {
	var out []inventory.InventoryBatch
	for _, b := range r.batches {
		if b.StoreID == storeID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *stubInventoryRepo) FindByStoreAndMedicine(_ context.Context, _ uuid.UUID, _ string) ([]inventory.InventoryBatch, error) {
	return nil, nil
}

func (r *stubInventoryRepo) FindByProductID(_ context.Context, _ uuid.UUID) (*inventory.InventoryBatch, error) {
	return nil, shared.ErrNotFound
}

func (r *stubInventoryRepo) Decrement(_ context.Context, _ uuid.UUID, _ int64) error {
	return nil
}

func (r *stubInventoryRepo) Save(_ context.Context, _ *inventory.InventoryBatch) error {
	return nil
}

type reportFixture struct {
	service *ExpiryReportService
	repo    *stubInventoryRepo
	storeID uuid.UUID
	today   time.Time
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	today := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubInventoryRepo{}
	return &reportFixture{
		service: NewExpiryReportService(repo, dispensing.DefaultThresholds(), zap.NewNop(), func() time.Time { return today }),
		repo:    repo,
		storeID: uuid.New(),
		today:   today,
	}
}

func (f *reportFixture) addBatch(medicine, batchNumber string, quantity int64, daysUntilExpiry int) {
	b := inventory.NewInventoryBatch(
		f.storeID,
		medicine,
		batchNumber,
		uuid.New(),
		quantity,
		decimal.NewFromInt(3),
		f.today.AddDate(0, 0, daysUntilExpiry),
	)
	f.repo.batches = append(f.repo.batches, *b)
}

func TestExpiryReport_HorizonCutoff(t *testing.T) {
	f := newReportFixture(t)
	f.addBatch("Paracetamol 650", "B-EXP", 5, -2)   // expired, inside window
	f.addBatch("Amoxicillin 500", "B-URG", 10, 12)  // urgent
	f.addBatch("Cetirizine 10", "B-SOON", 20, 45)   // soon
	f.addBatch("Ibuprofen 400", "B-FAR", 30, 120)   // beyond horizon

	rep, err := f.service.GetExpiringReport(context.Background(), f.storeID, ReportQuery{})
	require.NoError(t, err)

	assert.Equal(t, 90, rep.CutoffDays)
	require.Equal(t, 3, rep.Total)
	// default sort is expiry ascending
	assert.Equal(t, "B-EXP", rep.Rows[0].BatchNumber)
	assert.Equal(t, "expired", rep.Rows[0].Severity)
	assert.Equal(t, -2, rep.Rows[0].DaysLeft)
	assert.Equal(t, "B-URG", rep.Rows[1].BatchNumber)
	assert.Equal(t, "urgent", rep.Rows[1].Severity)
	assert.Equal(t, "B-SOON", rep.Rows[2].BatchNumber)
	assert.Equal(t, "soon", rep.Rows[2].Severity)
}

func TestExpiryReport_CustomCutoff(t *testing.T) {
	f := newReportFixture(t)
	f.addBatch("Paracetamol 650", "B-1", 5, 20)
	f.addBatch("Amoxicillin 500", "B-2", 10, 40)

	rep, err := f.service.GetExpiringReport(context.Background(), f.storeID, ReportQuery{CutoffDays: 30})
	require.NoError(t, err)

	assert.Equal(t, 30, rep.CutoffDays)
	require.Equal(t, 1, rep.Total)
	assert.Equal(t, "B-1", rep.Rows[0].BatchNumber)
}

func TestExpiryReport_SearchOnDisplayName(t *testing.T) {
	f := newReportFixture(t)
	f.addBatch("[DSTB-CP(P)] 2 FDC H50 R75", "B-1", 5, 20)
	f.addBatch("Cycloserine 250", "B-2", 10, 40)

	rep, err := f.service.GetExpiringReport(context.Background(), f.storeID, ReportQuery{Search: "drug combo"})
	require.NoError(t, err)

	require.Equal(t, 1, rep.Total)
	assert.Equal(t, "B-1", rep.Rows[0].BatchNumber)
	assert.Equal(t, "2-Drug Combo H 50 mg R 75 mg", rep.Rows[0].DisplayName)
}

func TestExpiryReport_SortKeys(t *testing.T) {
	f := newReportFixture(t)
	f.addBatch("Zinc 20", "B-Z", 30, 10)
	f.addBatch("Amoxicillin 500", "B-A", 5, 60)
	f.addBatch("Cetirizine 10", "B-C", 15, 30)

	cases := []struct {
		key  SortKey
		want []string
	}{
		{SortExpiryAsc, []string{"B-Z", "B-C", "B-A"}},
		{SortExpiryDesc, []string{"B-A", "B-C", "B-Z"}},
		{SortQtyAsc, []string{"B-A", "B-C", "B-Z"}},
		{SortQtyDesc, []string{"B-Z", "B-C", "B-A"}},
		{SortNameAsc, []string{"B-A", "B-C", "B-Z"}},
		{SortNameDesc, []string{"B-Z", "B-C", "B-A"}},
		{SortKey("bogus"), []string{"B-Z", "B-C", "B-A"}}, // falls back to expiry ascending
	}
	for _, tc := range cases {
		t.Run(string(tc.key), func(t *testing.T) {
			rep, err := f.service.GetExpiringReport(context.Background(), f.storeID, ReportQuery{SortKey: tc.key})
			require.NoError(t, err)
			var got []string
			for _, row := range rep.Rows {
				got = append(got, row.BatchNumber)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExpiryReport_ZeroQuantityRowsIncluded(t *testing.T) {
	f := newReportFixture(t)
	f.addBatch("Paracetamol 650", "B-EMPTY", 0, 10)

	rep, err := f.service.GetExpiringReport(context.Background(), f.storeID, ReportQuery{})
	require.NoError(t, err)
	require.Equal(t, 1, rep.Total)
	assert.Equal(t, int64(0), rep.Rows[0].Quantity)
}

func TestSimplifyMedicineName(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"[DSTB-CP(P)] 2 FDC H50 R75", "2-Drug Combo H 50 mg R 75 mg"},
		{"[PC-48 (DT)] cycloserine 250", "Cycloserine 250 mg"},
		{"Ethambutol 400 (P)", "Ethambutol 400 mg"},
		{"clofazimine 100 mg", "Clofazimine 100 mg"},
		{"Vitamin B6 , 25", "Vitamin B6, 25 mg"},
		{"", ""},
		{"[ONLY-CODE]", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SimplifyMedicineName(tc.raw), "raw=%q", tc.raw)
	}
}
