package report

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/medisync/backend/internal/domain/dispensing"
	"github.com/medisync/backend/internal/domain/inventory"
)

// SortKey selects the ordering of the expiry report
type SortKey string

const (
	SortExpiryAsc  SortKey = "expiryAsc"
	SortExpiryDesc SortKey = "expiryDesc"
	SortQtyAsc     SortKey = "qtyAsc"
	SortQtyDesc    SortKey = "qtyDesc"
	SortNameAsc    SortKey = "nameAsc"
	SortNameDesc   SortKey = "nameDesc"
)

// ReportQuery filters and orders the expiry report. CutoffDays of zero means
// the configured monitoring horizon.
type ReportQuery struct {
	CutoffDays int     `form:"cutoff_days" binding:"omitempty,min=1"`
	Search     string  `form:"search"`
	SortKey    SortKey `form:"sort"`
}

// ReportRow is one batch inside the monitoring window, classified
type ReportRow struct {
	Medicine    string    `json:"medicine"`
	DisplayName string    `json:"display_name"`
	BatchNumber string    `json:"batch_number"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	ExpiryDate  string    `json:"expiry_date"`
	DaysLeft    int       `json:"days_left"`
	Severity    string    `json:"severity"`
}

// Report is the filtered, sorted monitoring result set
type Report struct {
	CutoffDays int         `json:"cutoff_days"`
	Rows       []ReportRow `json:"rows"`
	Total      int         `json:"total"`
}

// ExpiryReportService builds the expiry-monitoring report. It classifies with
// the same thresholds the dispensing selector uses; the two screens must never
// disagree about what counts as urgent.
type ExpiryReportService struct {
	repo       inventory.BranchInventoryRepository
	thresholds dispensing.Thresholds
	collator   *collate.Collator
	logger     *zap.Logger
	now        func() time.Time
}

// NewExpiryReportService creates the service; pass nil for time.Now
func NewExpiryReportService(
	repo inventory.BranchInventoryRepository,
	thresholds dispensing.Thresholds,
	logger *zap.Logger,
	now func() time.Time,
) *ExpiryReportService {
	if now == nil {
		now = time.Now
	}
	return &ExpiryReportService{
		repo:       repo,
		thresholds: thresholds,
		collator:   collate.New(language.English, collate.IgnoreCase),
		logger:     logger,
		now:        now,
	}
}

// GetExpiringReport returns every batch at the store whose days-left is within
// the cutoff. Already-expired rows stay inside the window; rows beyond the
// cutoff are excluded entirely. Zero-quantity rows are reported: exhausted
// stock close to expiry is still a signal the monitoring screen shows.
func (s *ExpiryReportService) GetExpiringReport(ctx context.Context, storeID uuid.UUID, query ReportQuery) (*Report, error) {
	batches, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	cutoff := query.CutoffDays
	if cutoff <= 0 {
		cutoff = s.thresholds.HorizonDays
	}
	search := strings.ToLower(strings.TrimSpace(query.Search))
	today := s.now()

	rows := make([]ReportRow, 0, len(batches))
	for _, b := range batches {
		daysLeft := dispensing.DaysLeft(today, b.ExpiryDate)
		if daysLeft > cutoff {
			continue
		}
		display := SimplifyMedicineName(b.Medicine)
		if search != "" && !strings.Contains(strings.ToLower(display), search) {
			continue
		}
		rows = append(rows, ReportRow{
			Medicine:    b.Medicine,
			DisplayName: display,
			BatchNumber: b.BatchNumber,
			ProductID:   b.ProductID,
			Quantity:    b.Quantity,
			ExpiryDate:  b.ExpiryDate.Format("2006-01-02"),
			DaysLeft:    daysLeft,
			Severity:    s.thresholds.Classify(daysLeft).String(),
		})
	}

	s.sortRows(rows, query.SortKey)

	return &Report{
		CutoffDays: cutoff,
		Rows:       rows,
		Total:      len(rows),
	}, nil
}

// sortRows orders the report; an unknown key falls back to expiry ascending
func (s *ExpiryReportService) sortRows(rows []ReportRow, key SortKey) {
	var less func(a, b *ReportRow) bool
	switch key {
	case SortExpiryDesc:
		less = func(a, b *ReportRow) bool { return a.DaysLeft > b.DaysLeft }
	case SortQtyAsc:
		less = func(a, b *ReportRow) bool { return a.Quantity < b.Quantity }
	case SortQtyDesc:
		less = func(a, b *ReportRow) bool { return a.Quantity > b.Quantity }
	case SortNameAsc:
		less = func(a, b *ReportRow) bool {
			return s.collator.CompareString(a.DisplayName, b.DisplayName) < 0
		}
	case SortNameDesc:
		less = func(a, b *ReportRow) bool {
			return s.collator.CompareString(a.DisplayName, b.DisplayName) > 0
		}
	default:
		less = func(a, b *ReportRow) bool { return a.DaysLeft < b.DaysLeft }
	}
	sort.SliceStable(rows, func(i, j int) bool { return less(&rows[i], &rows[j]) })
}
