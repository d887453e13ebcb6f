package dispensing

import (
	"time"

	"github.com/google/uuid"
	"github.com/medisync/backend/internal/domain/dispensing"
)

// OperatorContext carries the per-request operator inputs the engine needs.
// Branch and override capability arrive here explicitly (from JWT claims at
// the HTTP boundary) instead of being read from ambient session state.
type OperatorContext struct {
	OperatorID  uuid.UUID
	StoreID     uuid.UUID
	CanOverride bool
}

// BatchView is one dispensable batch row with its classification tag
type BatchView struct {
	BatchID     uuid.UUID `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	ExpiryDate  string    `json:"expiry_date"`
	DaysLeft    int       `json:"days_left"`
	Severity    string    `json:"severity"`
	IsEarliest  bool      `json:"is_earliest"`
}

// MedicineBatchesView groups a medicine's batches in dispensing order
type MedicineBatchesView struct {
	Medicine string      `json:"medicine"`
	Batches  []BatchView `json:"batches"`
}

// SelectionView describes the operator's current batch selection
type SelectionView struct {
	Medicine     string    `json:"medicine"`
	BatchID      uuid.UUID `json:"batch_id"`
	BatchNumber  string    `json:"batch_number"`
	ProductID    uuid.UUID `json:"product_id"`
	ExpiryDate   string    `json:"expiry_date"`
	QtyAvailable int64     `json:"qty_available"`
	Severity     string    `json:"severity"`
}

// CartLineView is one pending cart line
type CartLineView struct {
	Medicine    string    `json:"medicine"`
	BatchID     uuid.UUID `json:"batch_id"`
	BatchNumber string    `json:"batch_number"`
	ProductID   uuid.UUID `json:"product_id"`
	ExpiryDate  string    `json:"expiry_date"`
	Quantity    int64     `json:"quantity"`
}

// CartView is the pending cart with derived totals
type CartView struct {
	Lines         []CartLineView `json:"lines"`
	TotalQuantity int64          `json:"total_quantity"`
	LineCount     int            `json:"line_count"`
}

// CommitStatus is the aggregate outcome of a commit attempt
type CommitStatus string

const (
	CommitAllSucceeded   CommitStatus = "all_succeeded"
	CommitPartialFailure CommitStatus = "partial_failure"
	CommitAllFailed      CommitStatus = "all_failed"
)

// LineOutcome is the independent result of one cart line's stock decrement
type LineOutcome struct {
	Medicine    string    `json:"medicine"`
	BatchNumber string    `json:"batch_number"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	OK          bool      `json:"ok"`
	ErrorCode   string    `json:"error_code,omitempty"`
	ErrorMsg    string    `json:"error_message,omitempty"`
}

// CommitResult aggregates the per-line outcomes of a commit. Per-line detail
// is always retained so failures can be audited, not just summarized.
type CommitResult struct {
	Status       CommitStatus  `json:"status"`
	Lines        []LineOutcome `json:"lines"`
	FailedLines  []LineOutcome `json:"failed_lines,omitempty"`
	CartCleared  bool          `json:"cart_cleared"`
}

func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

func toSelectionView(sel *dispensing.Selection) *SelectionView {
	return &SelectionView{
		Medicine:     sel.Medicine,
		BatchID:      sel.BatchID,
		BatchNumber:  sel.BatchNumber,
		ProductID:    sel.ProductID,
		ExpiryDate:   formatDate(sel.ExpiryDate),
		QtyAvailable: sel.QtyAvailable,
		Severity:     sel.Severity.String(),
	}
}

func toCartView(cart *dispensing.Cart) *CartView {
	totals := cart.Totals()
	view := &CartView{
		Lines:         make([]CartLineView, 0, len(cart.Lines)),
		TotalQuantity: totals.TotalQuantity,
		LineCount:     totals.Lines,
	}
	for _, line := range cart.Lines {
		view.Lines = append(view.Lines, CartLineView{
			Medicine:    line.Medicine,
			BatchID:     line.BatchID,
			BatchNumber: line.BatchNumber,
			ProductID:   line.ProductID,
			ExpiryDate:  formatDate(line.ExpiryDate),
			Quantity:    line.Quantity,
		})
	}
	return view
}
