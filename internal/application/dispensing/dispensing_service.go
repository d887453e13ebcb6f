package dispensing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medisync/backend/internal/domain/dispensing"
	"github.com/medisync/backend/internal/domain/inventory"
	"github.com/medisync/backend/internal/domain/shared"
)

// DispensingService orchestrates the dispensing workflow: search, batch
// selection, cart building and the final stock commit. One session per
// operator; selection and cart live in the session store between requests.
type DispensingService struct {
	repo     inventory.BranchInventoryRepository
	sessions dispensing.SessionStore
	selector *dispensing.FEFOSelector
	logger   *zap.Logger
	now      func() time.Time
}

// NewDispensingService creates the service. The clock is injectable for
// tests; pass nil for time.Now.
func NewDispensingService(
	repo inventory.BranchInventoryRepository,
	sessions dispensing.SessionStore,
	selector *dispensing.FEFOSelector,
	logger *zap.Logger,
	now func() time.Time,
) *DispensingService {
	if now == nil {
		now = time.Now
	}
	return &DispensingService{
		repo:     repo,
		sessions: sessions,
		selector: selector,
		logger:   logger,
		now:      now,
	}
}

// session loads the operator's session, creating an idle one on first use
func (s *DispensingService) session(ctx context.Context, op OperatorContext) (*dispensing.Session, error) {
	sess, err := s.sessions.Get(ctx, op.OperatorID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = dispensing.NewSession(op.OperatorID, op.StoreID)
	}
	return sess, nil
}

// catalog builds a fresh snapshot of the store's sellable batches
func (s *DispensingService) catalog(ctx context.Context, storeID uuid.UUID) (*inventory.BatchCatalog, error) {
	batches, err := s.repo.FindByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return inventory.NewBatchCatalog(batches), nil
}

// SearchMedicines returns the store's distinct in-stock medicine names
// matching the term, case-insensitively. An empty term returns all of them.
func (s *DispensingService) SearchMedicines(ctx context.Context, op OperatorContext, term string) ([]string, error) {
	catalog, err := s.catalog(ctx, op.StoreID)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(ctx, op)
	if err != nil {
		return nil, err
	}
	sess.State = dispensing.SessionMedicineSearched
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}

	return catalog.SearchMedicines(term), nil
}

// GetBatchesForMedicine returns the medicine's dispensable batches in
// first-expiry-first order, each classified against the expiry policy, and
// establishes the earliest batch as the operator's default selection.
func (s *DispensingService) GetBatchesForMedicine(ctx context.Context, op OperatorContext, medicine string) (*MedicineBatchesView, error) {
	catalog, err := s.catalog(ctx, op.StoreID)
	if err != nil {
		return nil, err
	}

	def, err := s.selector.DefaultSelection(catalog, medicine)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(ctx, op)
	if err != nil {
		return nil, err
	}
	sess.ApplySelection(def)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}

	today := s.now()
	thresholds := s.selector.Thresholds()
	view := &MedicineBatchesView{Medicine: medicine}
	for i, b := range catalog.BatchesFor(medicine) {
		daysLeft := dispensing.DaysLeft(today, b.ExpiryDate)
		view.Batches = append(view.Batches, BatchView{
			BatchID:     b.ID,
			BatchNumber: b.BatchNumber,
			ProductID:   b.ProductID,
			Quantity:    b.Quantity,
			ExpiryDate:  formatDate(b.ExpiryDate),
			DaysLeft:    daysLeft,
			Severity:    thresholds.Classify(daysLeft).String(),
			IsEarliest:  i == 0,
		})
	}
	return view, nil
}

// SelectBatch validates the operator's explicit batch pick. Picking any batch
// other than the earliest requires the override capability; an expired batch
// is refused outright without it. On failure the previous selection stands.
func (s *DispensingService) SelectBatch(ctx context.Context, op OperatorContext, medicine string, batchID uuid.UUID) (*SelectionView, error) {
	catalog, err := s.catalog(ctx, op.StoreID)
	if err != nil {
		return nil, err
	}

	sel, err := s.selector.Select(catalog, medicine, batchID, op.CanOverride)
	if err != nil {
		return nil, err
	}

	sess, err := s.session(ctx, op)
	if err != nil {
		return nil, err
	}
	sess.ApplySelection(sel)
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}

	return toSelectionView(sel), nil
}

// AddToCart adds the requested quantity of the currently selected batch.
// The expired gate is re-checked here: a selection that was legal at pick
// time may have crossed its expiry date before quantity entry.
func (s *DispensingService) AddToCart(ctx context.Context, op OperatorContext, quantity int64) (*CartView, error) {
	sess, err := s.session(ctx, op)
	if err != nil {
		return nil, err
	}
	if sess.Selection == nil {
		return nil, dispensing.ErrNoStockAvailable
	}

	today := s.now()
	if dispensing.DaysLeft(today, sess.Selection.ExpiryDate) < 0 && !op.CanOverride {
		return nil, dispensing.ErrExpiredBatchBlocked
	}

	if err := sess.Cart.AddLine(sess.Selection, quantity); err != nil {
		return nil, err
	}
	sess.State = dispensing.SessionLineAdded
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}

	return toCartView(sess.Cart), nil
}

// GetCart returns the operator's pending cart
func (s *DispensingService) GetCart(ctx context.Context, op OperatorContext) (*CartView, error) {
	sess, err := s.session(ctx, op)
	if err != nil {
		return nil, err
	}
	return toCartView(sess.Cart), nil
}

// ClearCart empties the cart and drops the selection
func (s *DispensingService) ClearCart(ctx context.Context, op OperatorContext) error {
	sess, err := s.session(ctx, op)
	if err != nil {
		return err
	}
	sess.Cart.Clear()
	sess.ClearSelection()
	sess.State = dispensing.SessionIdle
	return s.sessions.Put(ctx, sess)
}

// ConfirmAndCommit attempts one stock decrement per cart line. Lines are
// independent: a failed line never rolls back lines already committed and
// never stops later lines from being attempted.
//
// The cart is cleared on any outcome with at least one success. When every
// line fails the cart is preserved intact so the sale can be retried.
func (s *DispensingService) ConfirmAndCommit(ctx context.Context, op OperatorContext) (*CommitResult, error) {
	sess, err := s.session(ctx, op)
	if err != nil {
		return nil, err
	}
	if sess.Cart.IsEmpty() {
		return nil, dispensing.ErrEmptyCart
	}

	result := &CommitResult{Lines: make([]LineOutcome, 0, len(sess.Cart.Lines))}
	succeeded, failed := 0, 0
	for _, line := range sess.Cart.Lines {
		outcome := LineOutcome{
			Medicine:    line.Medicine,
			BatchNumber: line.BatchNumber,
			ProductID:   line.ProductID,
			Quantity:    line.Quantity,
		}
		if err := s.repo.Decrement(ctx, line.ProductID, line.Quantity); err != nil {
			outcome.ErrorCode, outcome.ErrorMsg = commitErrorCode(err)
			failed++
			s.logger.Warn("dispense line failed",
				zap.String("operator_id", op.OperatorID.String()),
				zap.String("product_id", line.ProductID.String()),
				zap.String("batch_number", line.BatchNumber),
				zap.Int64("quantity", line.Quantity),
				zap.String("error_code", outcome.ErrorCode),
			)
		} else {
			outcome.OK = true
			succeeded++
		}
		result.Lines = append(result.Lines, outcome)
		if !outcome.OK {
			result.FailedLines = append(result.FailedLines, outcome)
		}
	}

	switch {
	case failed == 0:
		result.Status = CommitAllSucceeded
	case succeeded == 0:
		result.Status = CommitAllFailed
	default:
		result.Status = CommitPartialFailure
	}

	if succeeded > 0 {
		sess.Cart.Clear()
		result.CartCleared = true
	}
	sess.ClearSelection()
	sess.State = dispensing.SessionIdle
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("dispense committed",
		zap.String("operator_id", op.OperatorID.String()),
		zap.String("store_id", op.StoreID.String()),
		zap.String("status", string(result.Status)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
	return result, nil
}

// commitErrorCode maps a line failure to a stable code for the outcome report
func commitErrorCode(err error) (string, string) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code, domainErr.Message
	}
	return dispensing.ErrTransportFailure.Code, dispensing.ErrTransportFailure.Message
}
