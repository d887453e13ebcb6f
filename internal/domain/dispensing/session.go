package dispensing

import (
	"context"

	"github.com/google/uuid"
)

// SessionState tracks where a dispensing session is in its lifecycle:
// Idle -> MedicineSearched -> BatchSelected -> LineAdded* -> Committing -> Idle.
// Committing is terminal per attempt; every commit returns the session to Idle.
type SessionState string

const (
	SessionIdle             SessionState = "idle"
	SessionMedicineSearched SessionState = "medicine_searched"
	SessionBatchSelected    SessionState = "batch_selected"
	SessionLineAdded        SessionState = "line_added"
)

// Session is the per-operator dispensing state: the current batch selection
// and the pending cart. One operator, one active cart.
type Session struct {
	OperatorID uuid.UUID    `json:"operator_id"`
	StoreID    uuid.UUID    `json:"store_id"`
	State      SessionState `json:"state"`
	Selection  *Selection   `json:"selection,omitempty"`
	Cart       *Cart        `json:"cart"`
}

// NewSession creates an idle session for the operator at a store
func NewSession(operatorID, storeID uuid.UUID) *Session {
	return &Session{
		OperatorID: operatorID,
		StoreID:    storeID,
		State:      SessionIdle,
		Cart:       NewCart(),
	}
}

// ApplySelection replaces the current selection after a successful Select.
// Failed selects never reach this point, so the prior selection survives them.
func (s *Session) ApplySelection(sel *Selection) {
	s.Selection = sel
	s.State = SessionBatchSelected
}

// ClearSelection drops the current selection (catalog refresh, new search)
func (s *Session) ClearSelection() {
	s.Selection = nil
	if s.Cart.IsEmpty() {
		s.State = SessionIdle
	}
}

// SessionStore persists dispensing sessions between requests. Implementations
// live in infrastructure (in-memory for a single instance, Redis when state
// must be shared).
type SessionStore interface {
	// Get returns the operator's session, or (nil, nil) when none exists
	Get(ctx context.Context, operatorID uuid.UUID) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, operatorID uuid.UUID) error
}
