// Package tx serializes mutations per game id. A transaction is opened
// with a snapshot of the pre-mutation state; on any failure the caller
// rolls back and reinstates that snapshot, so a game is never left
// partially mutated. The deadline is a liveness net against a caller
// dying between Begin and End.
package tx

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrTxNotRegistered = errors.New("game not registered for transactions")
	ErrTxInProgress    = errors.New("transaction already in progress")
	ErrTxTimeout       = errors.New("transaction timed out")
	ErrTxNotOwner      = errors.New("transaction owned by another caller")
	ErrNoTransaction   = errors.New("no open transaction")
)

// DefaultTimeout bounds how long a single action may hold a game.
const DefaultTimeout = 5 * time.Second

type transaction struct {
	owner    string
	deadline time.Time
	snapshot any
}

// Handler owns one logical lock per registered game id. Contended
// Begins fail fast with ErrTxInProgress rather than blocking; a Begin
// against an expired holder fails with ErrTxTimeout and the caller must
// Rollback the stale transaction before retrying.
type Handler struct {
	mu      sync.Mutex
	timeout time.Duration
	open    map[string]*transaction
	known   map[string]struct{}
	now     func() time.Time
}

func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{
		timeout: timeout,
		open:    map[string]*transaction{},
		known:   map[string]struct{}{},
		now:     time.Now,
	}
}

// Register makes a game id eligible for transactions. Idempotent.
func (h *Handler) Register(gameID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.known[gameID] = struct{}{}
}

// Begin opens an exclusive transaction holding the caller's snapshot of
// the pre-mutation state.
func (h *Handler) Begin(gameID, owner string, snapshot any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.known[gameID]; !ok {
		return fmt.Errorf("%w: id=%s", ErrTxNotRegistered, gameID)
	}
	if cur, ok := h.open[gameID]; ok {
		if h.now().After(cur.deadline) {
			return fmt.Errorf("%w: stale transaction by %s on id=%s", ErrTxTimeout, cur.owner, gameID)
		}
		return fmt.Errorf("%w: id=%s", ErrTxInProgress, gameID)
	}
	h.open[gameID] = &transaction{
		owner:    owner,
		deadline: h.now().Add(h.timeout),
		snapshot: snapshot,
	}
	return nil
}

// Check verifies the open transaction still belongs to the caller and
// has not timed out.
func (h *Handler) Check(gameID, owner string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.open[gameID]
	if !ok {
		return fmt.Errorf("%w: id=%s", ErrNoTransaction, gameID)
	}
	if cur.owner != owner {
		return fmt.Errorf("%w: id=%s owner=%s", ErrTxNotOwner, gameID, cur.owner)
	}
	if h.now().After(cur.deadline) {
		return fmt.Errorf("%w: id=%s", ErrTxTimeout, gameID)
	}
	return nil
}

// End commits: the snapshot is discarded and the lock released. Ending
// past the deadline fails and the caller must roll back instead.
func (h *Handler) End(gameID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.open[gameID]
	if !ok {
		return fmt.Errorf("%w: id=%s", ErrNoTransaction, gameID)
	}
	if h.now().After(cur.deadline) {
		return fmt.Errorf("%w: id=%s", ErrTxTimeout, gameID)
	}
	delete(h.open, gameID)
	return nil
}

// Rollback releases the lock and returns the snapshot captured at
// Begin. The caller must reinstate it as the authoritative state.
func (h *Handler) Rollback(gameID string) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.open[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", ErrNoTransaction, gameID)
	}
	delete(h.open, gameID)
	return cur.snapshot, nil
}
