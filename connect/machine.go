package connect

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"hackpulse/clock"
)

// Operation names carried by MutationError.
const (
	OpSend   = "send"
	OpCancel = "cancel"
)

// Control labels.
const (
	LabelConnect     = "Connect"
	LabelSending     = "Sending..."
	LabelRequested   = "Requested"
	LabelWithdrawing = "Withdrawing..."
	LabelMessage     = "Message"
)

// WithdrawPrompt is asked before a pending request is deleted.
const WithdrawPrompt = "Withdraw connection request?"

type Action int

const (
	ActionSend Action = iota
	ActionCancel
	ActionMessage
)

// Control is what a member card's action button shows.
type Control struct {
	Label    string
	Disabled bool
	Action   Action
	// RecordID is the request to withdraw when Action is ActionCancel.
	RecordID string
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Machine moves viewer/target pairs between none and pending. The store
// is updated only after the backend confirms a create or delete, and a
// pair with a call in flight rejects further calls until it finishes.
type Machine struct {
	store    *Store
	backend  Backend
	confirm  Confirmer
	clock    clock.Clock
	log      *slog.Logger
	onChange func(target string)

	mu       sync.Mutex
	inflight map[string]Action
}

type MachineOption func(*Machine)

// WithConfirmer sets the withdrawal prompt. Without one every withdrawal
// is refused with ErrNotConfirmed.
func WithConfirmer(c Confirmer) MachineOption {
	return func(m *Machine) { m.confirm = c }
}

func WithClock(c clock.Clock) MachineOption {
	return func(m *Machine) { m.clock = c }
}

func WithLogger(l *slog.Logger) MachineOption {
	return func(m *Machine) { m.log = l }
}

// WithOnChange registers a callback run whenever a target's control may
// have changed. It runs on the calling goroutine and must not reload the
// store.
func WithOnChange(fn func(target string)) MachineOption {
	return func(m *Machine) { m.onChange = fn }
}

func NewMachine(store *Store, options ...MachineOption) *Machine {
	m := &Machine{
		store:    store,
		backend:  store.backend,
		clock:    clock.Real(),
		log:      slog.Default(),
		inflight: map[string]Action{},
	}
	for _, o := range options {
		o(m)
	}
	return m
}

// Send creates a pending request from the viewer to target and returns
// its record id.
func (m *Machine) Send(ctx context.Context, target string) (string, error) {
	viewer := m.store.Viewer()
	if viewer == "" {
		return "", &MutationError{Op: OpSend, Target: target, Err: ErrSignedOut}
	}
	if target == "" || target == viewer {
		return "", &MutationError{Op: OpSend, Target: target, Err: ErrInvalidTransition}
	}
	if err := m.begin(viewer, target, ActionSend, func(st State) bool { return st.Status == StatusNone }); err != nil {
		return "", &MutationError{Op: OpSend, Target: target, Err: err}
	}
	defer m.end(target)

	id, err := m.backend.Create(ctx, CollectionRequests, map[string]any{
		"from":      viewer,
		"to":        target,
		"status":    StatusPending.String(),
		"timestamp": m.clock.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		m.log.Warn("send request", "to", target, "err", err)
		return "", &MutationError{Op: OpSend, Target: target, Err: err}
	}
	m.store.commitSent(viewer, target, id)
	m.log.Info("send request", "to", target, "id", id)
	return id, nil
}

// Cancel withdraws the pending request recordID to target after the
// user confirms. Nothing is deleted without confirmation.
func (m *Machine) Cancel(ctx context.Context, target, recordID string) error {
	viewer := m.store.Viewer()
	if viewer == "" {
		return &MutationError{Op: OpCancel, Target: target, Err: ErrSignedOut}
	}
	matches := func(st State) bool { return st.Status == StatusPending && st.RecordID == recordID }
	if err := m.check(target, matches); err != nil {
		return &MutationError{Op: OpCancel, Target: target, Err: err}
	}
	if m.confirm == nil || !m.confirm.Confirm(ctx, WithdrawPrompt) {
		return &MutationError{Op: OpCancel, Target: target, Err: ErrNotConfirmed}
	}
	// the prompt may have taken a while; check again before marking
	if err := m.begin(viewer, target, ActionCancel, matches); err != nil {
		return &MutationError{Op: OpCancel, Target: target, Err: err}
	}
	defer m.end(target)

	if err := m.backend.Delete(ctx, CollectionRequests, recordID); err != nil {
		m.log.Warn("withdraw request", "to", target, "id", recordID, "err", err)
		return &MutationError{Op: OpCancel, Target: target, Err: err}
	}
	m.store.commitWithdrawn(viewer, target, recordID)
	m.log.Info("withdraw request", "to", target, "id", recordID)
	return nil
}

// Control returns the current affordance for target.
func (m *Machine) Control(target string) Control {
	m.mu.Lock()
	action, busy := m.inflight[target]
	m.mu.Unlock()
	if busy {
		if action == ActionCancel {
			return Control{Label: LabelWithdrawing, Disabled: true, Action: ActionCancel}
		}
		return Control{Label: LabelSending, Disabled: true, Action: ActionSend}
	}
	st := m.store.StatusFor(target)
	switch st.Status {
	case StatusAccepted:
		return Control{Label: LabelMessage, Action: ActionMessage}
	case StatusPending:
		return Control{Label: LabelRequested, Action: ActionCancel, RecordID: st.RecordID}
	}
	return Control{Label: LabelConnect, Action: ActionSend}
}

// InFlight reports whether a call for target is running.
func (m *Machine) InFlight(target string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[target]
	return ok
}

func (m *Machine) check(target string, allowed func(State) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, busy := m.inflight[target]; busy {
		return ErrInFlight
	}
	if !allowed(m.store.StatusFor(target)) {
		return ErrInvalidTransition
	}
	return nil
}

// begin marks target in flight. Until end, the store cannot be reloaded,
// so the commit lands on the cache the transition was checked against.
func (m *Machine) begin(viewer, target string, a Action, allowed func(State) bool) error {
	m.store.reloadMu.RLock()
	m.mu.Lock()
	var err error
	if _, busy := m.inflight[target]; busy {
		err = ErrInFlight
	} else if m.store.Viewer() != viewer || !allowed(m.store.StatusFor(target)) {
		err = ErrInvalidTransition
	}
	if err != nil {
		m.mu.Unlock()
		m.store.reloadMu.RUnlock()
		return err
	}
	m.inflight[target] = a
	m.mu.Unlock()
	m.changed(target)
	return nil
}

func (m *Machine) end(target string) {
	m.mu.Lock()
	delete(m.inflight, target)
	m.mu.Unlock()
	m.store.reloadMu.RUnlock()
	m.changed(target)
}

func (m *Machine) changed(target string) {
	if m.onChange != nil {
		m.onChange(target)
	}
}
