package connect

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// View is the member directory as one signed-in user sees it. It owns
// its Store; nothing else writes to it.
type View struct {
	backend Backend
	store   *Store
	machine *Machine

	mu      sync.RWMutex
	members []Member
}

func NewView(b Backend, options ...MachineOption) *View {
	store := NewStore(b)
	return &View{backend: b, store: store, machine: NewMachine(store, options...)}
}

func (v *View) Store() *Store     { return v.store }
func (v *View) Machine() *Machine { return v.machine }

// Load resolves the current user, then fetches the directory and the
// viewer's relationship records together. Both are applied only when
// both succeed; on failure the previous directory and cache are kept.
func (v *View) Load(ctx context.Context) error {
	v.store.reloadMu.Lock()
	defer v.store.reloadMu.Unlock()

	viewer, err := v.backend.CurrentUser(ctx)
	if err != nil {
		return &LoadError{Op: "user", Err: err}
	}
	var (
		snap    snapshot
		members []Member
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap, err = v.store.fetch(gctx, viewer)
		return err
	})
	g.Go(func() (err error) {
		members, err = LoadDirectory(gctx, v.backend, viewer)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	v.store.apply(snap)
	v.mu.Lock()
	v.members = members
	v.mu.Unlock()
	return nil
}

// Members returns the directory filtered by term.
func (v *View) Members(term string) []Member {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Search(v.members, term)
}

// Press performs the action the target's control currently offers.
// Accepted connections have nothing to do here.
func (v *View) Press(ctx context.Context, target string) error {
	c := v.machine.Control(target)
	if c.Disabled {
		op := OpSend
		if c.Action == ActionCancel {
			op = OpCancel
		}
		return &MutationError{Op: op, Target: target, Err: ErrInFlight}
	}
	switch c.Action {
	case ActionSend:
		_, err := v.machine.Send(ctx, target)
		return err
	case ActionCancel:
		return v.machine.Cancel(ctx, target, c.RecordID)
	}
	return nil
}
