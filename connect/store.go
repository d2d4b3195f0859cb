package connect

import (
	"context"
	"log/slog"
	"maps"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Store caches the viewer's own relationship records: pending requests
// the viewer sent, keyed by target, and the set of accepted connections
// in either direction.
//
// Only Reload and the Machine write it. Reloads are sequenced: a second
// Reload waits for the first to finish, so the last call's result wins.
// reloadMu is held for writing by reloads and for reading by Machine
// calls in flight.
type Store struct {
	backend Backend
	log     *slog.Logger

	reloadMu sync.RWMutex

	mu       sync.RWMutex
	viewer   string
	pending  map[string]string
	accepted map[string]struct{}
}

type StoreOption func(*Store)

func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.log = l }
}

func NewStore(b Backend, options ...StoreOption) *Store {
	s := &Store{
		backend:  b,
		log:      slog.Default(),
		pending:  map[string]string{},
		accepted: map[string]struct{}{},
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Reload rebuilds the cache for viewer from three queries run in
// parallel. An empty viewer clears the cache. On error the previous
// cache is kept and a *LoadError is returned.
//
// A reload excludes Machine calls in flight on the same store: it waits
// for running sends and withdrawals, and new ones wait for it.
func (s *Store) Reload(ctx context.Context, viewer string) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	snap, err := s.fetch(ctx, viewer)
	if err != nil {
		return err
	}
	s.apply(snap)
	return nil
}

// snapshot is one viewer's fetched relationship records, not yet applied.
type snapshot struct {
	viewer   string
	pending  map[string]string
	accepted map[string]struct{}
}

// fetch runs the reload queries without touching the cache. Callers hold
// reloadMu.
func (s *Store) fetch(ctx context.Context, viewer string) (snapshot, error) {
	snap := snapshot{viewer: viewer, pending: map[string]string{}, accepted: map[string]struct{}{}}
	if viewer == "" {
		return snap, nil
	}

	var sent, sentAccepted, receivedAccepted []Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sent, err = s.backend.Query(gctx, CollectionRequests, Eq("from", viewer), Eq("status", "pending"))
		return err
	})
	g.Go(func() (err error) {
		sentAccepted, err = s.backend.Query(gctx, CollectionRequests, Eq("from", viewer), Eq("status", "accepted"))
		return err
	})
	g.Go(func() (err error) {
		receivedAccepted, err = s.backend.Query(gctx, CollectionRequests, Eq("to", viewer), Eq("status", "accepted"))
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn("reload requests", "viewer", viewer, "err", err)
		return snapshot{}, &LoadError{Op: "requests", Err: err}
	}

	for _, d := range sent {
		rec, err := DecodeRecord(d)
		if err != nil {
			return snapshot{}, &LoadError{Op: "requests", Err: err}
		}
		snap.pending[rec.To] = rec.ID
	}
	for _, d := range sentAccepted {
		rec, err := DecodeRecord(d)
		if err != nil {
			return snapshot{}, &LoadError{Op: "requests", Err: err}
		}
		snap.accepted[rec.To] = struct{}{}
	}
	for _, d := range receivedAccepted {
		rec, err := DecodeRecord(d)
		if err != nil {
			return snapshot{}, &LoadError{Op: "requests", Err: err}
		}
		snap.accepted[rec.From] = struct{}{}
	}
	return snap, nil
}

func (s *Store) apply(snap snapshot) {
	s.replace(snap.viewer, snap.pending, snap.accepted)
	s.log.Debug("reload requests", "viewer", snap.viewer, "pending", len(snap.pending), "accepted", len(snap.accepted))
}

func (s *Store) replace(viewer string, pending map[string]string, accepted map[string]struct{}) {
	s.mu.Lock()
	s.viewer, s.pending, s.accepted = viewer, pending, accepted
	s.mu.Unlock()
}

// StatusFor returns the viewer's relationship with target.
func (s *Store) StatusFor(target string) State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accepted[target]; ok {
		return State{Status: StatusAccepted}
	}
	if id, ok := s.pending[target]; ok {
		return State{Status: StatusPending, RecordID: id}
	}
	return State{Status: StatusNone}
}

// Viewer returns the user the cache was last loaded for.
func (s *Store) Viewer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewer
}

// Pending returns a copy of the pending requests keyed by target.
func (s *Store) Pending() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.pending)
}

// Accepted returns the number of accepted connections.
func (s *Store) Accepted() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accepted)
}

// commitSent records a confirmed request. It is dropped when the cache
// was reloaded for another viewer in the meantime.
func (s *Store) commitSent(viewer, target, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer != viewer {
		return false
	}
	s.pending[target] = id
	return true
}

// commitWithdrawn removes a confirmed withdrawal if the cache still
// holds the same record.
func (s *Store) commitWithdrawn(viewer, target, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewer != viewer || s.pending[target] != id {
		return false
	}
	delete(s.pending, target)
	return true
}
