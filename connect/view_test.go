package connect

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newViewFixture(t *testing.T) (*View, *MemoryBackend) {
	t.Helper()
	b := NewMemoryBackend()
	b.NewID = sequentialIDs()
	b.Put(CollectionUsers, "me", map[string]any{"name": "Me"})
	b.Put(CollectionUsers, "u1", map[string]any{"name": "Ana", "skills": []any{"Go"}})
	b.Put(CollectionUsers, "u2", map[string]any{"name": "Bo"})
	putRequest(b, "old", "u2", "me", "accepted")
	b.SignIn("me")
	v := NewView(b, yes())
	if err := v.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return v, b
}

func TestViewLoad(t *testing.T) {
	v, _ := newViewFixture(t)
	if got := v.Members(""); len(got) != 2 {
		t.Fatalf("expected two members, got %+v", got)
	}
	if got := v.Members("go"); len(got) != 1 || got[0].ID != "u1" {
		t.Errorf("expected u1 for skill search, got %+v", got)
	}
	if c := v.Machine().Control("u2"); c.Label != LabelMessage {
		t.Errorf("expected Message for an accepted connection, got %+v", c)
	}
}

func TestViewPressTogglesRequest(t *testing.T) {
	v, b := newViewFixture(t)
	ctx := context.Background()
	if err := v.Press(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if c := v.Machine().Control("u1"); c.Label != LabelRequested {
		t.Fatalf("expected Requested, got %+v", c)
	}
	if err := v.Press(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	if c := v.Machine().Control("u1"); c.Label != LabelConnect {
		t.Errorf("expected Connect after withdrawing, got %+v", c)
	}
	if err := v.Press(ctx, "u2"); err != nil {
		t.Errorf("expected no-op for Message, got %v", err)
	}
	if b.Len(CollectionRequests) != 1 {
		t.Errorf("expected only the accepted record left, got %d", b.Len(CollectionRequests))
	}
}

func TestViewLoadFailureKeepsMembers(t *testing.T) {
	v, b := newViewFixture(t)
	b.Fail = func(op, collection string) error {
		if collection == CollectionUsers {
			return errors.New("offline")
		}
		return nil
	}
	err := v.Load(context.Background())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if len(v.Members("")) != 2 {
		t.Error("expected previous directory kept")
	}
}

func TestViewLoadFailureAfterViewerChangeKeepsBoth(t *testing.T) {
	v, b := newViewFixture(t)
	b.SignIn("u1")
	b.Fail = func(op, collection string) error {
		if collection == CollectionUsers {
			// let the request queries finish first
			time.Sleep(20 * time.Millisecond)
			return errors.New("offline")
		}
		return nil
	}
	if err := v.Load(context.Background()); err == nil {
		t.Fatal("expected load to fail")
	}
	if got := v.Store().Viewer(); got != "me" {
		t.Errorf("expected cache still for me, got %q", got)
	}
	if c := v.Machine().Control("u2"); c.Label != LabelMessage {
		t.Errorf("expected previous connection kept, got %+v", c)
	}
	for _, m := range v.Members("") {
		if m.ID == "me" {
			t.Errorf("expected directory without the cached viewer, got %+v", v.Members(""))
		}
	}
	if len(v.Members("")) != 2 {
		t.Errorf("expected previous directory kept, got %+v", v.Members(""))
	}
}
