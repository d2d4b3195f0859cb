package connect

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

// MemoryBackend is an in-process Backend for previews and tests.
type MemoryBackend struct {
	mu          sync.Mutex
	viewer      string
	collections map[string][]Document

	// NewID generates ids for created documents. Defaults to random UUIDs.
	NewID func() string
	// Fail, when set, is consulted before every operation; a non-nil
	// result is returned instead of performing it.
	Fail func(op, collection string) error
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{collections: map[string][]Document{}, NewID: uuid.NewString}
}

// SignIn sets the current user. An empty id signs out.
func (b *MemoryBackend) SignIn(id string) {
	b.mu.Lock()
	b.viewer = id
	b.mu.Unlock()
}

// Put inserts or replaces a document.
func (b *MemoryBackend) Put(collection, id string, fields map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := Document{ID: id, Fields: maps.Clone(fields)}
	docs := b.collections[collection]
	if i := slices.IndexFunc(docs, func(x Document) bool { return x.ID == id }); i >= 0 {
		docs[i] = d
		return
	}
	b.collections[collection] = append(docs, d)
}

// Len returns the number of documents in collection.
func (b *MemoryBackend) Len(collection string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.collections[collection])
}

func (b *MemoryBackend) fail(op, collection string) error {
	if b.Fail == nil {
		return nil
	}
	return b.Fail(op, collection)
}

func (b *MemoryBackend) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := b.fail("query", collection); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Document
	for _, d := range b.collections[collection] {
		if matchesAll(d, filters) {
			out = append(out, Document{ID: d.ID, Fields: maps.Clone(d.Fields)})
		}
	}
	return out, nil
}

func matchesAll(d Document, filters []Filter) bool {
	for _, f := range filters {
		if v, ok := d.Fields[f.Field].(string); !ok || v != f.Value {
			return false
		}
	}
	return true
}

func (b *MemoryBackend) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := b.fail("create", collection); err != nil {
		return "", err
	}
	id := b.NewID()
	b.Put(collection, id, fields)
	return id, nil
}

func (b *MemoryBackend) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.fail("delete", collection); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	docs := b.collections[collection]
	i := slices.IndexFunc(docs, func(x Document) bool { return x.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	b.collections[collection] = slices.Delete(docs, i, i+1)
	return nil
}

func (b *MemoryBackend) CurrentUser(ctx context.Context) (string, error) {
	if err := b.fail("user", ""); err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.viewer, nil
}
