// Package connect tracks connection requests between directory members
// and drives the send and withdraw controls shown on member cards.
package connect

import (
	"context"
	"fmt"
	"time"
)

// Collections used on the persistence backend.
const (
	CollectionRequests = "requests"
	CollectionUsers    = "users"
)

type Status int

const (
	StatusNone Status = iota
	StatusPending
	StatusAccepted
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	}
	return "none"
}

// ParseStatus accepts only the persisted record states.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "pending":
		return StatusPending, nil
	case "accepted":
		return StatusAccepted, nil
	}
	return StatusNone, fmt.Errorf("%w: unknown status %q", ErrDecode, s)
}

// State is the viewer's relationship with one target. RecordID is set
// only for pending requests.
type State struct {
	Status   Status
	RecordID string
}

// Record is a persisted connection request.
type Record struct {
	ID        string
	From      string
	To        string
	Status    Status
	CreatedAt time.Time
}

// Document is a raw record as the backend returns it.
type Document struct {
	ID     string
	Fields map[string]any
}

// Filter is an equality match on one document field.
type Filter struct {
	Field string
	Value string
}

func Eq(field, value string) Filter { return Filter{Field: field, Value: value} }

// Backend is the document store holding users and requests.
type Backend interface {
	Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error)
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	Delete(ctx context.Context, collection, id string) error
	// CurrentUser returns the signed-in user's id, or "" when signed out.
	CurrentUser(ctx context.Context) (string, error)
}

// DecodeRecord fails closed: from, to and a known status are required.
func DecodeRecord(d Document) (Record, error) {
	if d.ID == "" {
		return Record{}, fmt.Errorf("%w: record without id", ErrDecode)
	}
	from, err := stringField(d, "from", true)
	if err != nil {
		return Record{}, err
	}
	to, err := stringField(d, "to", true)
	if err != nil {
		return Record{}, err
	}
	raw, err := stringField(d, "status", true)
	if err != nil {
		return Record{}, err
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return Record{}, fmt.Errorf("record %s: %w", d.ID, err)
	}
	rec := Record{ID: d.ID, From: from, To: to, Status: status}

	switch ts := d.Fields["timestamp"].(type) {
	case nil:
	case time.Time:
		rec.CreatedAt = ts
	case string:
		t, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return Record{}, fmt.Errorf("%w: record %s timestamp: %v", ErrDecode, d.ID, err)
		}
		rec.CreatedAt = t
	default:
		return Record{}, fmt.Errorf("%w: record %s timestamp has type %T", ErrDecode, d.ID, ts)
	}
	return rec, nil
}

func stringField(d Document, name string, required bool) (string, error) {
	v, ok := d.Fields[name]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: document %s: missing %q", ErrDecode, d.ID, name)
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: document %s: %q has type %T", ErrDecode, d.ID, name, v)
	}
	if required && s == "" {
		return "", fmt.Errorf("%w: document %s: empty %q", ErrDecode, d.ID, name)
	}
	return s, nil
}

func stringsField(d Document, name string) ([]string, error) {
	switch v := d.Fields[name].(type) {
	case nil:
		return nil, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: document %s: %q item has type %T", ErrDecode, d.ID, name, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: document %s: %q has type %T", ErrDecode, d.ID, name, v)
	}
}
