package connect

import "errors"

var (
	ErrSignedOut         = errors.New("signed out")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInFlight          = errors.New("request already in flight")
	ErrNotConfirmed      = errors.New("not confirmed")
	ErrDecode            = errors.New("malformed document")
)

// LoadError reports a failed directory or relationship fetch. Nothing
// from the failed load is applied.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string { return "load " + e.Op + ": " + e.Err.Error() }

func (e *LoadError) Unwrap() error { return e.Err }

// MutationError reports a failed create or delete. The store is left as
// it was before the attempt.
type MutationError struct {
	Op     string
	Target string
	Err    error
}

func (e *MutationError) Error() string {
	return e.Op + " request to " + e.Target + ": " + e.Err.Error()
}

func (e *MutationError) Unwrap() error { return e.Err }

// Alert returns the message shown to the user for err, or "" when err
// needs no alert.
func Alert(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrNotConfirmed), errors.Is(err, ErrInFlight):
		return ""
	case errors.Is(err, ErrSignedOut):
		return "Please login first"
	}
	var me *MutationError
	if errors.As(err, &me) {
		switch me.Op {
		case OpSend:
			return "Failed to send request"
		case OpCancel:
			return "Failed to withdraw request"
		}
	}
	return ""
}
