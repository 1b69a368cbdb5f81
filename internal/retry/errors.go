package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kind is the failure class of a transformation attempt. It is set once,
// where the error originates, and drives the retry policy.
type Kind int

const (
	// KindOther is any failure without a more specific class. Retryable.
	KindOther Kind = iota
	// KindAuth is a credential failure. Never retried; aborts the whole run.
	KindAuth
	// KindRateLimit is a throttling response, possibly with a retry-after hint.
	KindRateLimit
	// KindServer is a backend-side failure such as a 5xx status.
	KindServer
	// KindTimeout is a call that exceeded its per-call deadline.
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	default:
		return "other"
	}
}

// Sentinels matched by errors.Is against an *Error of the same Kind.
var (
	ErrAuth      = errors.New("authentication failed")
	ErrRateLimit = errors.New("rate limited")
	ErrServer    = errors.New("server error")
	ErrTimeout   = errors.New("request timeout")
	ErrExhausted = errors.New("all backends exhausted")

	ErrNoBackends = errors.New("retry: no backends configured")
)

// Error is a classified transformation failure.
type Error struct {
	Kind       Kind
	Backend    string
	StatusCode int
	// RetryAfter is the server-provided delay hint. Zero when absent.
	RetryAfter time.Duration
	Err        error
}

// NewError classifies err as kind.
func NewError(kind Kind, backend string, err error) *Error {
	return &Error{Kind: kind, Backend: backend, Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Backend != "" {
		msg = e.Backend + ": " + msg
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrAuth:
		return e.Kind == KindAuth
	case ErrRateLimit:
		return e.Kind == KindRateLimit
	case ErrServer:
		return e.Kind == KindServer
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// KindOf returns the class carried by err. A bare deadline error counts as a
// timeout; everything else unclassified is KindOther.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindOther
}

// RetryAfterOf returns the retry-after hint carried by err, if any.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// ExhaustedError reports that every attempt on every backend failed for one chunk.
type ExhaustedError struct {
	ChunkIndex int
	Attempts   int
	Backends   []string
	Last       error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("chunk %d: all %d attempts across %d backends failed: %v",
		e.ChunkIndex, e.Attempts, len(e.Backends), e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}
