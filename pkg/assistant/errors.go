package assistant

import (
	"fmt"
	"time"
)

// ValidationError is a client-caused rejection raised before any inference
// call is made. Field and Reason give the caller enough to fix the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request field %q: %s", e.Field, e.Reason)
}

// HandlerError is a server-side failure surfaced when a handler's inference
// call fails without a remaining fallback. It records which category was
// being processed and how long the request had been running.
type HandlerError struct {
	Category Category
	Stage    string
	Elapsed  time.Duration
	Err      error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler failed at stage %s (category %s, elapsed %s): %v",
		e.Stage, e.Category, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
