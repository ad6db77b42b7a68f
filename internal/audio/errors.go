package audio

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredentials is returned when a backend is selected without
	// the credentials it needs
	ErrMissingCredentials = errors.New("missing synthesis credentials")

	// ErrEmptyText is returned for empty synthesis input
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrBackendUnavailable is returned once the backend failed too many
	// times in a row and calls are no longer attempted
	ErrBackendUnavailable = errors.New("synthesis backend unavailable")
)

// Reason classifies a failed synthesis
type Reason int

const (
	ReasonError Reason = iota
	ReasonCancelled
)

func (r Reason) String() string {
	if r == ReasonCancelled {
		return "cancelled"
	}
	return "error"
}

// BackendError carries the details a backend reported for a failed request
type BackendError struct {
	Provider   string
	StatusCode int
	Details    string
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s returned status %d: %s", e.Provider, e.StatusCode, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Details)
}

// SynthesisError is returned by the Synthesizer when audio for a text
// could not be produced. No partial file is left behind.
type SynthesisError struct {
	Text     string
	Provider string
	Reason   Reason
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis %s for %q (%s): %v", e.Reason, e.Text, e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// Details returns the backend error details, if the backend reported any
func (e *SynthesisError) Details() string {
	var be *BackendError
	if errors.As(e.Err, &be) {
		return be.Details
	}
	return ""
}

// IsCancelled reports whether err is a cancelled synthesis
func IsCancelled(err error) bool {
	var se *SynthesisError
	return errors.As(err, &se) && se.Reason == ReasonCancelled
}

// newSynthesisError classifies err. Only the run's own context or an
// explicit cancellation from the backend counts as cancelled; a request
// timeout inside the backend is an ordinary error.
func newSynthesisError(ctx context.Context, text, provider string, err error) *SynthesisError {
	reason := ReasonError
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		reason = ReasonCancelled
	}
	return &SynthesisError{
		Text:     text,
		Provider: provider,
		Reason:   reason,
		Err:      err,
	}
}
