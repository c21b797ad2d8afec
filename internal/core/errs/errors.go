// Package errs carries the error taxonomy shared by the ingestion and
// artifact pipelines. Every failure a caller can act on is tagged with a
// Kind; pipeline stages add context with Stage but never change the kind
// of a lower layer's error.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. Kinds are stable identifiers the presentation
// layer can map to user-facing messages without parsing free text.
type Kind string

const (
	InvalidFormat         Kind = "invalid_format"          // bytes are not a parseable PDF
	InvalidSource         Kind = "invalid_source"          // malformed or non-video URL
	UnreadableDocument    Kind = "unreadable_document"     // valid PDF with no extractable text layer
	NoTranscriptAvailable Kind = "no_transcript_available" // video exists but has no caption track
	SourceUnreachable     Kind = "source_unreachable"      // network/availability failure reading the source
	EmptyInput            Kind = "empty_input"             // empty or whitespace-only text
	ContentTooLarge       Kind = "content_too_large"       // input exceeds the absolute ingestible cap
	UpstreamUnavailable   Kind = "upstream_unavailable"    // model backend error or timeout
	GenerationIncomplete  Kind = "generation_incomplete"   // fewer than the minimum viable artifact count
	NotFound              Kind = "not_found"               // missing record or record owned by someone else
	Unauthenticated       Kind = "unauthenticated"         // no resolved owner identity
)

// Error is a kinded error with optional stage context.
type Error struct {
	Kind  Kind
	Stage string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	s := string(e.Kind)
	if e.Stage != "" {
		s = e.Stage + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two kinded errors by kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New creates a kinded error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error. If err already carries a
// kind, that kind wins; wrapping never reclassifies.
func Wrap(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	if k := KindOf(err); k != "" {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// Stage wraps err with the name of the pipeline stage that observed it,
// preserving the original kind.
func Stage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindOf(err), Stage: stage, Err: err}
}

// KindOf extracts the kind of err, or "" if err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether a failure of this kind is transient. Only
// transient kinds are ever retried; everything else is deterministic.
func Retryable(err error) bool {
	switch KindOf(err) {
	case SourceUnreachable, UpstreamUnavailable:
		return true
	}
	return false
}
