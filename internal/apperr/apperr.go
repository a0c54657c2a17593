// Package apperr classifies failures into the small set of kinds the HTTP
// layer and the search loop branch on.
package apperr

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type Kind int

const (
	Unknown Kind = iota
	InvalidInput
	InvalidURL
	DuplicateURL
	VideoUnavailable
	ProviderError
	NotFound
	TranscriptUnavailable
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case InvalidURL:
		return "invalid_url"
	case DuplicateURL:
		return "duplicate_url"
	case VideoUnavailable:
		return "video_unavailable"
	case ProviderError:
		return "provider_error"
	case NotFound:
		return "not_found"
	case TranscriptUnavailable:
		return "transcript_unavailable"
	}
	return "unknown"
}

// Error is a classified failure. Subject is the URL, video id or row id the
// failure is about, kept separately so it can be logged as a field.
type Error struct {
	Kind    Kind
	Op      string
	Subject string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Subject != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Subject)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, op, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case InvalidInput, InvalidURL, DuplicateURL:
		return http.StatusBadRequest
	case VideoUnavailable, NotFound, TranscriptUnavailable:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Message is the client-facing text for a failure, matching the wording the
// frontend already shows.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return fmt.Sprintf("Internal error: %v", err)
	}
	switch e.Kind {
	case InvalidInput:
		if e.Err != nil {
			return e.Err.Error()
		}
		return "Invalid request"
	case InvalidURL:
		return "Invalid YouTube URL"
	case DuplicateURL:
		return "URL already exists"
	case VideoUnavailable:
		return "YouTube video is unavailable"
	case NotFound:
		return "Video is not in the database"
	case TranscriptUnavailable:
		return "Failed to fetch transcript"
	case ProviderError:
		if e.Err != nil {
			return fmt.Sprintf("Error with video provider: %v", e.Err)
		}
		return "Error with video provider"
	}
	return fmt.Sprintf("Internal error: %v", err)
}
