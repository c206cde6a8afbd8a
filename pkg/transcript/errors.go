package transcript

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrMissingFile           = errors.New("missing file")
	ErrMalformedDocument     = errors.New("malformed document")
	ErrMalformedConversation = errors.New("malformed conversation")
	ErrRenderFailure         = errors.New("render failure")
)

// MissingFileError reports a required input that could not be opened.
type MissingFileError struct {
	Path string
	Err  error
}

func (e *MissingFileError) Error() string {
	if e == nil {
		return ErrMissingFile.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrMissingFile, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMissingFile, e.Path, e.Err)
}

func (e *MissingFileError) Is(target error) bool { return target == ErrMissingFile }

func (e *MissingFileError) Unwrap() error { return e.Err }

// MalformedDocumentError reports a top-level structural mismatch.
type MalformedDocumentError struct {
	Document string
	Reason   string
}

func (e *MalformedDocumentError) Error() string {
	if e == nil {
		return ErrMalformedDocument.Error()
	}
	return fmt.Sprintf("%s %q: %s", ErrMalformedDocument, e.Document, e.Reason)
}

func (e *MalformedDocumentError) Is(target error) bool { return target == ErrMalformedDocument }

// MalformedConversationError reports a structural mismatch inside a single
// conversation. Line is the 1-based source line, 0 if unknown.
type MalformedConversationError struct {
	Document string
	Index    int
	Line     int
	Reason   string
}

func (e *MalformedConversationError) Error() string {
	if e == nil {
		return ErrMalformedConversation.Error()
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s %d in %q (line %d): %s", ErrMalformedConversation, e.Index, e.Document, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s %d in %q: %s", ErrMalformedConversation, e.Index, e.Document, e.Reason)
}

func (e *MalformedConversationError) Is(target error) bool {
	return target == ErrMalformedConversation
}

// RenderError reports a template or asset assembly failure.
type RenderError struct {
	Reason string
	Err    error
}

func (e *RenderError) Error() string {
	if e == nil {
		return ErrRenderFailure.Error()
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrRenderFailure, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrRenderFailure, e.Reason, e.Err)
}

func (e *RenderError) Is(target error) bool { return target == ErrRenderFailure }

func (e *RenderError) Unwrap() error { return e.Err }
