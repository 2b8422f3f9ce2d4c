package hypermedia

import "errors"

// FormatError represents a domain error from the hypermedia format engine.
//
// These are format-level errors (malformed framing, sequence violations,
// unsupported versions, etc.) as opposed to infrastructure errors (store
// failures, network errors).
//
// The decode path surfaces these errors immediately; the validate path never
// raises and collapses every one of these conditions into a boolean false.
type FormatError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the entity path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// NewFormatError creates a FormatError with the given code and message.
func NewFormatError(code ErrorCode, message string) *FormatError {
	return &FormatError{Code: code, Message: message}
}

// IsCode reports whether err is (or wraps) a FormatError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// ErrorCode represents the category of a format error.
type ErrorCode int

const (
	// ErrMalformedFraming indicates missing brackets, wrong field ordering
	// or a wrong field terminator
	ErrMalformedFraming ErrorCode = iota

	// ErrUnknownField indicates a field name that is not part of the grammar
	ErrUnknownField

	// ErrUnknownTag indicates a list item type tag that is not recognized
	ErrUnknownTag

	// ErrScalarParse indicates a declared scalar failed to parse as its
	// declared type (e.g. non-numeric size, unknown encoding name)
	ErrScalarParse

	// ErrSequence indicates a declared item index mismatches its positional
	// index, or the decoded item count mismatches the declared count
	ErrSequence

	// ErrParentMismatch indicates the decoded parent_path disagrees with the
	// caller-supplied parent
	ErrParentMismatch

	// ErrEmptyChildren indicates a Container constructed or decoded with
	// zero children
	ErrEmptyChildren

	// ErrAttributeDomain indicates platform attribute flags outside the
	// entity kind's permitted set, or a name/extension out of bounds
	ErrAttributeDomain

	// ErrAlreadySet indicates a second attempt to set a write-once field
	// (hash or topic)
	ErrAlreadySet

	// ErrUnsupportedVersion indicates an unknown document version tag
	ErrUnsupportedVersion
)

// String returns the error code name for logging and diagnostics.
func (c ErrorCode) String() string {
	switch c {
	case ErrMalformedFraming:
		return "MalformedFraming"
	case ErrUnknownField:
		return "UnknownField"
	case ErrUnknownTag:
		return "UnknownTag"
	case ErrScalarParse:
		return "ScalarParse"
	case ErrSequence:
		return "Sequence"
	case ErrParentMismatch:
		return "ParentMismatch"
	case ErrEmptyChildren:
		return "EmptyChildren"
	case ErrAttributeDomain:
		return "AttributeDomain"
	case ErrAlreadySet:
		return "AlreadySet"
	case ErrUnsupportedVersion:
		return "UnsupportedVersion"
	default:
		return "Unknown"
	}
}
