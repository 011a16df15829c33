// Package errors defines the typed error taxonomy used throughout the
// archive engine. Every error carries a numeric code that is stable across
// the core so callers can branch on it without string matching, while still
// wrapping the underlying cause (via github.com/pkg/errors) for diagnostics.
package errors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// FormatError codes.
const (
	InvalidSignature         = 1001
	UnsupportedVersion       = 1002
	ArchiveTooSmall          = 1003
	DirectoryNotFound        = 1004
	InvalidFileCount         = 1005
	InvalidFileName          = 1006
	InvalidFileOffset        = 1007
	CRC32Mismatch            = 3001
	NoCompressedData         = 3002
	InvalidCompressionMethod = 3003
	InvalidSizes             = 3004
)

// IoError codes.
const (
	FileNotFound     = 2001
	ArchiveNotFound  = 2002
	SourceNotFound   = 2003
	EnumerationFailed = 2004
)

// ArchiveError codes.
const (
	ArchiveNameNotSet = 4001
	EntryNotFound     = 4002
)

// FormatError reports a violation of the on-disk container format or one of
// the invariants checked at Open/Save time.
type FormatError struct {
	Code    int
	Message string
	Cause   error
}

func (e *FormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("format error %d: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("format error %d: %s", e.Code, e.Message)
}

func (e *FormatError) Unwrap() error { return e.Cause }

// NewFormatError builds a FormatError, optionally wrapping cause.
func NewFormatError(code int, message string, cause error) *FormatError {
	if cause != nil {
		cause = pkgerrors.Wrap(cause, message)
	}
	return &FormatError{Code: code, Message: message, Cause: cause}
}

// IoError reports a failure interacting with the filesystem.
type IoError struct {
	Code    int
	Message string
	Cause   error
}

func (e *IoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("io error %d: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("io error %d: %s", e.Code, e.Message)
}

func (e *IoError) Unwrap() error { return e.Cause }

// NewIoError builds an IoError, optionally wrapping cause.
func NewIoError(code int, message string, cause error) *IoError {
	if cause != nil {
		cause = pkgerrors.Wrap(cause, message)
	}
	return &IoError{Code: code, Message: message, Cause: cause}
}

// CompressionError reports a codec-specific failure during compress or
// decompress.
type CompressionError struct {
	Method  byte
	Message string
	Cause   error
}

func (e *CompressionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compression error (method %d): %s: %v", e.Method, e.Message, e.Cause)
	}
	return fmt.Sprintf("compression error (method %d): %s", e.Method, e.Message)
}

func (e *CompressionError) Unwrap() error { return e.Cause }

// NewCompressionError builds a CompressionError, optionally wrapping cause.
func NewCompressionError(method byte, message string, cause error) *CompressionError {
	if cause != nil {
		cause = pkgerrors.Wrap(cause, message)
	}
	return &CompressionError{Method: method, Message: message, Cause: cause}
}

// ArchiveError reports application-level, non-fatal archive errors.
type ArchiveError struct {
	Code    int
	Message string
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive error %d: %s", e.Code, e.Message)
}

// NewArchiveError builds an ArchiveError.
func NewArchiveError(code int, message string) *ArchiveError {
	return &ArchiveError{Code: code, Message: message}
}

// Code extracts the numeric code from a FormatError, IoError, or
// ArchiveError (possibly wrapped). It returns 0 for a CompressionError,
// which carries a method rather than a code, and for any other error.
func Code(err error) int {
	var fe *FormatError
	var ie *IoError
	var ae *ArchiveError
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.As(err, &ie):
		return ie.Code
	case errors.As(err, &ae):
		return ae.Code
	}
	return 0
}
