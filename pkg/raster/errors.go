package raster

import (
	"errors"
	"fmt"
)

// ErrorKind groups raster errors by the contract they violate.
type ErrorKind string

const (
	// KindOutOfRange is returned by reads outside the pixel grid.
	KindOutOfRange ErrorKind = "out_of_range"
	// KindDomain is returned by writes outside the pixel grid.
	KindDomain ErrorKind = "domain"
	// KindRuntime covers file I/O failures.
	KindRuntime ErrorKind = "runtime"
)

// Messages carried by Error. Callers match on these strings, so they are
// part of the public contract.
const (
	MsgWrongIndex    = "Wrong index."
	MsgSetPixelValue = "Wrong index. Cannot set the pixel value."
	MsgSetPixel      = "Wrong index. Cannot set the pixel."
	MsgSetRedPixel   = "Wrong index. Cannot set the red pixel."
	MsgSetGreenPixel = "Wrong index. Cannot set the green pixel."
	MsgSetBluePixel  = "Wrong index. Cannot set the blue pixel."
	MsgOpeningFile   = "Error opening file!"
	MsgReadingFile   = "Error reading file!"
	MsgSavingFile    = "Error saving file!"
)

// ErrUnsupportedFormat is returned by CreateImage for unknown extensions.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Error is a raster failure with a fixed, caller-visible message.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// Error returns the message only; the cause is reachable through Unwrap.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail formats the message together with its cause, for logs.
func (e *Error) Detail() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a raster *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind == kind
	}
	return false
}

func outOfRange() error {
	return &Error{Kind: KindOutOfRange, Message: MsgWrongIndex}
}

func domain(msg string) error {
	return &Error{Kind: KindDomain, Message: msg}
}

func runtimeErr(msg string, cause error) error {
	return &Error{Kind: KindRuntime, Message: msg, Cause: cause}
}
