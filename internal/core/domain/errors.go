package domain

import (
	"errors"
	"fmt"
)

// CaptureErrorKind distinguishes session-start from mid-session failures.
type CaptureErrorKind int

const (
	OpenFailed CaptureErrorKind = iota + 1
	ReadFailed
)

func (k CaptureErrorKind) String() string {
	switch k {
	case OpenFailed:
		return "open failed"
	case ReadFailed:
		return "read failed"
	}
	return "capture error"
}

// Sentinels matched by errors.Is against any CaptureError of that kind.
var (
	ErrOpenFailed = &CaptureError{Kind: OpenFailed}
	ErrReadFailed = &CaptureError{Kind: ReadFailed}
)

// CaptureError reports a failure of the frame source. Err keeps the
// underlying OS error for diagnostics.
type CaptureError struct {
	Kind      CaptureErrorKind
	Interface string
	Err       error
}

// NewCaptureError wraps err unless it already is a CaptureError.
func NewCaptureError(kind CaptureErrorKind, iface string, err error) *CaptureError {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce
	}
	return &CaptureError{Kind: kind, Interface: iface, Err: err}
}

func (e *CaptureError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("capture %s on %q", e.Kind, e.Interface)
	}
	return fmt.Sprintf("capture %s on %q: %v", e.Kind, e.Interface, e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can test with ErrOpenFailed/ErrReadFailed.
func (e *CaptureError) Is(target error) bool {
	t, ok := target.(*CaptureError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
