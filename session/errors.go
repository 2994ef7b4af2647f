package session

import (
	"errors"
	"fmt"

	fractal "github.com/marben/fractal_explorer"
)

var (
	// ErrBusy is returned by RequestDraw while a calculation is running.
	ErrBusy = errors.New("a drawing is already being calculated")
	// ErrOutOfMemory is returned while the session is in out-of-memory mode.
	// Deleting a drawing leaves that mode.
	ErrOutOfMemory      = fractal.ErrOutOfMemory
	ErrNothingToDelete  = errors.New("cannot delete the only drawing")
	ErrNoPrevious       = errors.New("no previous drawing")
	ErrNoNext           = errors.New("no next drawing")
	ErrUnknownScheme    = errors.New("unknown color scheme")
	ErrUnknownLandmark  = errors.New("unknown landmark")
	ErrNoDrawing        = errors.New("no current drawing")
	ErrZoomDisabled     = errors.New("zooming is disabled for this drawing")
	ErrOutsideImage     = errors.New("point is outside the image")
	ErrNotMandelbrot    = errors.New("julia points are picked on a mandelbrot drawing")
)

// ValidationError reports malformed or out-of-order input. The session state
// is left untouched when one is returned.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
