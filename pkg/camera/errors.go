//go:build linux

package camera

import "errors"

// Negotiation errors. Each is returned only when the driver's echoed
// configuration differs from the request; the driver is authoritative
// and may silently round or reject, so the session enforces exactness
// instead of accepting a different mode.
var (
	// ErrBadResolution is returned when the driver settles on a
	// different width or height than requested.
	ErrBadResolution = errors.New("camera: driver rejected requested resolution")

	// ErrBadFormat is returned when the driver settles on a different
	// pixel format than requested, or the format code is not a FourCC.
	ErrBadFormat = errors.New("camera: driver rejected requested pixel format")

	// ErrBadField is returned when the driver settles on a different
	// field (interlacing) mode than requested.
	ErrBadField = errors.New("camera: driver rejected requested field mode")

	// ErrBadInterval is returned when the driver settles on a frame
	// interval that is not rationally equal to the request.
	ErrBadInterval = errors.New("camera: driver rejected requested frame interval")

	// ErrControlNotFound is returned for control ids the device does
	// not expose. Callers may use it to stop iterating id ranges.
	ErrControlNotFound = errors.New("camera: control not found")
)
