package warp

import "errors"

var (
	// ErrDegenerateGeometry is returned when corner correspondences do not
	// determine a projective transform: repeated corners, three collinear
	// corners, or a singular linear system.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInvalidGrid is returned when a mesh control grid does not match the
	// requested grid dimensions.
	ErrInvalidGrid = errors.New("invalid control grid")
)
