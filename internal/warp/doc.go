// Package warp implements the geometric pixel transforms: perspective
// (homography) warping, radial bulge/pinch distortion and grid mesh warping.
//
// # Mapping Direction
//
// WarpPerspective iterates over the destination and samples the source
// through the inverse homography, so every destination pixel is written
// exactly once and the output has no holes.
//
// Bulge and MeshWarp scatter forward: each source pixel is written to a
// computed destination position. The destination starts as a copy of the
// source, so untouched pixels keep their original values, but strong
// distortions can leave small gaps where no source pixel lands. This is the
// expected look of these effects and is not corrected.
//
// # Numeric Fallbacks
//
// Geometry that cannot be solved is reported with ErrDegenerateGeometry or
// ErrInvalidGrid. Where a safe fallback exists the package prefers it:
// inverting a near-singular homography yields the identity, and pixels that
// map outside the image are simply not written.
//
// # Thread Safety
//
// All functions are pure with respect to their inputs. WarpPerspective fans
// rows out across goroutines internally; callers may also run independent
// warps concurrently.
package warp
