// Package detection finds quadrilaterals in images, so that a skewed
// document, screen or sign can be rectified without the caller supplying
// its corners.
//
// # Algorithm Overview
//
//  1. Edge Detection: threshold the luma difference between each pixel and
//     its right and lower neighbours
//  2. Contour Finding: group 8-connected edge pixels with an iterative
//     flood fill
//  3. Corner Extraction: take the extreme points of each contour along the
//     two diagonals (x+y and x-y)
//  4. Filtering: drop quads below a minimum area or whose contour length is
//     too far from the quad's perimeter
//
// # Coordinate System
//
// Corners are pixel coordinates with (0,0) at the top-left, ordered
// top-left, top-right, bottom-right, bottom-left: the order
// warp.EstimateHomography expects.
//
// # Limitations
//
//   - Only the outline of a region with a clear contrast step is found
//   - Strongly rotated shapes (near 45°) have ambiguous diagonal extremes
//   - Shapes touching the image border lose that side of their outline
package detection
