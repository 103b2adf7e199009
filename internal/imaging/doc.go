// Package imaging is the file-facing side of the server: it decodes images
// from disk, caches them, converts them into pixel.Buffer values for the
// engines, resamples buffers and encodes results back to PNG.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based with (0,0) at the
// top-left corner. For regions, (x1,y1) is inclusive and (x2,y2) is exclusive.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Buffers handed out by LoadBuffer are
// shared between callers and must be treated as read-only; the engines in
// internal/warp, internal/palette and internal/mask never write to their
// inputs.
//
// # Supported Formats
//
// PNG, JPEG and GIF are registered here. BMP and TIFF decoding comes in
// through github.com/disintegration/imaging. JPEG files are rotated according
// to their EXIF orientation tag on load.
package imaging
