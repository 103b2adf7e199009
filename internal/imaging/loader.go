package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// entry is one cached file. buf is filled lazily the first time a caller
// asks for the pixel.Buffer form.
type entry struct {
	img    image.Image
	format string
	size   int64
	buf    *pixel.Buffer
}

// ImageCache keeps decoded images in memory, keyed by the path they were
// loaded from, so that repeated tool calls on the same file skip disk I/O and
// decoding.
//
// The cache is an explicit object owned by its caller (the server creates
// one per process). Cached entries remain in memory until Evict or Clear.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
//	cache := imaging.NewImageCache()
//	buf, err := cache.LoadBuffer("/path/to/image.png")
//	if err != nil {
//	    return err
//	}
//	out := warp.Bulge(buf, center, radius, 0.5)
type ImageCache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewImageCache creates an empty cache.
//
// The returned cache is ready for immediate use and is safe for concurrent
// access.
func NewImageCache() *ImageCache {
	return &ImageCache{
		entries: make(map[string]*entry),
	}
}

// load returns the cache entry for path, reading and decoding the file on a
// miss. Two goroutines missing at the same time both decode; the last one to
// store wins, which is harmless since both results are equal.
func (c *ImageCache) load(path string) (*entry, error) {
	c.mu.RLock()
	e, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return e, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	e = &entry{img: img, format: format, size: int64(len(data))}
	c.mu.Lock()
	c.entries[path] = e
	c.mu.Unlock()
	return e, nil
}

// Load returns the decoded image for path, reading it from disk on the first
// call.
//
// Parameters:
//   - path: Absolute or relative file path to the image. PNG, JPEG, GIF, BMP
//     and TIFF are supported; EXIF orientation is applied on decode.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the file
//     (e.g., *image.NRGBA, *image.YCbCr).
//   - error: Non-nil if the file cannot be read or decoded.
//
// Entries are keyed by the exact path string, so a relative and an absolute
// path to the same file are cached separately.
//
// # Errors
//
//   - Returns error if the file does not exist or cannot be read
//   - Returns error if the contents are not a supported image format
func (c *ImageCache) Load(path string) (image.Image, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}
	return e.img, nil
}

// LoadBuffer returns the image at path as a non-premultiplied RGBA8 buffer.
//
// Parameters:
//   - path: File path, cached under the same key as Load.
//
// Returns:
//   - *pixel.Buffer: The pixels, converted once per cached entry. The buffer
//     is shared between callers and must not be modified; engines return new
//     buffers, so passing it to them is safe.
//   - error: Non-nil if the file cannot be read or decoded.
func (c *ImageCache) LoadBuffer(path string) (*pixel.Buffer, error) {
	e, err := c.load(path)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	buf := e.buf
	c.mu.RUnlock()
	if buf != nil {
		return buf, nil
	}

	buf = pixel.FromImage(e.img)
	c.mu.Lock()
	if e.buf == nil {
		e.buf = buf
	} else {
		buf = e.buf
	}
	c.mu.Unlock()
	return buf, nil
}

// Clear removes every entry from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
}

// Evict removes the entry for path. Unknown paths are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ImageInfo contains metadata about a loaded image file.
type ImageInfo struct {
	// Width is the image width in pixels, after EXIF orientation.
	Width int `json:"width"`

	// Height is the image height in pixels, after EXIF orientation.
	Height int `json:"height"`

	// Format is the name of the decoder that read the file ("png", "jpeg",
	// "gif", "bmp", "tiff"). It reflects the file contents, not the extension.
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`

	// Cached is the number of images held by the cache after this load.
	Cached int `json:"cached_images"`
}

// LoadImageInfo loads an image into the cache (if not already cached) and
// reports its metadata.
//
// Parameters:
//   - cache: The cache to load through. The result's Cached field reports
//     its size afterwards.
//   - path: File path to the image.
//
// Returns:
//   - *ImageInfo: Dimensions, detected format, color depth, alpha and file
//     size.
//   - error: Non-nil if the file cannot be read or decoded.
//
// Color depth is derived from the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func LoadImageInfo(cache *ImageCache, path string) (*ImageInfo, error) {
	e, err := cache.load(path)
	if err != nil {
		return nil, err
	}

	hasAlpha := false
	colorDepth := "8-bit"
	switch e.img.(type) {
	case *image.RGBA, *image.NRGBA, *image.Paletted:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	bounds := e.img.Bounds()
	return &ImageInfo{
		Width:         bounds.Dx(),
		Height:        bounds.Dy(),
		Format:        e.format,
		ColorDepth:    colorDepth,
		HasAlpha:      hasAlpha,
		FileSizeBytes: e.size,
		Cached:        cache.Len(),
	}, nil
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the dimensions of an image, loading it into the cache
// if needed.
//
// Returns:
//   - *DimensionsResult: Width and height in pixels, after EXIF orientation.
//   - error: Non-nil if the file cannot be read or decoded.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &DimensionsResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}
