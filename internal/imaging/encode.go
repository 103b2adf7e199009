package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"os"

	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
)

// EncodedImage is a PNG-encoded engine result ready to be returned to a
// client.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type"`
	OutputPath  string `json:"output_path,omitempty"`
}

// EncodePNG encodes buf as PNG and returns it base64 encoded.
func EncodePNG(buf *pixel.Buffer) (*EncodedImage, error) {
	data, err := pngBytes(buf)
	if err != nil {
		return nil, err
	}
	return &EncodedImage{
		Width:       buf.Width,
		Height:      buf.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    "image/png",
	}, nil
}

// SavePNG writes buf as a PNG file at path. The returned result carries the
// path instead of inline image data.
func SavePNG(buf *pixel.Buffer, path string) (*EncodedImage, error) {
	data, err := pngBytes(buf)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write image: %w", err)
	}
	return &EncodedImage{
		Width:      buf.Width,
		Height:     buf.Height,
		MimeType:   "image/png",
		OutputPath: path,
	}, nil
}

func pngBytes(buf *pixel.Buffer) ([]byte, error) {
	if !buf.Valid() {
		return nil, fmt.Errorf("invalid buffer %dx%d with %d samples", buf.Width, buf.Height, len(buf.Pix))
	}
	if buf.Width == 0 || buf.Height == 0 {
		return nil, fmt.Errorf("cannot encode empty %dx%d image", buf.Width, buf.Height)
	}
	var out bytes.Buffer
	if err := png.Encode(&out, buf.Image()); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return out.Bytes(), nil
}
