package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/ironsheep/pixelwarp-mcp/internal/detection"
	"github.com/ironsheep/pixelwarp-mcp/internal/imaging"
	"github.com/ironsheep/pixelwarp-mcp/internal/mask"
	"github.com/ironsheep/pixelwarp-mcp/internal/palette"
	"github.com/ironsheep/pixelwarp-mcp/internal/pixel"
	"github.com/ironsheep/pixelwarp-mcp/internal/warp"
)

// errInvalidArgs marks tool failures caused by the arguments themselves.
// They are reported with the JSON-RPC invalid params code.
var errInvalidArgs = errors.New("invalid arguments")

// Defaults applied when a tool argument is omitted.
const (
	defaultBulgeIntensity = 0.5
	defaultMaxSampleSize  = 200
)

// Upper bounds on size arguments accepted from clients.
const (
	maxOutputDimension = 8192
	maxGridSize        = 256
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_bulge").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tools that render an image inline add a second {"type": "image"} item
// carrying the base64 PNG; the text item then holds only its metadata.
//
// Argument errors return code -32602, every other tool failure -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.log.Warn("tool failed", "tool", params.Name, "error", err)
		if errors.Is(err, errInvalidArgs) {
			return s.errorResponse(req.ID, codeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": toolContent(result),
		},
	}
}

// toolContent converts a tool result into MCP content items.
func toolContent(result interface{}) []map[string]interface{} {
	img, ok := result.(*imaging.EncodedImage)
	if !ok || img.ImageBase64 == "" {
		return []map[string]interface{}{
			{"type": "text", "text": mustMarshalJSON(result)},
		}
	}

	meta := *img
	meta.ImageBase64 = ""
	return []map[string]interface{}{
		{"type": "text", "text": mustMarshalJSON(meta)},
		{"type": "image", "data": img.ImageBase64, "mimeType": img.MimeType},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the warp, palette or mask engine
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Geometric Transforms
	case "image_homography":
		return s.handleImageHomography(args)
	case "image_perspective_warp":
		return s.handleImagePerspectiveWarp(args)
	case "image_bulge":
		return s.handleImageBulge(args)
	case "image_mesh_warp":
		return s.handleImageMeshWarp(args)
	case "image_mesh_grid":
		return s.handleImageMeshGrid(args)
	case "image_detect_quad":
		return s.handleImageDetectQuad(args)

	// Color and Compositing
	case "image_extract_palette":
		return s.handleImageExtractPalette(args)
	case "image_apply_mask":
		return s.handleImageApplyMask(args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into v. Missing arguments decode as
// an empty object.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

func requirePath(name, path string) error {
	if path == "" {
		return fmt.Errorf("%w: %s is required", errInvalidArgs, name)
	}
	return nil
}

// quad converts a JSON corner list into the four corners the warp engine
// expects, in top-left, top-right, bottom-right, bottom-left order.
func quad(name string, pts []pixel.Point) ([4]pixel.Point, error) {
	var q [4]pixel.Point
	if len(pts) != 4 {
		return q, fmt.Errorf("%w: %s needs 4 points, got %d", errInvalidArgs, name, len(pts))
	}
	copy(q[:], pts)
	return q, nil
}

// frame returns the corners of a width×height image at pixel centres.
func frame(width, height int) [4]pixel.Point {
	w, h := float64(width-1), float64(height-1)
	return [4]pixel.Point{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

// render returns buf either inline or, with outputPath set, written to disk.
func render(buf *pixel.Buffer, outputPath string) (*imaging.EncodedImage, error) {
	if outputPath != "" {
		return imaging.SavePNG(buf, outputPath)
	}
	return imaging.EncodePNG(buf)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Geometric Transform Handlers ===

type imageHomographyArgs struct {
	SrcCorners []pixel.Point `json:"src_corners"`
	DstCorners []pixel.Point `json:"dst_corners"`
}

// HomographyResult reports an estimated homography and its inverse, both
// as row-major 3×3 matrices.
type HomographyResult struct {
	Matrix      warp.Homography `json:"matrix"`
	Inverse     warp.Homography `json:"inverse"`
	Determinant float64         `json:"determinant"`
}

func (s *Server) handleImageHomography(args json.RawMessage) (interface{}, error) {
	var a imageHomographyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	src, err := quad("src_corners", a.SrcCorners)
	if err != nil {
		return nil, err
	}
	dst, err := quad("dst_corners", a.DstCorners)
	if err != nil {
		return nil, err
	}

	h, err := warp.EstimateHomography(src, dst)
	if err != nil {
		return nil, err
	}
	return &HomographyResult{
		Matrix:      h,
		Inverse:     h.Invert(),
		Determinant: h.Det(),
	}, nil
}

type imagePerspectiveWarpArgs struct {
	Path       string        `json:"path"`
	SrcCorners []pixel.Point `json:"src_corners"`
	DstCorners []pixel.Point `json:"dst_corners"`
	AutoDetect bool          `json:"auto_detect"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	OutputPath string        `json:"output_path"`
}

func (s *Server) handleImagePerspectiveWarp(args json.RawMessage) (interface{}, error) {
	var a imagePerspectiveWarpArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	if len(a.SrcCorners) == 0 && len(a.DstCorners) == 0 && !a.AutoDetect {
		return nil, fmt.Errorf("%w: src_corners, dst_corners or auto_detect is required", errInvalidArgs)
	}

	src, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Width <= 0 {
		a.Width = src.Width
	}
	if a.Height <= 0 {
		a.Height = src.Height
	}
	if a.Width > maxOutputDimension || a.Height > maxOutputDimension {
		return nil, fmt.Errorf("%w: output %dx%d exceeds %dx%d", errInvalidArgs,
			a.Width, a.Height, maxOutputDimension, maxOutputDimension)
	}

	from := frame(src.Width, src.Height)
	switch {
	case len(a.SrcCorners) > 0:
		if from, err = quad("src_corners", a.SrcCorners); err != nil {
			return nil, err
		}
	case a.AutoDetect:
		q, err := detection.LargestQuad(src, detection.DefaultMinArea, detection.DefaultTolerance)
		if err != nil {
			return nil, err
		}
		s.log.Debug("detected source quad", "corners", q.Corners, "confidence", q.Confidence)
		from = q.Corners
	}
	to := frame(a.Width, a.Height)
	if len(a.DstCorners) > 0 {
		if to, err = quad("dst_corners", a.DstCorners); err != nil {
			return nil, err
		}
	}

	h, err := warp.EstimateHomography(from, to)
	if err != nil {
		return nil, err
	}
	return render(warp.WarpPerspective(src, h, a.Width, a.Height), a.OutputPath)
}

type imageBulgeArgs struct {
	Path       string   `json:"path"`
	CenterX    *float64 `json:"center_x"`
	CenterY    *float64 `json:"center_y"`
	Radius     float64  `json:"radius"`
	Intensity  *float64 `json:"intensity"`
	OutputPath string   `json:"output_path"`
}

func (s *Server) handleImageBulge(args json.RawMessage) (interface{}, error) {
	var a imageBulgeArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}

	src, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}

	center := pixel.Point{X: float64(src.Width) / 2, Y: float64(src.Height) / 2}
	if a.CenterX != nil {
		center.X = *a.CenterX
	}
	if a.CenterY != nil {
		center.Y = *a.CenterY
	}
	if a.Radius == 0 {
		a.Radius = float64(min(src.Width, src.Height)) / 4
	}
	intensity := defaultBulgeIntensity
	if a.Intensity != nil {
		intensity = *a.Intensity
	}
	return render(warp.Bulge(src, center, a.Radius, intensity), a.OutputPath)
}

type imageMeshArgs struct {
	Path          string                `json:"path"`
	GridX         int                   `json:"grid_x"`
	GridY         int                   `json:"grid_y"`
	ControlPoints [][]pixel.Point       `json:"control_points"`
	Displacements map[string][2]float64 `json:"displacements"`
	OutputPath    string                `json:"output_path"`
	ShowLabels    bool                  `json:"show_labels"`
	Color         string                `json:"color"`
}

// controlGrid returns the control points for a mesh request: the explicit
// control_points when given, otherwise the default lattice. Displacements
// move individual points of the default lattice and are keyed "col,row".
func (a *imageMeshArgs) controlGrid(width, height int) (warp.ControlGrid, error) {
	if a.GridX < 1 || a.GridY < 1 {
		return nil, fmt.Errorf("%w: grid_x and grid_y must be at least 1", errInvalidArgs)
	}
	if a.GridX > maxGridSize || a.GridY > maxGridSize {
		return nil, fmt.Errorf("%w: grid %dx%d exceeds %dx%d", errInvalidArgs,
			a.GridX, a.GridY, maxGridSize, maxGridSize)
	}
	if len(a.ControlPoints) > 0 {
		return warp.ControlGrid(a.ControlPoints), nil
	}

	grid := warp.NewControlGrid(width, height, a.GridX, a.GridY)
	for key, d := range a.Displacements {
		var col, row int
		if _, err := fmt.Sscanf(key, "%d,%d", &col, &row); err != nil {
			return nil, fmt.Errorf("%w: displacement key %q is not \"col,row\"", errInvalidArgs, key)
		}
		if row < 0 || row >= len(grid) || col < 0 || col >= len(grid[row]) {
			return nil, fmt.Errorf("%w: displacement %q outside %dx%d grid", errInvalidArgs, key, a.GridX, a.GridY)
		}
		grid[row][col].X += d[0]
		grid[row][col].Y += d[1]
	}
	return grid, nil
}

func (s *Server) handleImageMeshWarp(args json.RawMessage) (interface{}, error) {
	var a imageMeshArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}

	src, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}
	grid, err := a.controlGrid(src.Width, src.Height)
	if err != nil {
		return nil, err
	}

	out, err := warp.MeshWarp(src, a.GridX, a.GridY, grid)
	if err != nil {
		return nil, err
	}
	return render(out, a.OutputPath)
}

func (s *Server) handleImageMeshGrid(args json.RawMessage) (interface{}, error) {
	var a imageMeshArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}

	src, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}
	grid, err := a.controlGrid(src.Width, src.Height)
	if err != nil {
		return nil, err
	}
	if err := grid.Validate(a.GridX, a.GridY); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = imaging.DefaultOverlayColor
	}

	return render(imaging.DrawControlGrid(src, grid, a.Color, a.ShowLabels), a.OutputPath)
}

type imageDetectQuadArgs struct {
	Path      string  `json:"path"`
	MinArea   float64 `json:"min_area"`
	Tolerance float64 `json:"tolerance"`
}

func (s *Server) handleImageDetectQuad(args json.RawMessage) (interface{}, error) {
	var a imageDetectQuadArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	if a.MinArea == 0 {
		a.MinArea = detection.DefaultMinArea
	}
	if a.Tolerance == 0 {
		a.Tolerance = detection.DefaultTolerance
	}

	buf, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}
	return detection.DetectQuads(buf, a.MinArea, a.Tolerance), nil
}

// === Color and Compositing Handlers ===

type imageExtractPaletteArgs struct {
	Path          string          `json:"path"`
	Count         int             `json:"count"`
	Method        string          `json:"method"`
	Format        string          `json:"format"`
	Region        *imaging.Region `json:"region"`
	MaxSampleSize int             `json:"max_sample_size"`
	Seed          *uint64         `json:"seed"`
}

// PaletteResult is the response of image_extract_palette.
type PaletteResult struct {
	Colors      []palette.Swatch `json:"colors"`
	Method      palette.Method   `json:"method"`
	SampleCount int              `json:"sample_count"`
}

func (s *Server) handleImageExtractPalette(args json.RawMessage) (interface{}, error) {
	var a imageExtractPaletteArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	if a.Count <= 0 {
		a.Count = palette.DefaultCount
	}
	if a.Method == "" {
		a.Method = string(palette.DefaultMethod)
	}
	if a.Format == "" {
		a.Format = string(palette.DefaultFormat)
	}
	if a.MaxSampleSize == 0 {
		a.MaxSampleSize = defaultMaxSampleSize
	}

	buf, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}
	if a.Region != nil {
		if buf, err = imaging.Crop(buf, *a.Region); err != nil {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
	}
	samples := palette.Samples(imaging.Downsample(buf, a.MaxSampleSize))

	opts := palette.Options{
		Count:  a.Count,
		Method: palette.Method(a.Method),
		Format: palette.Format(a.Format),
	}
	if a.Seed != nil {
		opts.Rand = rand.New(rand.NewPCG(*a.Seed, *a.Seed))
	}

	colors, err := palette.Extract(samples, opts)
	if err != nil {
		if errors.Is(err, palette.ErrUnknownMethod) || errors.Is(err, palette.ErrUnknownFormat) {
			return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
		}
		return nil, err
	}
	return &PaletteResult{
		Colors:      colors,
		Method:      opts.Method,
		SampleCount: len(samples),
	}, nil
}

type imageApplyMaskArgs struct {
	Path       string `json:"path"`
	MaskPath   string `json:"mask_path"`
	Mode       string `json:"mode"`
	OutputPath string `json:"output_path"`
}

func (s *Server) handleImageApplyMask(args json.RawMessage) (interface{}, error) {
	var a imageApplyMaskArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if err := requirePath("path", a.Path); err != nil {
		return nil, err
	}
	if err := requirePath("mask_path", a.MaskPath); err != nil {
		return nil, err
	}
	mode, err := mask.ParseMode(a.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidArgs, err)
	}

	primary, err := s.cache.LoadBuffer(a.Path)
	if err != nil {
		return nil, err
	}
	m, err := s.cache.LoadBuffer(a.MaskPath)
	if err != nil {
		return nil, err
	}

	out, err := mask.Apply(primary, imaging.Resize(m, primary.Width, primary.Height), mode)
	if err != nil {
		return nil, err
	}
	return render(out, a.OutputPath)
}
