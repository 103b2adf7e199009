// Package server implements the MCP (Model Context Protocol) server that
// exposes the geometric warp, palette and mask engines as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Geometric Transforms:
//   - image_homography: Solve the perspective matrix between two quadrilaterals
//   - image_perspective_warp: Rectify or project an image through a homography
//   - image_bulge: Radial bulge or pinch
//   - image_mesh_warp: Control-point mesh distortion
//   - image_mesh_grid: Preview a mesh control grid
//
// Color and Compositing:
//   - image_extract_palette: Dominant colors by k-means or median cut
//   - image_apply_mask: Modulate alpha with a second image
//
// Tools that produce an image return it inline as a base64 PNG content item,
// or write it to output_path when one is given.
//
// # Image Caching
//
// The server owns one imaging.ImageCache. Images are cached by path and
// reused across tool calls for the lifetime of the process.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments, -32000 for any other tool failure
//   - message: Human-readable error description
//   - data: The Go error string
//
// Requests are logged at debug level and failures at warn level through
// log/slog; nothing but protocol traffic is written to stdout.
//
// # Usage
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
