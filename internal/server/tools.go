package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func outputPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Optional path to write the result PNG to. When omitted the image is returned inline as base64.",
	}
}

func pointSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	}
}

func cornersProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items":       pointSchema(),
		"minItems":    4,
		"maxItems":    4,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file into the cache and return its dimensions, format, color depth and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Geometric Transforms
		{
			Name:        "image_homography",
			Description: "Compute the 3x3 perspective matrix mapping four source corners onto four destination corners, plus its inverse. Corners are ordered top-left, top-right, bottom-right, bottom-left.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"src_corners": cornersProperty("Four source corners"),
					"dst_corners": cornersProperty("Four destination corners"),
				},
				"required": []string{"src_corners", "dst_corners"},
			},
		},
		{
			Name:        "image_perspective_warp",
			Description: "Warp an image so that the source quadrilateral lands on the destination quadrilateral, with bilinear sampling. Use src_corners alone to rectify a skewed region into the full output, or dst_corners alone to project the whole image into a quadrilateral. Areas with no source pixel are transparent.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":        pathProperty(),
					"src_corners": cornersProperty("Source corners. Default: the corners of the input image"),
					"dst_corners": cornersProperty("Destination corners. Default: the corners of the output image"),
					"auto_detect": map[string]interface{}{
						"type":        "boolean",
						"description": "Use the largest quadrilateral found in the image as src_corners when they are not given. Default false",
						"default":     false,
					},
					"width": map[string]interface{}{
						"type":        "integer",
						"description": "Output width in pixels. Default: input width",
						"maximum":     maxOutputDimension,
					},
					"height": map[string]interface{}{
						"type":        "integer",
						"description": "Output height in pixels. Default: input height",
						"maximum":     maxOutputDimension,
					},
					"output_path": outputPathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_bulge",
			Description: "Apply a radial bulge (positive intensity) or pinch (negative intensity) inside a circle.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"center_x": map[string]interface{}{
						"type":        "number",
						"description": "X coordinate of the centre. Default: image centre",
					},
					"center_y": map[string]interface{}{
						"type":        "number",
						"description": "Y coordinate of the centre. Default: image centre",
					},
					"radius": map[string]interface{}{
						"type":        "number",
						"description": "Radius of the affected circle in pixels. Default: a quarter of the shorter side",
					},
					"intensity": map[string]interface{}{
						"type":        "number",
						"description": "Strength from -1 (pinch) to 1 (bulge). Default 0.5",
						"default":     0.5,
						"minimum":     -1,
						"maximum":     1,
					},
					"output_path": outputPathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_mesh_warp",
			Description: "Distort an image with a grid of control points, one per cell. Pass control_points for the full grid, or displacements to nudge points of the default grid (each point starts on the top-left corner of its cell).",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": meshProperties(),
				"required":   []string{"path", "grid_x", "grid_y"},
			},
		},
		{
			Name:        "image_mesh_grid",
			Description: "Draw a mesh control grid on top of an image, to preview the control points image_mesh_warp would use.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": meshGridProperties(),
				"required":   []string{"path", "grid_x", "grid_y"},
			},
		},

		{
			Name:        "image_detect_quad",
			Description: "Find quadrilateral outlines (documents, screens, signs) and return their corners, largest first. The corners can be passed to image_perspective_warp as src_corners.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_area": map[string]interface{}{
						"type":        "number",
						"description": "Minimum area in square pixels. Default 100",
						"default":     100,
					},
					"tolerance": map[string]interface{}{
						"type":        "number",
						"description": "Minimum outline confidence from 0 to 1. Default 0.8",
						"default":     0.8,
					},
				},
				"required": []string{"path"},
			},
		},

		// Color and Compositing
		{
			Name:        "image_extract_palette",
			Description: "Extract the dominant colors of an image or region, ranked by share of pixels. The image is downsampled before clustering.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors. Default 10 (median-cut caps at 8)",
						"default":     10,
					},
					"method": map[string]interface{}{
						"type":        "string",
						"description": "Clustering method. Default kmeans",
						"enum":        []string{"kmeans", "median-cut", "octree"},
						"default":     "kmeans",
					},
					"format": map[string]interface{}{
						"type":        "string",
						"description": "Color format. Default hex",
						"enum":        []string{"hex", "rgb", "hsl"},
						"default":     "hex",
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional region to analyze (x2, y2 exclusive)",
						"properties": map[string]interface{}{
							"x1": map[string]interface{}{"type": "integer"},
							"y1": map[string]interface{}{"type": "integer"},
							"x2": map[string]interface{}{"type": "integer"},
							"y2": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"x1", "y1", "x2", "y2"},
					},
					"max_sample_size": map[string]interface{}{
						"type":        "integer",
						"description": "Longest side the image is downsampled to before clustering. Default 200; negative disables downsampling",
						"default":     200,
					},
					"seed": map[string]interface{}{
						"type":        "integer",
						"description": "Optional seed for reproducible k-means results",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_apply_mask",
			Description: "Multiply an image's alpha channel by a mask image. The mask is resized to the image first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"mask_path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the mask image",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"description": "How a mask pixel becomes an alpha factor: alpha (mask alpha), luminance (mask brightness) or inverse (1 - mask alpha). Default alpha",
						"enum":        []string{"alpha", "luminance", "inverse"},
						"default":     "alpha",
					},
					"output_path": outputPathProperty(),
				},
				"required": []string{"path", "mask_path"},
			},
		},
	}
}

func meshProperties() map[string]interface{} {
	displacements := map[string]interface{}{
		"type":        "object",
		"description": "Offsets applied to the default grid, keyed \"col,row\" with [dx, dy] values. Ignored when control_points is given",
	}
	displacements["additionalProperties"] = map[string]interface{}{
		"type":     "array",
		"items":    map[string]interface{}{"type": "number"},
		"minItems": 2,
		"maxItems": 2,
	}

	return map[string]interface{}{
		"path": pathProperty(),
		"grid_x": map[string]interface{}{
			"type":        "integer",
			"description": "Number of cells across",
			"minimum":     1,
			"maximum":     maxGridSize,
		},
		"grid_y": map[string]interface{}{
			"type":        "integer",
			"description": "Number of cells down",
			"minimum":     1,
			"maximum":     maxGridSize,
		},
		"control_points": map[string]interface{}{
			"type":        "array",
			"description": "grid_y rows of grid_x control points",
			"items": map[string]interface{}{
				"type":  "array",
				"items": pointSchema(),
			},
		},
		"displacements": displacements,
		"output_path":   outputPathProperty(),
	}
}

func meshGridProperties() map[string]interface{} {
	props := meshProperties()
	props["show_labels"] = map[string]interface{}{
		"type":        "boolean",
		"description": "Label each point with its col,row index. Default false",
		"default":     false,
	}
	props["color"] = map[string]interface{}{
		"type":        "string",
		"description": "Grid color as #RRGGBB or #RRGGBBAA. Default #ff0000",
		"default":     "#ff0000",
	}
	return props
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
