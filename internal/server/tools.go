package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Shared argument schemas. Functions rather than variables so that callers
// cannot alias one tool's schema from another.

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file. Omit to capture the screen when the server has screen capture enabled.",
	}
}

func regionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional rectangle. Crops a file image, or selects the screen area to capture.",
		"properties": map[string]interface{}{
			"x":      map[string]interface{}{"type": "integer", "description": "Left edge (0-based)"},
			"y":      map[string]interface{}{"type": "integer", "description": "Top edge (0-based)"},
			"width":  map[string]interface{}{"type": "integer", "description": "Width in pixels"},
			"height": map[string]interface{}{"type": "integer", "description": "Height in pixels"},
		},
		"required": []string{"x", "y", "width", "height"},
	}
}

func stepsProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Transform steps applied in order. See transforms_list for the names.",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Transform name (e.g., greyscale, threshold)",
				},
				"config": map[string]interface{}{
					"type":        "object",
					"description": "Transform options (e.g., {\"fx\": 3, \"fy\": 3} for resize)",
				},
			},
			"required": []string{"name"},
		},
	}
}

func ocrProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": "Optional OCR overrides, applied over the server defaults.",
		"properties": map[string]interface{}{
			"lang": map[string]interface{}{
				"type":        "string",
				"description": "Language codes joined with + (e.g., eng+fra)",
			},
			"config": map[string]interface{}{
				"type":        "string",
				"description": "Engine configuration (e.g., --psm 7)",
			},
			"timeout": map[string]interface{}{
				"type":        "string",
				"description": "Per-recognition limit as a duration (e.g., 10s) or a number of seconds",
			},
			"nice": map[string]interface{}{
				"type":        "integer",
				"description": "Process priority adjustment (command engine only)",
			},
		},
	}
}

func fieldsProperties(props map[string]interface{}) map[string]interface{} {
	props["fields_file"] = map[string]interface{}{
		"type":        "string",
		"description": "Path to a fields file (YAML or JSON)",
	}
	props["fields"] = map[string]interface{}{
		"type":        "string",
		"description": "Inline fields file content, used when fields_file is empty",
	}
	return props
}

func includeImageProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "boolean",
		"description": "Return the resulting image as base64 PNG. Default false",
		"default":     false,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and channel count.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the image file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_transform",
			Description: "Apply a sequence of transform steps to an image and return the result as base64-encoded PNG. Use this to preview what a path does before running OCR on it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty(),
					"steps":  stepsProperty(),
				},
				"required": []string{"steps"},
			},
		},
		{
			Name:        "ocr_recognize",
			Description: "Run OCR on an image as-is and return the words, full text, confidence and irregular-character scores.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty(),
					"ocr":    ocrProperty(),
				},
			},
		},
		{
			Name:        "ocr_run_path",
			Description: "Apply one path of transform steps, run OCR and score the result. Unknown steps abandon the path; the OCR of the untransformed image is still reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":          pathProperty(),
					"region":        regionProperty(),
					"name":          map[string]interface{}{"type": "string", "description": "Path name used in the result"},
					"steps":         stepsProperty(),
					"ocr":           ocrProperty(),
					"include_image": includeImageProperty(),
				},
				"required": []string{"steps"},
			},
		},
		{
			Name:        "ocr_run_field",
			Description: "Run every path of one field from a fields file against the same image and rank them by score, best first.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": fieldsProperties(map[string]interface{}{
					"path":   pathProperty(),
					"region": regionProperty(),
					"field": map[string]interface{}{
						"type":        "string",
						"description": "Field name. Defaults to the first field of the file",
					},
					"include_image": includeImageProperty(),
				}),
			},
		},
		{
			Name:        "ocr_run_fields",
			Description: "Run all fields of a fields file in order, each starting from the previous field's winning image, and return the final text and score.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": fieldsProperties(map[string]interface{}{
					"path":          pathProperty(),
					"region":        regionProperty(),
					"include_image": includeImageProperty(),
				}),
			},
		},
		{
			Name:        "transforms_list",
			Description: "List the transform names that steps may use.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
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
