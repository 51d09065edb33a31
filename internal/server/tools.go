package server

import "github.com/ironsheep/emoji-art-mcp/internal/engine"

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

func coordinateProperties() map[string]interface{} {
	return map[string]interface{}{
		"x1": map[string]interface{}{
			"type":        "integer",
			"description": "Left edge X coordinate (0-based)",
		},
		"y1": map[string]interface{}{
			"type":        "integer",
			"description": "Top edge Y coordinate (0-based)",
		},
		"x2": map[string]interface{}{
			"type":        "integer",
			"description": "Right edge X coordinate (exclusive)",
		},
		"y2": map[string]interface{}{
			"type":        "integer",
			"description": "Bottom edge Y coordinate (exclusive)",
		},
	}
}

func channelProperty(name string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": name + " channel (0-255)",
		"minimum":     0,
		"maximum":     255,
	}
}

func emptySchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	sampleProps := coordinateProperties()
	sampleProps["path"] = pathProperty()

	return []Tool{
		// Palette
		{
			Name:        "emoji_load_palette",
			Description: "Load an emoji palette from a CSV file with rows of emoji, code point and #RRGGBB color. An optional header row 'Emoji,ASCII Code,Hex Color' is skipped. If the file is missing or malformed the built-in nine-color palette is used instead and the reason is reported.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": map[string]interface{}{
						"type":        "string",
						"description": "Absolute path to the palette CSV file",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "emoji_palette_info",
			Description: "Describe the active palette: its size, where it came from (loaded, fallback or custom), the k-d tree depth and its symbols.",
			InputSchema: emptySchema(),
		},

		// Matching
		{
			Name:        "emoji_match_color",
			Description: "Find the palette emoji closest to a color in CIE Lab space. Give either r, g and b or a hex color.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"r": channelProperty("Red"),
					"g": channelProperty("Green"),
					"b": channelProperty("Blue"),
					"hex": map[string]interface{}{
						"type":        "string",
						"description": "Color as #RRGGBB",
					},
				},
			},
		},
		{
			Name:        "emoji_sample_cell",
			Description: "Average the RGB color of a rectangle of an image and match it to the palette. The rectangle is clamped to the image; an empty rectangle samples as white.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": sampleProps,
				"required":   []string{"path", "x1", "y1", "x2", "y2"},
			},
		},

		// Conversion
		{
			Name:        "emoji_convert_image",
			Description: "Convert an image into a grid of emoji. Each grid cell is replaced by the palette emoji nearest to the cell's average color. Sends progress notifications when the request carries a progress token.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"grid_width": map[string]interface{}{
						"type":        "integer",
						"description": "Number of emoji per row. Defaults to the server setting (32).",
						"minimum":     1,
						"maximum":     engine.MaxGridSide,
					},
					"grid_height": map[string]interface{}{
						"type":        "integer",
						"description": "Number of rows. Defaults to keeping the image aspect ratio.",
						"minimum":     1,
						"maximum":     engine.MaxGridSide,
					},
					"region": map[string]interface{}{
						"type":        "object",
						"description": "Optional selection to convert instead of the whole image",
						"properties":  coordinateProperties(),
						"required":    []string{"x1", "y1", "x2", "y2"},
					},
					"max_size": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale the source so neither side exceeds this many pixels before sampling. Defaults to the server setting (800).",
						"minimum":     1,
					},
				},
				"required": []string{"path"},
			},
		},

		// Cache
		{
			Name:        "emoji_clear_cache",
			Description: "Clear the color match cache and the loaded image cache. Returns the cache statistics from before clearing.",
			InputSchema: emptySchema(),
		},
		{
			Name:        "emoji_cache_stats",
			Description: "Report color match cache hits, misses, index builds and sizes, plus the number of cached images.",
			InputSchema: emptySchema(),
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
