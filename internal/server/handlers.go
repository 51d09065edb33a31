package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
	"github.com/ironsheep/emoji-art-mcp/internal/engine"
	"github.com/ironsheep/emoji-art-mcp/internal/imaging"
	"github.com/ironsheep/emoji-art-mcp/internal/matcher"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "emoji_convert_image").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token.
	Meta *RequestMeta `json:"_meta,omitempty"`
}

// RequestMeta is the _meta object of a request.
type RequestMeta struct {
	ProgressToken interface{} `json:"progressToken,omitempty"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	var token interface{}
	if params.Meta != nil {
		token = params.Meta.ProgressToken
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments, token)
	if err != nil {
		s.logger.Debug("Tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage, progressToken interface{}) (interface{}, error) {
	switch name {
	// Palette
	case "emoji_load_palette":
		return s.handleLoadPalette(args)
	case "emoji_palette_info":
		return s.engine.PaletteInfo(), nil

	// Matching
	case "emoji_match_color":
		return s.handleMatchColor(args)
	case "emoji_sample_cell":
		return s.handleSampleCell(args)

	// Conversion
	case "emoji_convert_image":
		return s.handleConvertImage(ctx, args, progressToken)

	// Cache
	case "emoji_clear_cache":
		return s.handleClearCache(), nil
	case "emoji_cache_stats":
		return s.cacheStats(), nil

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments, treating absent arguments as an empty
// object.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Palette Handlers ===

type loadPaletteArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleLoadPalette(args json.RawMessage) (interface{}, error) {
	var a loadPaletteArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, errors.New("path is required")
	}
	return s.engine.LoadPaletteFile(a.Path), nil
}

// === Matching Handlers ===

type matchColorArgs struct {
	R   *int   `json:"r"`
	G   *int   `json:"g"`
	B   *int   `json:"b"`
	Hex string `json:"hex"`
}

// MatchResult is the answer to a color match.
type MatchResult struct {
	Symbol string         `json:"symbol"`
	RGB    colorspace.RGB `json:"rgb"`
	Hex    string         `json:"hex"`
	Lab    colorspace.Lab `json:"lab"`
}

func (s *Server) handleMatchColor(args json.RawMessage) (interface{}, error) {
	var a matchColorArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}

	var c colorspace.RGB
	switch {
	case a.Hex != "":
		parsed, err := colorspace.ParseHex(a.Hex)
		if err != nil {
			return nil, err
		}
		c = parsed
	case a.R != nil && a.G != nil && a.B != nil:
		for _, v := range []int{*a.R, *a.G, *a.B} {
			if v < 0 || v > 255 {
				return nil, fmt.Errorf("color channel %d out of range 0-255", v)
			}
		}
		c = colorspace.RGB{R: uint8(*a.R), G: uint8(*a.G), B: uint8(*a.B)}
	default:
		return nil, errors.New("either hex or all of r, g and b are required")
	}

	return s.match(c), nil
}

func (s *Server) match(c colorspace.RGB) *MatchResult {
	return &MatchResult{
		Symbol: s.engine.MatchColor(c.R, c.G, c.B),
		RGB:    c,
		Hex:    c.Hex(),
		Lab:    c.Lab(),
	}
}

type sampleCellArgs struct {
	Path string `json:"path"`
	imaging.Region
}

// SampleResult is the average color of a sampled rectangle.
type SampleResult struct {
	Region imaging.Region `json:"region"`
	Pixels int            `json:"pixels"`
	MatchResult
}

func (s *Server) handleSampleCell(args json.RawMessage) (interface{}, error) {
	var a sampleCellArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.images.Load(a.Path)
	if err != nil {
		return nil, err
	}

	pix := imaging.ToRGBA(img)
	rect := a.Region.Rect()
	clamped := imaging.ClampRect(rect, pix.Bounds())
	avg := s.engine.SampleCell(pix, rect)

	return &SampleResult{
		Region:      a.Region,
		Pixels:      clamped.Dx() * clamped.Dy(),
		MatchResult: *s.match(avg),
	}, nil
}

// === Conversion Handlers ===

type convertImageArgs struct {
	Path       string          `json:"path"`
	GridWidth  int             `json:"grid_width"`
	GridHeight int             `json:"grid_height"`
	Region     *imaging.Region `json:"region,omitempty"`
	MaxSize    int             `json:"max_size"`
}

// ConvertResult is a rendered emoji grid.
type ConvertResult struct {
	Width         int                  `json:"width"`
	Height        int                  `json:"height"`
	Lines         []string             `json:"lines"`
	Source        *imaging.SourceInfo  `json:"source"`
	SampledWidth  int                  `json:"sampled_width"`
	SampledHeight int                  `json:"sampled_height"`
	Palette       engine.PaletteSource `json:"palette"`
	Cache         matcher.Stats        `json:"cache"`
}

func (s *Server) handleConvertImage(ctx context.Context, args json.RawMessage, progressToken interface{}) (interface{}, error) {
	var a convertImageArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.GridWidth < 0 || a.GridHeight < 0 || a.MaxSize < 0 {
		return nil, errors.New("grid_width, grid_height and max_size must be positive")
	}
	if a.GridWidth == 0 {
		a.GridWidth = s.gridWidth
	}
	if a.MaxSize == 0 {
		a.MaxSize = s.maxSize
	}

	info, err := s.images.Info(a.Path)
	if err != nil {
		return nil, err
	}
	img, err := s.images.Load(a.Path)
	if err != nil {
		return nil, err
	}

	pix, err := imaging.PrepareSource(img, a.Region, a.MaxSize)
	if err != nil {
		return nil, err
	}

	width, height := engine.GridSize(pix.Bounds(), a.GridWidth)
	if a.GridHeight > 0 {
		height = a.GridHeight
	}

	var progress engine.ProgressFunc
	if progressToken != nil {
		progress = func(percent int) {
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": progressToken,
				"progress":      percent,
				"total":         100,
			})
		}
	}

	grid, err := s.engine.Render(ctx, pix, width, height, progress)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Image converted",
		zap.String("path", a.Path),
		zap.Int("width", grid.Width),
		zap.Int("height", grid.Height),
	)

	return &ConvertResult{
		Width:         grid.Width,
		Height:        grid.Height,
		Lines:         grid.Lines(),
		Source:        info,
		SampledWidth:  pix.Bounds().Dx(),
		SampledHeight: pix.Bounds().Dy(),
		Palette:       s.engine.PaletteSource(),
		Cache:         grid.Stats,
	}, nil
}

// === Cache Handlers ===

// CacheReport summarizes the server's caches.
type CacheReport struct {
	Colors  matcher.Stats `json:"colors"`
	HitRate float64       `json:"hit_rate"`
	Images  int           `json:"images"`
	Renders int64         `json:"renders"`
}

func (s *Server) cacheStats() *CacheReport {
	stats := s.engine.CacheStats()
	return &CacheReport{
		Colors:  stats,
		HitRate: stats.HitRate(),
		Images:  s.images.Len(),
		Renders: s.engine.Renders(),
	}
}

func (s *Server) handleClearCache() *CacheReport {
	report := s.cacheStats()
	report.Colors = s.engine.ClearCache()
	s.images.Clear()
	return report
}
