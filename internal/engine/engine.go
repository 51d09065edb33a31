package engine

import (
	"image"
	"math"
	"runtime"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
	"github.com/ironsheep/emoji-art-mcp/internal/imaging"
	"github.com/ironsheep/emoji-art-mcp/internal/matcher"
	"github.com/ironsheep/emoji-art-mcp/internal/palette"
)

// PaletteSource records where the active palette came from.
type PaletteSource string

const (
	SourceFallback PaletteSource = "fallback" // built-in nine-color palette
	SourceLoaded   PaletteSource = "loaded"   // parsed from CSV rows or a file
	SourceCustom   PaletteSource = "custom"   // supplied directly via SetPalette
)

// PaletteInfo describes the active palette.
type PaletteInfo struct {
	Size    int           `json:"size"`
	Source  PaletteSource `json:"source"`
	Depth   int           `json:"tree_depth"`
	Symbols []string      `json:"symbols"`
	Error   string        `json:"error,omitempty"` // why a requested palette was replaced by the fallback
}

// Engine owns a palette and the match cache built over it.
//
// All methods are safe for concurrent use. Palette loads and cache clears
// serialize with color lookups; a render in progress when either happens is
// abandoned with ErrStaleRender.
type Engine struct {
	logger  *zap.Logger
	workers int

	mu      sync.Mutex
	entries []palette.Entry
	depth   int
	source  PaletteSource
	loadErr error
	cache   *matcher.Cache

	generation atomic.Int64
	renders    atomic.Int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithWorkers sets how many goroutines Render uses. Zero or less selects
// runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = n
	}
}

// WithPalette starts the engine on entries instead of the fallback palette.
func WithPalette(entries []palette.Entry) Option {
	return func(e *Engine) {
		e.entries = entries
		e.source = SourceCustom
	}
}

// New creates an engine. Without WithPalette it starts on palette.Fallback().
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  zap.NewNop(),
		entries: palette.Fallback(),
		source:  SourceFallback,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers <= 0 {
		e.workers = runtime.NumCPU()
	}
	e.depth = palette.Build(e.entries).Depth()
	e.cache = matcher.New(e.entries)
	return e
}

// Workers returns the number of render goroutines.
func (e *Engine) Workers() int {
	return e.workers
}

// LoadPalette replaces the palette with rows of "emoji, code, #RRGGBB".
//
// A malformed input never fails the engine: the fallback palette is
// substituted and the reason logged and reported in PaletteInfo.Error.
func (e *Engine) LoadPalette(rows [][]string) PaletteInfo {
	entries, err := palette.ParseRows(rows)
	return e.install(entries, err, "rows")
}

// LoadPaletteFile replaces the palette with the CSV file at path, falling back
// like LoadPalette when the file is missing or malformed.
func (e *Engine) LoadPaletteFile(path string) PaletteInfo {
	entries, err := palette.LoadFile(path)
	return e.install(entries, err, path)
}

func (e *Engine) install(entries []palette.Entry, err error, origin string) PaletteInfo {
	source := SourceLoaded
	if err != nil {
		e.logger.Warn("Palette unusable, using fallback",
			zap.String("origin", origin),
			zap.Error(err),
		)
		entries = palette.Fallback()
		source = SourceFallback
	} else {
		e.logger.Info("Palette loaded",
			zap.String("origin", origin),
			zap.Int("entries", len(entries)),
		)
	}

	e.mu.Lock()
	e.replace(entries, source, err)
	e.mu.Unlock()

	return e.PaletteInfo()
}

// SetPalette installs entries directly.
func (e *Engine) SetPalette(entries []palette.Entry) PaletteInfo {
	e.mu.Lock()
	e.replace(entries, SourceCustom, nil)
	e.mu.Unlock()
	return e.PaletteInfo()
}

// replace must be called with e.mu held.
func (e *Engine) replace(entries []palette.Entry, source PaletteSource, loadErr error) {
	e.entries = entries
	e.depth = palette.Build(entries).Depth()
	e.source = source
	e.loadErr = loadErr
	e.cache = matcher.New(entries)
	e.generation.Inc()
}

// ClearCache empties the match cache. The next lookup rebuilds the index.
func (e *Engine) ClearCache() matcher.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	before := e.cache.Stats()
	e.cache.Clear()
	e.generation.Inc()
	e.logger.Debug("Cache cleared",
		zap.Int("exact_entries", before.ExactEntries),
		zap.Int("quantized_entries", before.QuantizedEntries),
	)
	return before
}

// MatchColor returns the palette symbol nearest to the given color.
func (e *Engine) MatchColor(r, g, b uint8) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.LookupRGB(r, g, b)
}

// SampleCell returns the average color of rect within pix.
func (e *Engine) SampleCell(pix *image.RGBA, rect image.Rectangle) colorspace.RGB {
	return imaging.AverageColor(pix, rect)
}

// PaletteInfo describes the active palette.
func (e *Engine) PaletteInfo() PaletteInfo {
	e.mu.Lock()
	entries, depth, source, loadErr := e.entries, e.depth, e.source, e.loadErr
	e.mu.Unlock()

	info := PaletteInfo{
		Size:    len(entries),
		Source:  source,
		Depth:   depth,
		Symbols: make([]string, len(entries)),
	}
	for i, entry := range entries {
		info.Symbols[i] = entry.Symbol
	}
	if loadErr != nil {
		info.Error = loadErr.Error()
	}
	return info
}

// PaletteSource reports where the active palette came from.
func (e *Engine) PaletteSource() PaletteSource {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.source
}

// CacheStats reports the engine's own match cache.
func (e *Engine) CacheStats() matcher.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cache.Stats()
}

// Renders returns the number of renders that completed.
func (e *Engine) Renders() int64 {
	return e.renders.Load()
}

// GridSize returns the grid dimensions for an image with the given bounds
// rendered width cells wide: the height keeps the image's aspect ratio,
// rounded to the nearest row, and is at least one.
func GridSize(bounds image.Rectangle, width int) (int, int) {
	width = max(width, 1)
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return width, 1
	}
	height := int(math.Round(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx())))
	return width, max(height, 1)
}
