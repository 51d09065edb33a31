package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/emoji-art-mcp/internal/imaging"
	"github.com/ironsheep/emoji-art-mcp/internal/matcher"
	"github.com/ironsheep/emoji-art-mcp/internal/palette"
)

// ChunkRows is the number of grid rows rendered as one unit of work.
// Progress is reported and cancellation checked between chunks.
const ChunkRows = 10

// Grid size limits. Each side is checked before the product so that the cell
// count cannot overflow.
const (
	MaxGridSide = 4096
	MaxCells    = 1 << 20
)

var (
	// ErrStaleRender is returned when the palette or cache changed while a
	// render was running. The partial grid is discarded.
	ErrStaleRender = errors.New("render superseded by palette change")

	// ErrInvalidGrid is returned for non-positive grid dimensions and grids
	// larger than MaxGridSide or MaxCells.
	ErrInvalidGrid = errors.New("invalid grid dimensions")
)

// ProgressFunc receives the percentage of rows rendered, 0-100. Calls are
// serialized and the reported values never decrease.
type ProgressFunc func(percent int)

// Grid is a rendered emoji grid stored row-major.
type Grid struct {
	Width  int           `json:"width"`
	Height int           `json:"height"`
	Cells  []string      `json:"cells"`
	Stats  matcher.Stats `json:"cache"`
}

// At returns the symbol at column x, row y.
func (g *Grid) At(x, y int) string {
	return g.Cells[y*g.Width+x]
}

// Row returns the symbols of row y.
func (g *Grid) Row(y int) []string {
	return g.Cells[y*g.Width : (y+1)*g.Width]
}

// Lines returns each row joined into a single string.
func (g *Grid) Lines() []string {
	lines := make([]string, g.Height)
	for y := range lines {
		lines[y] = strings.Join(g.Row(y), "")
	}
	return lines
}

// String returns the grid as newline-separated rows.
func (g *Grid) String() string {
	return strings.Join(g.Lines(), "\n")
}

// job is the state shared by everything rendering one grid.
type job struct {
	pix          *image.RGBA
	grid         *Grid
	cellW, cellH float64
	generation   int64
	rowsDone     atomic.Int64
	progressMu   sync.Mutex
	lastProgress int
	progress     ProgressFunc
}

// Render divides pix into a width x height grid of cells and replaces each
// cell with the palette symbol nearest its average color.
//
// With one worker the engine's own cache is used, so colors matched by
// earlier renders or MatchColor are served from it. With more workers the
// rows are split into chunks of ChunkRows and spread over goroutines that
// each match through a private cache over the same palette.
//
// The quantized cache tier answers with whichever color of a bucket was
// matched first, so a cell whose average lies near a decision boundary may
// render differently depending on which cache saw its bucket first. Every
// cell is still the nearest symbol to some color in its own bucket.
func (e *Engine) Render(ctx context.Context, pix *image.RGBA, width, height int, progress ProgressFunc) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d must be positive", ErrInvalidGrid, width, height)
	}
	if width > MaxGridSide || height > MaxGridSide || width*height > MaxCells {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells or %d per side",
			ErrInvalidGrid, width, height, MaxCells, MaxGridSide)
	}
	if pix == nil {
		return nil, errors.New("no pixel buffer")
	}

	bounds := pix.Bounds()
	j := &job{
		pix: pix,
		grid: &Grid{
			Width:  width,
			Height: height,
			Cells:  make([]string, width*height),
		},
		cellW:    float64(bounds.Dx()) / float64(width),
		cellH:    float64(bounds.Dy()) / float64(height),
		progress: progress,
	}

	e.mu.Lock()
	entries := e.entries
	j.generation = e.generation.Load()
	e.mu.Unlock()

	chunks := (height + ChunkRows - 1) / ChunkRows
	workers := min(e.workers, chunks)
	start := time.Now()

	var err error
	if workers <= 1 {
		err = e.renderSerial(ctx, j, chunks)
	} else {
		err = e.renderParallel(ctx, j, entries, chunks, workers)
	}
	if err != nil {
		e.logger.Debug("Render abandoned",
			zap.Int("width", width),
			zap.Int("height", height),
			zap.Error(err),
		)
		return nil, err
	}

	e.renders.Inc()
	e.logger.Debug("Render complete",
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("workers", max(workers, 1)),
		zap.Int64("misses", j.grid.Stats.Misses),
		zap.Duration("elapsed", time.Since(start)),
	)
	return j.grid, nil
}

func (e *Engine) renderSerial(ctx context.Context, j *job, chunks int) error {
	for chunk := 0; chunk < chunks; chunk++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		e.mu.Lock()
		if e.generation.Load() != j.generation {
			e.mu.Unlock()
			return ErrStaleRender
		}
		before := e.cache.Stats()
		rows := j.renderChunk(chunk, e.cache)
		j.grid.Stats = j.grid.Stats.Add(delta(e.cache.Stats(), before))
		e.mu.Unlock()

		j.report(rows)
	}
	return nil
}

func (e *Engine) renderParallel(ctx context.Context, j *job, entries []palette.Entry, chunks, workers int) error {
	g, ctx := errgroup.WithContext(ctx)
	work := make(chan int)

	g.Go(func() error {
		defer close(work)
		for chunk := 0; chunk < chunks; chunk++ {
			select {
			case work <- chunk:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	var statsMu sync.Mutex
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			cache := matcher.New(entries)
			defer func() {
				statsMu.Lock()
				j.grid.Stats = j.grid.Stats.Add(cache.Stats())
				statsMu.Unlock()
			}()

			for chunk := range work {
				if err := ctx.Err(); err != nil {
					return err
				}
				if e.generation.Load() != j.generation {
					return ErrStaleRender
				}
				j.report(j.renderChunk(chunk, cache))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	// A palette change after the last chunk still leaves a grid built from
	// the old palette.
	if e.generation.Load() != j.generation {
		return ErrStaleRender
	}
	return nil
}

// renderChunk fills the rows of one chunk and returns how many it rendered.
// Chunks cover disjoint rows, so concurrent calls write disjoint cells.
func (j *job) renderChunk(chunk int, cache *matcher.Cache) int {
	bounds := j.pix.Bounds()
	first := chunk * ChunkRows
	last := min(first+ChunkRows, j.grid.Height)

	for y := first; y < last; y++ {
		row := j.grid.Row(y)
		for x := range row {
			rect := imaging.CellRect(x, y, j.cellW, j.cellH, bounds)
			row[x] = cache.Lookup(imaging.AverageColor(j.pix, rect))
		}
	}
	return last - first
}

func (j *job) report(rows int) {
	done := j.rowsDone.Add(int64(rows))
	if j.progress == nil {
		return
	}
	percent := int(done * 100 / int64(j.grid.Height))

	j.progressMu.Lock()
	defer j.progressMu.Unlock()
	if percent > j.lastProgress {
		j.lastProgress = percent
		j.progress(percent)
	}
}

// delta returns the counters accumulated between two snapshots of one cache.
func delta(after, before matcher.Stats) matcher.Stats {
	return matcher.Stats{
		ExactHits:     after.ExactHits - before.ExactHits,
		QuantizedHits: after.QuantizedHits - before.QuantizedHits,
		Misses:        after.Misses - before.Misses,
		LabHits:       after.LabHits - before.LabHits,
		Builds:        after.Builds - before.Builds,
		Generation:    after.Generation,
	}
}
