package engine

import (
	"image"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
	"github.com/ironsheep/emoji-art-mcp/internal/palette"
)

func TestNew_StartsOnFallback(t *testing.T) {
	e := New()

	info := e.PaletteInfo()
	assert.Equal(t, SourceFallback, info.Source)
	assert.Equal(t, 9, info.Size)
	assert.Equal(t, 4, info.Depth)
	assert.Empty(t, info.Error)
	assert.Equal(t, "⬜", info.Symbols[0])
	assert.Positive(t, e.Workers())
}

func TestMatchColor_Fallback(t *testing.T) {
	e := New()

	tests := []struct {
		r, g, b uint8
		want    string
	}{
		{0, 0, 0, "⬛"},
		{255, 255, 255, "⬜"},
		{250, 5, 5, "🟥"},
		{0, 0, 250, "🟦"},
		{255, 160, 0, "🟧"},
		{130, 0, 130, "🟪"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.MatchColor(tt.r, tt.g, tt.b), "%d,%d,%d", tt.r, tt.g, tt.b)
	}
}

func TestLoadPalette(t *testing.T) {
	e := New()
	info := e.LoadPalette([][]string{
		{"Emoji", "ASCII Code", "Hex Color"},
		{"🍎", "127822", "#DD2E44"},
		{"🥝", "129373", "#77B255"},
	})

	assert.Equal(t, SourceLoaded, info.Source)
	assert.Equal(t, 2, info.Size)
	assert.Equal(t, []string{"🍎", "🥝"}, info.Symbols)
	assert.Equal(t, "🍎", e.MatchColor(255, 0, 0))
	assert.Equal(t, "🥝", e.MatchColor(0, 255, 0))
}

func TestLoadPalette_MalformedUsesFallback(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	e := New(WithLogger(zap.New(core)))

	info := e.LoadPalette([][]string{{"🍎", "127822"}})
	assert.Equal(t, SourceFallback, info.Source)
	assert.Equal(t, 9, info.Size)
	assert.Contains(t, info.Error, "row 1")
	assert.Equal(t, "⬛", e.MatchColor(0, 0, 0))
	assert.Equal(t, 1, logs.FilterMessage("Palette unusable, using fallback").Len())

	// A later successful load clears the error.
	info = e.LoadPalette([][]string{{"⬛", "11035", "#000000"}})
	assert.Equal(t, SourceLoaded, info.Source)
	assert.Empty(t, info.Error)
}

func TestLoadPalette_EmptyUsesFallback(t *testing.T) {
	e := New()
	info := e.LoadPalette(nil)
	assert.Equal(t, SourceFallback, info.Source)
	assert.Equal(t, 9, info.Size)
}

func TestLoadPalette_HeaderOnlyMatchesBlank(t *testing.T) {
	e := New()
	info := e.LoadPalette([][]string{{"Emoji", "ASCII Code", "Hex Color"}})

	assert.Equal(t, SourceLoaded, info.Source)
	assert.Zero(t, info.Size)
	assert.Zero(t, info.Depth)
	assert.Equal(t, palette.Blank, e.MatchColor(0, 0, 0))
	assert.Zero(t, e.CacheStats().Builds)
}

func TestLoadPaletteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emoji_data.csv")
	require.NoError(t, os.WriteFile(path, []byte("Emoji,ASCII Code,Hex Color\n🫐,129744,#3B5BA5\n"), 0o644))

	e := New()
	info := e.LoadPaletteFile(path)
	assert.Equal(t, SourceLoaded, info.Source)
	assert.Equal(t, []string{"🫐"}, info.Symbols)

	info = e.LoadPaletteFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, SourceFallback, info.Source)
	assert.NotEmpty(t, info.Error)
}

func TestSetPalette(t *testing.T) {
	e := New()
	info := e.SetPalette([]palette.Entry{palette.NewEntry("x", colorspace.RGB{R: 10, G: 20, B: 30})})
	assert.Equal(t, SourceCustom, info.Source)
	assert.Equal(t, "x", e.MatchColor(200, 200, 200))

	custom := New(WithPalette([]palette.Entry{palette.NewEntry("y", colorspace.White)}))
	assert.Equal(t, SourceCustom, custom.PaletteInfo().Source)
	assert.Equal(t, "y", custom.MatchColor(0, 0, 0))
}

func TestPaletteInfo_DepthFollowsPalette(t *testing.T) {
	e := New()
	assert.Equal(t, SourceFallback, e.PaletteSource())
	assert.Equal(t, 4, e.PaletteInfo().Depth)

	entries := make([]palette.Entry, 3)
	for i := range entries {
		entries[i] = palette.NewEntry("x", colorspace.RGB{R: uint8(i * 80)})
	}
	info := e.SetPalette(entries)
	assert.Equal(t, 2, info.Depth)
	assert.Equal(t, SourceCustom, e.PaletteSource())

	info = e.LoadPalette([][]string{{"Emoji", "ASCII Code", "Hex Color"}})
	assert.Zero(t, info.Depth)
	assert.Equal(t, SourceLoaded, e.PaletteSource())
}

func TestPaletteChangeInvalidatesCache(t *testing.T) {
	e := New()
	assert.Equal(t, "⬛", e.MatchColor(0, 0, 0))
	assert.Equal(t, 1, e.CacheStats().ExactEntries)

	e.SetPalette([]palette.Entry{palette.NewEntry("only", colorspace.White)})
	assert.Zero(t, e.CacheStats().ExactEntries)
	assert.Equal(t, "only", e.MatchColor(0, 0, 0))
}

func TestClearCache(t *testing.T) {
	e := New()
	colors := []colorspace.RGB{{R: 12, G: 200, B: 7}, {R: 90, G: 40, B: 160}, {R: 240, G: 230, B: 10}}

	var before []string
	for _, c := range colors {
		before = append(before, e.MatchColor(c.R, c.G, c.B))
	}

	stats := e.ClearCache()
	assert.Equal(t, 3, stats.ExactEntries)
	assert.EqualValues(t, 3, stats.Misses)
	assert.Zero(t, e.CacheStats().ExactEntries)

	for i, c := range colors {
		assert.Equal(t, before[i], e.MatchColor(c.R, c.G, c.B))
	}
	assert.EqualValues(t, 2, e.CacheStats().Builds)
}

func TestSampleCell(t *testing.T) {
	e := New()
	pix := image.NewRGBA(image.Rect(0, 0, 2, 1))
	copy(pix.Pix, []uint8{255, 0, 0, 255, 0, 255, 0, 255})

	assert.Equal(t, colorspace.RGB{R: 128, G: 128}, e.SampleCell(pix, pix.Bounds()))
	assert.Equal(t, colorspace.White, e.SampleCell(pix, image.Rect(1, 1, 1, 1)))
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		width  int
		wantW  int
		wantH  int
	}{
		{"landscape", image.Rect(0, 0, 100, 50), 32, 32, 16},
		{"portrait", image.Rect(0, 0, 50, 100), 32, 32, 64},
		{"rounds to nearest", image.Rect(0, 0, 300, 100), 32, 32, 11},
		{"thin strip", image.Rect(0, 0, 1000, 1), 32, 32, 1},
		{"empty image", image.Rectangle{}, 16, 16, 1},
		{"zero width", image.Rect(0, 0, 10, 10), 0, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := GridSize(tt.bounds, tt.width)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := 0; v < 256; v += 3 {
				assert.NotEmpty(t, e.MatchColor(uint8(v), uint8(255-v), uint8(i*30)))
			}
			if i%4 == 0 {
				e.ClearCache()
			}
		}()
	}
	wg.Wait()
	assert.Positive(t, e.CacheStats().Lookups())
}
