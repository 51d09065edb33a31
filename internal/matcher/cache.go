// Package matcher maps RGB colors to palette symbols through a two-tier cache
// wrapped around a nearest-neighbor index.
//
// Lookups try, in order, an exact-color tier, a quantized tier that groups
// each channel into 32 buckets, and finally a full Lab conversion plus index
// search whose result is stored in both tiers. Building the index seeds the
// Lab memo with the palette's own colors, so a miss on a color that is
// exactly a palette color skips the conversion. The quantized tier is
// first-writer-wins: once a bucket holds a symbol, every color falling into
// that bucket that has not been looked up exactly returns it, even when a
// different palette entry would be marginally closer.
//
// A Cache is not safe for concurrent use. Concurrent renderers each own one.
package matcher

import (
	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
	"github.com/ironsheep/emoji-art-mcp/internal/palette"
)

// Buckets is the number of quantization buckets per color channel.
const Buckets = 32

// Index finds the palette entry nearest to a Lab color.
type Index interface {
	Nearest(target colorspace.Lab) (palette.Entry, bool)
}

// Builder creates an Index over a palette.
type Builder func(entries []palette.Entry) Index

// TreeBuilder builds a k-d tree index.
func TreeBuilder(entries []palette.Entry) Index {
	return palette.Build(entries)
}

// bucket is a quantized color key.
type bucket [3]uint8

func quantize(c colorspace.RGB) bucket {
	// floor(v / 256 * Buckets) for v in 0-255.
	return bucket{
		uint8(int(c.R) * Buckets / 256),
		uint8(int(c.G) * Buckets / 256),
		uint8(int(c.B) * Buckets / 256),
	}
}

// Cache memoizes color-to-symbol matches for a fixed palette.
type Cache struct {
	entries []palette.Entry
	build   Builder
	index   Index

	exact     map[colorspace.RGB]string
	quantized map[bucket]string
	labs      map[colorspace.RGB]colorspace.Lab

	stats Stats
}

// Option configures a Cache.
type Option func(*Cache)

// WithBuilder replaces the default k-d tree index builder.
func WithBuilder(b Builder) Option {
	return func(c *Cache) {
		c.build = b
	}
}

// New creates a cache over entries. The index is built lazily on the first
// lookup that misses both tiers.
func New(entries []palette.Entry, opts ...Option) *Cache {
	c := &Cache{
		entries: entries,
		build:   TreeBuilder,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset()
	return c
}

func (c *Cache) reset() {
	c.exact = make(map[colorspace.RGB]string)
	c.quantized = make(map[bucket]string)
	c.labs = make(map[colorspace.RGB]colorspace.Lab)
	c.index = nil
}

// Lookup returns the palette symbol for col, or palette.Blank when the
// palette is empty.
func (c *Cache) Lookup(col colorspace.RGB) string {
	if len(c.entries) == 0 {
		return palette.Blank
	}

	if symbol, ok := c.exact[col]; ok {
		c.stats.ExactHits++
		return symbol
	}

	key := quantize(col)
	if symbol, ok := c.quantized[key]; ok {
		c.stats.QuantizedHits++
		return symbol
	}

	c.stats.Misses++
	index := c.indexFor()
	symbol := palette.Blank
	if entry, ok := index.Nearest(c.lab(col)); ok {
		symbol = entry.Symbol
	}

	c.exact[col] = symbol
	c.quantized[key] = symbol
	return symbol
}

// LookupRGB is a convenience wrapper around Lookup.
func (c *Cache) LookupRGB(r, g, b uint8) string {
	return c.Lookup(colorspace.RGB{R: r, G: g, B: b})
}

func (c *Cache) indexFor() Index {
	if c.index == nil {
		for _, entry := range c.entries {
			c.labs[entry.Color] = entry.Lab
		}
		c.index = c.build(c.entries)
		c.stats.Builds++
	}
	return c.index
}

func (c *Cache) lab(col colorspace.RGB) colorspace.Lab {
	if lab, ok := c.labs[col]; ok {
		c.stats.LabHits++
		return lab
	}
	lab := col.Lab()
	c.labs[col] = lab
	return lab
}

// Clear empties every tier and drops the index so that it is rebuilt on the
// next miss. Counters are kept; the generation is incremented.
func (c *Cache) Clear() {
	c.reset()
	c.stats.Generation++
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	s := c.stats
	s.ExactEntries = len(c.exact)
	s.QuantizedEntries = len(c.quantized)
	s.LabEntries = len(c.labs)
	return s
}
