// Package palette holds the emoji palette and the spatial index used to find
// the palette entry nearest to a color.
//
// # Entries
//
// A palette is an ordered slice of Entry values, each pairing a symbol (one
// emoji or a short grapheme cluster) with its RGB color and the precomputed
// Lab color. Palettes are loaded once and treated as immutable; a changed
// palette requires building a new Tree.
//
// # Input Format
//
// Palettes are read from CSV rows of the form:
//
//	Emoji,ASCII Code,Hex Color
//	🟥,128997,#FF0000
//
// The first row is skipped when it is exactly the header above. The second
// column is ignored. Any malformed row fails the whole load; callers are
// expected to substitute Fallback().
//
// # Index
//
// Build constructs a balanced k-d tree by recursive median split, cycling the
// split axis through L, a and b. Nearest performs the classic depth-first
// nearest-neighbor search with axis pruning. An empty tree matches nothing;
// callers substitute Blank.
package palette
