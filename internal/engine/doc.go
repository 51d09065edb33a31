// Package engine turns images into emoji grids.
//
// An Engine holds the active palette and the match cache built over it. It
// exposes the operations a front end needs: loading a palette (with
// substitution of the built-in fallback when the input is unusable), matching
// single colors, sampling cells, clearing the cache and rendering whole grids.
//
// Rendering splits the grid into chunks of ChunkRows rows. Chunks are handed
// to a pool of goroutines that each own a private cache, and progress is
// reported as chunks complete. Loading a palette or clearing the cache while
// a render runs makes that render fail with ErrStaleRender, so results
// computed against an old palette are never returned.
package engine
