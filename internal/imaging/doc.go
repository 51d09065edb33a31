// Package imaging loads source images and samples them into per-cell colors.
//
// A conversion starts with ImageCache, which decodes and caches files by
// path. PrepareSource optionally crops the decoded image and downscales it,
// returning an *image.RGBA buffer. The grid renderer then divides the buffer
// into cells with CellRect and averages each cell with AverageColor.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. For regions and rectangles,
// (x1,y1) is inclusive and (x2,y2) is exclusive.
//
// # Sampling
//
// AverageColor never reads outside the buffer: rectangles are clamped to the
// buffer bounds first. A rectangle with no pixels left after clamping
// samples as white, so cells that fall off the edge of the image render as
// the lightest palette entry rather than black.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The sampling functions only read
// from the buffer and may run concurrently on the same image.
package imaging
