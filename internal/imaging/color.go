package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"

	"github.com/ironsheep/emoji-art-mcp/internal/colorspace"
)

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//   - Width = X2 - X1, Height = Y2 - Y1
type Region struct {
	X1 int `json:"x1"` // Left edge X coordinate (inclusive)
	Y1 int `json:"y1"` // Top edge Y coordinate (inclusive)
	X2 int `json:"x2"` // Right edge X coordinate (exclusive)
	Y2 int `json:"y2"` // Bottom edge Y coordinate (exclusive)
}

// Rect returns the region as an image.Rectangle without canonicalizing it,
// so an inverted region stays empty.
func (r Region) Rect() image.Rectangle {
	return image.Rectangle{Min: image.Pt(r.X1, r.Y1), Max: image.Pt(r.X2, r.Y2)}
}

// ToRGBA returns img as an RGBA pixel buffer.
//
// An *image.RGBA is returned unchanged; any other image is copied with its
// bounds preserved.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	return clone.AsRGBA(img)
}

// ClampRect restricts rect to bounds. The result is empty when the two do not
// overlap or rect is inverted.
func ClampRect(rect, bounds image.Rectangle) image.Rectangle {
	if rect.Empty() {
		return image.Rectangle{}
	}
	return rect.Intersect(bounds)
}

// AverageColor returns the mean RGB color of the pixels of pix inside rect.
//
// The rectangle is clamped to the buffer bounds, so pixels outside the buffer
// are never read. Alpha is ignored. Each channel mean is rounded to the
// nearest integer, halves rounding up. An empty rectangle yields white.
func AverageColor(pix *image.RGBA, rect image.Rectangle) colorspace.RGB {
	if pix == nil {
		return colorspace.White
	}
	r := ClampRect(rect, pix.Bounds())
	if r.Empty() {
		return colorspace.White
	}

	var sumR, sumG, sumB uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := pix.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x++ {
			sumR += uint64(pix.Pix[i])
			sumG += uint64(pix.Pix[i+1])
			sumB += uint64(pix.Pix[i+2])
			i += 4
		}
	}

	n := uint64(r.Dx()) * uint64(r.Dy())
	return colorspace.RGB{
		R: roundDiv(sumR, n),
		G: roundDiv(sumG, n),
		B: roundDiv(sumB, n),
	}
}

// roundDiv computes floor(sum/n + 0.5) in integer arithmetic.
func roundDiv(sum, n uint64) uint8 {
	return uint8((2*sum + n) / (2 * n))
}

// CellRect returns the pixel rectangle of grid cell (col, row) when bounds is
// divided into cells of cellW x cellH pixels.
//
// Cell edges are floored and the far edge is clamped to bounds, so adjacent
// cells never overlap and fractional cell sizes do not skip pixels. When
// cells are smaller than a pixel some cells are empty.
func CellRect(col, row int, cellW, cellH float64, bounds image.Rectangle) image.Rectangle {
	x0 := bounds.Min.X + int(math.Floor(float64(col)*cellW))
	y0 := bounds.Min.Y + int(math.Floor(float64(row)*cellH))
	x1 := min(bounds.Min.X+int(math.Floor(float64(col+1)*cellW)), bounds.Max.X)
	y1 := min(bounds.Min.Y+int(math.Floor(float64(row+1)*cellH)), bounds.Max.Y)
	return image.Rectangle{Min: image.Pt(x0, y0), Max: image.Pt(x1, y1)}
}
