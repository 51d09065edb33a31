package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidRegion is returned for regions with x1 >= x2 or y1 >= y2, or that
// lie entirely outside the image.
var ErrInvalidRegion = errors.New("invalid region")

// CropRegion extracts region from img. A region that extends past the image is
// clamped to it; one that does not overlap the image at all is an error. The
// result's bounds start at (0,0).
func CropRegion(img image.Image, region Region) (image.Image, error) {
	if region.X1 >= region.X2 || region.Y1 >= region.Y2 {
		return nil, fmt.Errorf("%w: x1 must be < x2, y1 must be < y2", ErrInvalidRegion)
	}

	bounds := img.Bounds()
	rect := ClampRect(region.Rect(), bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d) outside image bounds (%d,%d)-(%d,%d)",
			ErrInvalidRegion, region.X1, region.Y1, region.X2, region.Y2,
			bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Max.Y)
	}

	return imaging.Crop(img, rect), nil
}

// FitWithin downscales img with a Lanczos filter so neither side exceeds
// maxSize, preserving aspect ratio. Images already within the limit, and a
// non-positive maxSize, leave img unchanged.
func FitWithin(img image.Image, maxSize int) image.Image {
	if maxSize <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxSize && b.Dy() <= maxSize {
		return img
	}
	return imaging.Fit(img, maxSize, maxSize, imaging.Lanczos)
}

// PrepareSource turns a decoded image into the RGBA buffer that cells are
// sampled from: an optional crop to region, then an optional downscale so the
// longer side is at most maxSize.
func PrepareSource(img image.Image, region *Region, maxSize int) (*image.RGBA, error) {
	if img == nil {
		return nil, errors.New("no image")
	}
	if region != nil {
		cropped, err := CropRegion(img, *region)
		if err != nil {
			return nil, err
		}
		img = cropped
	}
	return ToRGBA(FitWithin(img, maxSize)), nil
}
