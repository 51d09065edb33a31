package colorspace

import "math"

// D65 reference white in XYZ, scaled so that Y = 100.
const (
	whiteX = 95.047
	whiteY = 100.0
	whiteZ = 108.883
)

// Lab companding constants.
const (
	labEpsilon = 0.008856
	labKappa   = 903.3
)

// Lab represents a color in the CIE L*a*b* color space.
//
// L ranges over 0-100; A and B are roughly -128 to 127 for colors reachable
// from sRGB. Values are derived deterministically from an RGB color and are
// never modified after construction.
type Lab struct {
	L float64 `json:"l"` // Lightness (0-100)
	A float64 `json:"a"` // Green (-) to red (+)
	B float64 `json:"b"` // Blue (-) to yellow (+)
}

// Axis returns the component used as splitting axis i of a k-d tree:
// 0 = L, 1 = a, 2 = b. Any other value is reduced modulo 3.
func (c Lab) Axis(i int) float64 {
	switch i % 3 {
	case 0:
		return c.L
	case 1:
		return c.A
	default:
		return c.B
	}
}

// RGBToLab converts 8-bit sRGB components to CIE L*a*b* under D65.
func RGBToLab(r, g, b uint8) Lab {
	rl := linearize(float64(r)/255) * 100
	gl := linearize(float64(g)/255) * 100
	bl := linearize(float64(b)/255) * 100

	x := rl*0.4124 + gl*0.3576 + bl*0.1805
	y := rl*0.2126 + gl*0.7152 + bl*0.0722
	z := rl*0.0193 + gl*0.1192 + bl*0.9505

	fx := labF(x / whiteX)
	fy := labF(y / whiteY)
	fz := labF(z / whiteZ)

	return Lab{
		L: 116*fy - 16,
		A: 500 * (fx - fy),
		B: 200 * (fy - fz),
	}
}

// Lab converts c to CIE L*a*b*.
func (c RGB) Lab() Lab {
	return RGBToLab(c.R, c.G, c.B)
}

// linearize undoes the sRGB transfer curve for a channel in 0-1.
func linearize(v float64) float64 {
	if v > 0.04045 {
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return v / 12.92
}

// labF is the Lab companding function. Below epsilon the linear segment
// (kappa·t + 16) / 116 is used, which equals 7.787·t + 16/116.
func labF(t float64) float64 {
	if t > labEpsilon {
		return math.Cbrt(t)
	}
	return (labKappa*t + 16) / 116
}

// Distance returns the Euclidean distance between two Lab colors.
func Distance(a, b Lab) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}
