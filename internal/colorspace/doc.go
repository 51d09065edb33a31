// Package colorspace converts 8-bit sRGB colors to CIE L*a*b* and measures
// distances between Lab colors.
//
// # Conversion
//
// RGBToLab follows the classic sRGB → XYZ → Lab pipeline with fixed constants:
//
//  1. Normalize each channel to 0-1.
//  2. Undo the sRGB gamma curve (threshold 0.04045, exponent 2.4).
//  3. Scale by 100 and apply the linear sRGB → XYZ matrix.
//  4. Normalize against the D65 white point (95.047, 100.0, 108.883) and apply
//     the Lab companding function (epsilon 0.008856, kappa 903.3).
//  5. L = 116·fy − 16, a = 500·(fx − fy), b = 200·(fy − fz).
//
// The function is total over the RGB domain and has no side effects.
//
// # Distance
//
// Distance is plain Euclidean distance in Lab space (CIE76). It is the only
// similarity metric used for palette matching.
package colorspace
