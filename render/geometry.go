package render

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow reports that a requested image geometry exceeds the
// representable range. A render must fail whole on overflow, never
// truncate.
var ErrOverflow = errors.New("render: geometry out of bounds")

// maxPixelSize bounds image side lengths to what image encoders address
// with 32-bit dimensions.
const maxPixelSize = math.MaxInt32

// PixelSize returns (n + 2*border) * scale. Every intermediate step is
// overflow-checked rather than one final bound: a wrapped intermediate
// would pass a late comparison.
func PixelSize(n, border, scale int) (int, error) {
	pad, ok := mul(2, border, maxPixelSize)
	if !ok {
		return 0, fmt.Errorf("%w: n=%d border=%d scale=%d", ErrOverflow, n, border, scale)
	}
	side, ok := add(n, pad, maxPixelSize)
	if !ok {
		return 0, fmt.Errorf("%w: n=%d border=%d scale=%d", ErrOverflow, n, border, scale)
	}
	pixels, ok := mul(side, scale, maxPixelSize)
	if !ok {
		return 0, fmt.Errorf("%w: n=%d border=%d scale=%d", ErrOverflow, n, border, scale)
	}
	return pixels, nil
}

// ByteLength returns pixelSize squared times depth. The squaring is itself
// checked; a valid pixel size does not imply a representable buffer
// length.
func ByteLength(pixelSize, depth int) (int, error) {
	squared, ok := mul(pixelSize, pixelSize, math.MaxInt)
	if !ok {
		return 0, fmt.Errorf("%w: pixel size %d, depth %d", ErrOverflow, pixelSize, depth)
	}
	length, ok := mul(squared, depth, math.MaxInt)
	if !ok {
		return 0, fmt.Errorf("%w: pixel size %d, depth %d", ErrOverflow, pixelSize, depth)
	}
	return length, nil
}

// add and mul implement checked arithmetic over non-negative operands.

func add(a, b, max int) (int, bool) {
	if a > max-b {
		return 0, false
	}
	return a + b, true
}

func mul(a, b, max int) (int, bool) {
	if a != 0 && b > max/a {
		return 0, false
	}
	return a * b, true
}
