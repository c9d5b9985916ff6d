// Package render turns QR matrices into image file bodies.
package render

import (
	"fmt"
	"strings"

	"github.com/ian-hamlin/qrgen/qr"
)

// Format selects the output image type.
type Format int

const (
	SVG Format = iota
	PNG
)

// ParseFormat parses a case-insensitive format name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(s) {
	case "SVG":
		return SVG, nil
	case "PNG":
		return PNG, nil
	default:
		return 0, fmt.Errorf("Format must be either SVG or PNG")
	}
}

// String returns the canonical format name.
func (f Format) String() string {
	if f == PNG {
		return "PNG"
	}
	return "SVG"
}

// Ext returns the output file extension for the format.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".svg"
}

// Config is the shared, read-only render configuration. It is never
// mutated after construction, so workers share it without locking.
type Config struct {
	Border int // quiet zone width in modules, >= 0
	Scale  int // pixels per module, raster path only, >= 1
}

// Renderer produces a complete image file body for one matrix.
type Renderer interface {
	Render(m *qr.Matrix) ([]byte, error)
}
