// Package qr wraps QR symbol encoding behind a small capability interface
// so the pipeline depends on a module-matrix contract rather than on a
// concrete encoder.
package qr

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Version bounds defined by the QR Code Model 2 standard.
const (
	MinVersion = 1
	MaxVersion = 40
)

// MaskAuto lets the encoder choose the mask pattern.
const MaskAuto = -1

// Ecc is the error correction level of a generated symbol.
type Ecc int

const (
	EccLow      Ecc = iota // tolerates about 7% erroneous codewords
	EccMedium              // about 15%
	EccQuartile            // about 25%
	EccHigh                // about 30%
)

// String returns the canonical level name.
func (e Ecc) String() string {
	switch e {
	case EccLow:
		return "Low"
	case EccMedium:
		return "Medium"
	case EccQuartile:
		return "Quartile"
	case EccHigh:
		return "High"
	default:
		return fmt.Sprintf("Ecc(%d)", int(e))
	}
}

// ParseEcc parses a case-insensitive error correction level name.
func ParseEcc(s string) (Ecc, error) {
	switch strings.ToUpper(s) {
	case "LOW":
		return EccLow, nil
	case "MEDIUM":
		return EccMedium, nil
	case "QUARTILE":
		return EccQuartile, nil
	case "HIGH":
		return EccHigh, nil
	default:
		return 0, fmt.Errorf("QR Code error correction level must be either High, Quartile, Medium or Low")
	}
}

// Config bounds the symbols an encoder may produce.
type Config struct {
	MinVersion int
	MaxVersion int
	Level      Ecc
	Mask       int // MaskAuto or 0..7; recorded on matrices for diagnostics
}

// Matrix is an immutable square grid of modules plus encode diagnostics.
type Matrix struct {
	modules [][]bool
	size    int

	// Diagnostics only; rendering never depends on these.
	Version int
	Level   Ecc
	Mask    int
}

// NewMatrix copies a row-major module grid into a Matrix. The grid must be
// square. Alternative Encoder implementations construct matrices through
// this function.
func NewMatrix(modules [][]bool, version int, level Ecc, mask int) (*Matrix, error) {
	size := len(modules)
	grid := make([][]bool, size)
	for y, row := range modules {
		if len(row) != size {
			return nil, fmt.Errorf("qr: matrix row %d has %d modules, want %d", y, len(row), size)
		}
		grid[y] = make([]bool, size)
		copy(grid[y], row)
	}
	return &Matrix{modules: grid, size: size, Version: version, Level: level, Mask: mask}, nil
}

// Size returns the side length in modules.
func (m *Matrix) Size() int { return m.size }

// Module reports whether the module at (x, y) is set. Coordinates outside
// [0, Size) are the quiet zone and always report unset.
func (m *Matrix) Module(x, y int) bool {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return false
	}
	return m.modules[y][x]
}

// Encoder turns payload text into a renderable Matrix.
type Encoder interface {
	Encode(text string) (*Matrix, error)
}

// Coder encodes text within configured version and level bounds using
// github.com/skip2/go-qrcode.
type Coder struct {
	cfg Config
}

var _ Encoder = (*Coder)(nil)

// NewCoder validates cfg and returns a Coder.
func NewCoder(cfg Config) (*Coder, error) {
	if cfg.MinVersion < MinVersion || cfg.MinVersion > MaxVersion {
		return nil, fmt.Errorf("QR Code Model 2 version number must be between 1 and 40 inclusive")
	}
	if cfg.MaxVersion < MinVersion || cfg.MaxVersion > MaxVersion {
		return nil, fmt.Errorf("QR Code Model 2 version number must be between 1 and 40 inclusive")
	}
	if cfg.MinVersion > cfg.MaxVersion {
		return nil, fmt.Errorf("qr: minimum version %d is above maximum version %d", cfg.MinVersion, cfg.MaxVersion)
	}
	if cfg.Level < EccLow || cfg.Level > EccHigh {
		return nil, fmt.Errorf("qr: unknown error correction level %d", int(cfg.Level))
	}
	if cfg.Mask != MaskAuto && (cfg.Mask < 0 || cfg.Mask > 7) {
		return nil, fmt.Errorf("QR mask must be between 0 and 7 inclusive")
	}
	return &Coder{cfg: cfg}, nil
}

// Encode encodes text into a Matrix. The encoder is free to pick any
// version within [MinVersion, MaxVersion]; text that does not fit the
// configured bounds is an encode error, not a truncation.
func (c *Coder) Encode(text string) (*Matrix, error) {
	code, err := qrcode.New(text, recoveryLevel(c.cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	if code.VersionNumber > c.cfg.MaxVersion {
		return nil, fmt.Errorf("qr: payload needs version %d, above configured maximum %d", code.VersionNumber, c.cfg.MaxVersion)
	}
	if code.VersionNumber < c.cfg.MinVersion {
		code, err = qrcode.NewWithForcedVersion(text, c.cfg.MinVersion, recoveryLevel(c.cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("qr: encode at minimum version %d: %w", c.cfg.MinVersion, err)
		}
	}
	return matrixFrom(code, c.cfg.Level, c.cfg.Mask)
}

// matrixFrom strips the encoder's built-in quiet zone. The quiet zone is a
// rendering concern; matrices carry bare modules only.
func matrixFrom(code *qrcode.QRCode, level Ecc, mask int) (*Matrix, error) {
	bitmap := code.Bitmap()
	size := 17 + 4*code.VersionNumber
	offset := (len(bitmap) - size) / 2
	if offset < 0 {
		return nil, fmt.Errorf("qr: encoder produced a %d module symbol for version %d", len(bitmap), code.VersionNumber)
	}

	modules := make([][]bool, size)
	for y := 0; y < size; y++ {
		modules[y] = bitmap[y+offset][offset : offset+size]
	}
	return NewMatrix(modules, code.VersionNumber, level, mask)
}

// recoveryLevel maps the standard's level names onto the bound encoder's
// scale, where High means 25% and Highest means 30%.
func recoveryLevel(e Ecc) qrcode.RecoveryLevel {
	switch e {
	case EccLow:
		return qrcode.Low
	case EccMedium:
		return qrcode.Medium
	case EccQuartile:
		return qrcode.High
	default:
		return qrcode.Highest
	}
}
