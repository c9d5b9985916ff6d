package render

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/ian-hamlin/qrgen/qr"
)

func checkerboard(t *testing.T, size int) *qr.Matrix {
	t.Helper()
	rows := make([][]bool, size)
	for y := range rows {
		rows[y] = make([]bool, size)
		for x := range rows[y] {
			rows[y][x] = (x+y)%2 == 0
		}
	}
	m, err := qr.NewMatrix(rows, 1, qr.EccHigh, qr.MaskAuto)
	if err != nil {
		t.Fatalf("NewMatrix failed: %v", err)
	}
	return m
}

func TestNewRasterValidatesConfig(t *testing.T) {
	if _, err := NewRaster(Config{Border: -1, Scale: 1}); err == nil {
		t.Fatalf("expected an error for a negative border")
	}
	if _, err := NewRaster(Config{Border: 0, Scale: 0}); err == nil {
		t.Fatalf("expected an error for scale 0")
	}
}

func TestRenderRoundTripsEveryPixel(t *testing.T) {
	const (
		size   = 3
		border = 1
		scale  = 2
	)
	m := checkerboard(t, size)
	r, err := NewRaster(Config{Border: border, Scale: scale})
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}

	body, err := r.Render(m)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decoding the rendered PNG failed: %v", err)
	}

	wantSide := (size + 2*border) * scale
	bounds := img.Bounds()
	if bounds.Dx() != wantSide || bounds.Dy() != wantSide {
		t.Fatalf("expected a %dx%d image, got %dx%d", wantSide, wantSide, bounds.Dx(), bounds.Dy())
	}

	for y := 0; y < wantSide; y++ {
		for x := 0; x < wantSide; x++ {
			set := m.Module(x/scale-border, y/scale-border)
			cr, cg, cb, _ := img.At(x, y).RGBA()
			dark := cr == 0 && cg == 0 && cb == 0
			if set && !dark {
				t.Fatalf("pixel (%d, %d) maps to a set module but is not foreground", x, y)
			}
			if !set && dark {
				t.Fatalf("pixel (%d, %d) maps to the quiet zone or an unset module but is foreground", x, y)
			}
		}
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	m := checkerboard(t, 5)
	r, err := NewRaster(Config{Border: 2, Scale: 3})
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}

	first, err := r.Render(m)
	if err != nil {
		t.Fatalf("first Render failed: %v", err)
	}
	second, err := r.Render(m)
	if err != nil {
		t.Fatalf("second Render failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("two renders of the same matrix differ")
	}
}

func TestRenderFailsWholeOnOverflow(t *testing.T) {
	m := checkerboard(t, 21)
	r, err := NewRaster(Config{Border: 4, Scale: math.MaxInt32})
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}

	body, err := r.Render(m)
	if err == nil {
		t.Fatalf("expected a geometry error, got %d bytes", len(body))
	}
	if !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected ErrOverflow, got %v", err)
	}
	if body != nil {
		t.Fatalf("a failed render must not return a partial body")
	}
}

func TestRenderAllUnsetIsAllBackground(t *testing.T) {
	rows := make([][]bool, 4)
	for y := range rows {
		rows[y] = make([]bool, 4)
	}
	m, err := qr.NewMatrix(rows, 1, qr.EccLow, qr.MaskAuto)
	if err != nil {
		t.Fatalf("NewMatrix failed: %v", err)
	}

	r, err := NewRaster(Config{Border: 1, Scale: 1})
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	body, err := r.Render(m)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("decoding the rendered PNG failed: %v", err)
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			if cr != 0xFFFF || cg != 0xFFFF || cb != 0xFFFF {
				t.Fatalf("pixel (%d, %d) is not background", x, y)
			}
		}
	}
}
