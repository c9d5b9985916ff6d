package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/ian-hamlin/qrgen/qr"
)

// ColorDepth is the raster canvas layout: 3 bytes per pixel, RGB.
const ColorDepth = 3

const (
	background = 0xFF
	foreground = 0x00
)

// Raster renders matrices to PNG bytes through a packed RGB byte canvas.
// The canvas is allocated per call and owned by that call alone.
type Raster struct {
	border int
	scale  int
}

var _ Renderer = (*Raster)(nil)

// NewRaster validates cfg and returns a raster renderer.
func NewRaster(cfg Config) (*Raster, error) {
	if cfg.Border < 0 {
		return nil, fmt.Errorf("render: border must be non-negative, got %d", cfg.Border)
	}
	if cfg.Scale < 1 {
		return nil, fmt.Errorf("render: scale must be positive, got %d", cfg.Scale)
	}
	return &Raster{border: cfg.Border, scale: cfg.Scale}, nil
}

// Render paints m onto a fresh canvas and encodes it as an 8-bit RGB PNG.
// Geometry failures abort the whole render.
func (r *Raster) Render(m *qr.Matrix) ([]byte, error) {
	pixels, err := PixelSize(m.Size(), r.border, r.scale)
	if err != nil {
		return nil, err
	}
	length, err := ByteLength(pixels, ColorDepth)
	if err != nil {
		return nil, err
	}

	canvas := make([]byte, length)
	for i := range canvas {
		canvas[i] = background
	}

	// Walk every pixel and map it back to module space. Coordinates that
	// land outside the matrix are the quiet zone and stay background.
	for y := 0; y < pixels; y++ {
		row := y * pixels * ColorDepth
		moduleY := y/r.scale - r.border
		for x := 0; x < pixels; x++ {
			if !m.Module(x/r.scale-r.border, moduleY) {
				continue
			}
			offset := row + x*ColorDepth
			canvas[offset] = foreground
			canvas[offset+1] = foreground
			canvas[offset+2] = foreground
		}
	}

	return encodeRaster(canvas, pixels)
}

// encodeRaster exposes the canvas as an image.Image and defers the PNG
// bitstream to the standard encoder.
func encodeRaster(canvas []byte, pixelSize int) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, &rgbImage{pix: canvas, side: pixelSize}); err != nil {
		return nil, fmt.Errorf("render: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// rgbImage is a read-only image view over a packed 3-byte-per-pixel
// canvas.
type rgbImage struct {
	pix  []byte
	side int
}

func (im *rgbImage) ColorModel() color.Model { return color.RGBAModel }

func (im *rgbImage) Bounds() image.Rectangle { return image.Rect(0, 0, im.side, im.side) }

func (im *rgbImage) At(x, y int) color.Color {
	offset := x*ColorDepth + y*im.side*ColorDepth
	return color.RGBA{im.pix[offset], im.pix[offset+1], im.pix[offset+2], 0xFF}
}

// Opaque lets the PNG encoder pick the 8-bit RGB color type without
// scanning the canvas.
func (im *rgbImage) Opaque() bool { return true }
