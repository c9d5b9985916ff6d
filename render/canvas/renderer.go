// Package canvasrenderer serializes QR matrices to SVG markup via
// github.com/tdewolff/canvas.
package canvasrenderer

import (
	"bytes"
	"fmt"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ian-hamlin/qrgen/qr"
	"github.com/ian-hamlin/qrgen/render"
)

// Renderer draws one unit square per set module, offset by the quiet
// zone. The markup is deterministic for a given matrix and border.
type Renderer struct {
	border int
}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer validates cfg and returns a vector renderer. Only the
// border is used; scale is a raster concern.
func NewRenderer(cfg render.Config) (*Renderer, error) {
	if cfg.Border < 0 {
		return nil, fmt.Errorf("render: border must be non-negative, got %d", cfg.Border)
	}
	return &Renderer{border: cfg.Border}, nil
}

// Render returns the complete SVG document for m.
func (r *Renderer) Render(m *qr.Matrix) ([]byte, error) {
	side := float64(m.Size() + 2*r.border)

	c := canvas.New(side, side)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // matrix rows grow downward

	ctx.SetFillColor(canvas.White)
	ctx.DrawPath(0, 0, canvas.Rectangle(side, side))

	ctx.SetFillColor(canvas.Black)
	for y := 0; y < m.Size(); y++ {
		for x := 0; x < m.Size(); x++ {
			if m.Module(x, y) {
				ctx.DrawPath(float64(x+r.border), float64(y+r.border), canvas.Rectangle(1, 1))
			}
		}
	}

	var buf bytes.Buffer
	w := svg.New(&buf, side, side, nil)
	c.RenderTo(w)
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("render: write svg: %w", err)
	}
	return buf.Bytes(), nil
}
