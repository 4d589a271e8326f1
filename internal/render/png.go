// Package render draws session snapshots: as a PNG for browsers and onto a tcell screen for terminals.
package render

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/input"
	"github.com/rocketscienceinc/othello-session/internal/session"
)

const statusHeight = 24

// PNG draws the board with the geometry the click mapper uses, so a pixel on the image maps back to its square.
// Squares in highlight get a marker; the last action gets a red dot.
func PNG(geometry input.Mapper, snapshot session.Snapshot, highlight []entity.Coord) ([]byte, error) {
	if geometry.CellWidth <= 0 || geometry.CellHeight <= 0 {
		return nil, fmt.Errorf("invalid cell size %dx%d", geometry.CellWidth, geometry.CellHeight)
	}

	width := 2*geometry.OffsetX + entity.BoardSize*geometry.CellWidth
	height := 2*geometry.OffsetY + entity.BoardSize*geometry.CellHeight + statusHeight

	cw, ch := float64(geometry.CellWidth), float64(geometry.CellHeight)
	radius := 0.4 * min(cw, ch)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	x0, y0 := geometry.Origin(entity.Coord{})
	dc.SetRGB(0.13, 0.55, 0.13)
	dc.DrawRectangle(float64(x0), float64(y0), cw*entity.BoardSize, ch*entity.BoardSize)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	for i := 0; i <= entity.BoardSize; i++ {
		dc.DrawLine(float64(x0)+cw*float64(i), float64(y0), float64(x0)+cw*float64(i), float64(y0)+ch*entity.BoardSize)
		dc.DrawLine(float64(x0), float64(y0)+ch*float64(i), float64(x0)+cw*entity.BoardSize, float64(y0)+ch*float64(i))
	}
	dc.Stroke()

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			coord := entity.Coord{Row: row, Col: col}
			cx, cy := center(geometry, coord)

			switch snapshot.Board.Cell(coord) {
			case entity.Black:
				dc.SetRGB(0, 0, 0)
			case entity.White:
				dc.SetRGB(1, 1, 1)
			default:
				continue
			}

			dc.DrawCircle(cx, cy, radius)
			dc.Fill()
		}
	}

	dc.SetRGBA(1, 1, 0, 0.8)
	for _, coord := range highlight {
		cx, cy := center(geometry, coord)
		dc.DrawCircle(cx, cy, radius/4)
		dc.Fill()
	}

	if snapshot.LastAction != nil {
		cx, cy := center(geometry, *snapshot.LastAction)
		dc.SetRGB(0.85, 0.1, 0.1)
		dc.DrawCircle(cx, cy, radius/5)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored(Status(snapshot), float64(width)/2, float64(height-statusHeight/2), 0.5, 0.5)

	var b bytes.Buffer
	if err := dc.EncodePNG(&b); err != nil {
		return nil, fmt.Errorf("failed to encode board: %w", err)
	}

	return b.Bytes(), nil
}

func center(geometry input.Mapper, coord entity.Coord) (float64, float64) {
	x, y := geometry.Origin(coord)
	return float64(x) + float64(geometry.CellWidth)/2, float64(y) + float64(geometry.CellHeight)/2
}
