// Package input maps raw pointer positions onto board squares.
package input

import (
	"github.com/rocketscienceinc/othello-session/internal/entity"
)

// Mapper describes the rendering surface: the top-left offset of the board and the size of one square.
// Width and height differ on a terminal, where a character cell is taller than it is wide.
type Mapper struct {
	OffsetX    int
	OffsetY    int
	CellWidth  int
	CellHeight int
}

func NewMapper(offsetX, offsetY, cellWidth, cellHeight int) Mapper {
	return Mapper{
		OffsetX:    offsetX,
		OffsetY:    offsetY,
		CellWidth:  cellWidth,
		CellHeight: cellHeight,
	}
}

// Map converts a pointer position to a board coordinate. Positions outside the board report false.
func (that Mapper) Map(x, y int) (entity.Coord, bool) {
	if that.CellWidth <= 0 || that.CellHeight <= 0 {
		return entity.Coord{}, false
	}

	dx, dy := x-that.OffsetX, y-that.OffsetY
	if dx < 0 || dy < 0 {
		return entity.Coord{}, false
	}

	coord := entity.Coord{Row: dy / that.CellHeight, Col: dx / that.CellWidth}
	if !coord.InBoard() {
		return entity.Coord{}, false
	}

	return coord, true
}

// Origin returns the top-left surface position of a square.
func (that Mapper) Origin(coord entity.Coord) (int, int) {
	return that.OffsetX + coord.Col*that.CellWidth, that.OffsetY + coord.Row*that.CellHeight
}
