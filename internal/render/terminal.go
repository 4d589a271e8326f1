package render

import (
	"strconv"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/input"
	"github.com/rocketscienceinc/othello-session/internal/session"
)

const (
	hozRune   = '─'
	verRune   = '│'
	crossRune = '┼'
	discRune  = '●'
	hintRune  = '·'
	space     = ' '
)

// Terminal draws snapshots onto a tcell screen. Each square is CellWidth columns by CellHeight rows of the
// geometry; its first column and row hold the grid lines.
type Terminal struct {
	screen   tcell.Screen
	style    tcell.Style
	geometry input.Mapper
}

func NewTerminal(screen tcell.Screen, geometry input.Mapper) *Terminal {
	return &Terminal{
		screen:   screen,
		style:    tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite),
		geometry: geometry,
	}
}

// Geometry is the mapping a mouse handler uses to turn screen cells into squares.
func (that *Terminal) Geometry() input.Mapper {
	return that.geometry
}

func (that *Terminal) Render(snapshot session.Snapshot, highlight []entity.Coord) {
	that.screen.Clear()

	that.drawGrid()
	that.drawLabels()

	for row := 0; row < entity.BoardSize; row++ {
		for col := 0; col < entity.BoardSize; col++ {
			coord := entity.Coord{Row: row, Col: col}
			style := that.squareStyle()

			switch snapshot.Board.Cell(coord) {
			case entity.Black:
				style = style.Foreground(tcell.ColorBlack)
			case entity.White:
				style = style.Foreground(tcell.ColorWhite)
			default:
				continue
			}

			if snapshot.LastAction != nil && *snapshot.LastAction == coord {
				style = style.Bold(true).Underline(true)
			}

			x, y := that.center(coord)
			that.screen.SetContent(x, y, discRune, nil, style)
		}
	}

	for _, coord := range highlight {
		x, y := that.center(coord)
		that.screen.SetContent(x, y, hintRune, nil, that.squareStyle().Foreground(tcell.ColorYellow))
	}

	bottom := that.geometry.OffsetY + entity.BoardSize*that.geometry.CellHeight + 1
	that.print(that.geometry.OffsetX, bottom+1, Status(snapshot), that.style)
	that.print(that.geometry.OffsetX, bottom+3, "<n> new game  <s> switch side  <r> retry  <q> quit", that.style)

	if snapshot.Err != nil {
		that.print(that.geometry.OffsetX, bottom+4, snapshot.Err.Error(), that.style.Foreground(tcell.ColorRed))
	}

	that.screen.Show()
}

func (that *Terminal) drawGrid() {
	style := that.squareStyle().Foreground(tcell.ColorGrey)
	x0, y0 := that.geometry.OffsetX, that.geometry.OffsetY
	width := entity.BoardSize * that.geometry.CellWidth
	height := entity.BoardSize * that.geometry.CellHeight

	for h := 0; h <= height; h++ {
		for w := 0; w <= width; w++ {
			onRow := h%that.geometry.CellHeight == 0
			onCol := w%that.geometry.CellWidth == 0

			r := rune(space)
			switch {
			case onRow && onCol:
				r = crossRune
			case onRow:
				r = hozRune
			case onCol:
				r = verRune
			}

			that.screen.SetContent(x0+w, y0+h, r, nil, style)
		}
	}
}

func (that *Terminal) drawLabels() {
	for i := 0; i < entity.BoardSize; i++ {
		x, _ := that.center(entity.Coord{Col: i})
		that.print(x, that.geometry.OffsetY-1, strconv.Itoa(i+1), that.style)

		_, y := that.center(entity.Coord{Row: i})
		that.print(that.geometry.OffsetX-2, y, string(rune('a'+i)), that.style)
	}
}

func (that *Terminal) squareStyle() tcell.Style {
	return that.style.Background(tcell.ColorGreen)
}

// center is the screen cell inside a square, past its grid lines.
func (that *Terminal) center(coord entity.Coord) (int, int) {
	x, y := that.geometry.Origin(coord)
	return x + (that.geometry.CellWidth+1)/2, y + (that.geometry.CellHeight+1)/2
}

func (that *Terminal) print(x, y int, str string, style tcell.Style) {
	for _, c := range str {
		var comb []rune
		w := runewidth.RuneWidth(c)
		if w == 0 {
			comb = []rune{c}
			c = ' '
			w = 1
		}
		that.screen.SetContent(x, y, c, comb, style)
		x += w
	}
}
