package entity

import (
	"fmt"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
)

const cellCount = BoardSize * BoardSize

// Grid is the row-major 8x8 matrix of cells.
type Grid [BoardSize][BoardSize]Cell

// BoardState is an immutable snapshot of one turn: grid, scores and the legal destinations for the
// side to move. It is only built by NewInitialBoard or NewBoardState, and is replaced, never mutated.
type BoardState struct {
	grid       Grid
	blackScore int
	whiteScore int
	options    []Coord
}

// NewInitialBoard returns the canonical opening position with Black to move.
func NewInitialBoard() BoardState {
	var grid Grid

	mid := BoardSize / 2
	grid[mid-1][mid-1], grid[mid][mid] = White, White
	grid[mid-1][mid], grid[mid][mid-1] = Black, Black

	return BoardState{
		grid:       grid,
		blackScore: 2,
		whiteScore: 2,
		options: []Coord{
			{Row: 2, Col: 3},
			{Row: 3, Col: 2},
			{Row: 4, Col: 5},
			{Row: 5, Col: 4},
		},
	}
}

// NewBoardState validates externally supplied board data. Any violation is an ErrMalformedResponse.
func NewBoardState(grid Grid, blackScore, whiteScore int, options []Coord) (BoardState, error) {
	if blackScore < 0 || whiteScore < 0 {
		return BoardState{}, fmt.Errorf("%w: negative score %d/%d", apperror.ErrMalformedResponse, blackScore, whiteScore)
	}

	var blacks, whites int
	for row := range grid {
		for col, cell := range grid[row] {
			switch cell {
			case Empty:
			case Black:
				blacks++
			case White:
				whites++
			default:
				return BoardState{}, fmt.Errorf("%w: cell (%d,%d) has value %d", apperror.ErrMalformedResponse, row, col, cell)
			}
		}
	}

	if blacks != blackScore || whites != whiteScore {
		return BoardState{}, fmt.Errorf("%w: scores %d/%d do not match board %d/%d",
			apperror.ErrMalformedResponse, blackScore, whiteScore, blacks, whites)
	}

	seen := make(map[Coord]struct{}, len(options))
	for _, option := range options {
		if !option.InBoard() {
			return BoardState{}, fmt.Errorf("%w: option %v outside the board", apperror.ErrMalformedResponse, option)
		}

		if grid[option.Row][option.Col] != Empty {
			return BoardState{}, fmt.Errorf("%w: option %v is not empty", apperror.ErrMalformedResponse, option)
		}

		if _, ok := seen[option]; ok {
			return BoardState{}, fmt.Errorf("%w: duplicate option %v", apperror.ErrMalformedResponse, option)
		}
		seen[option] = struct{}{}
	}

	return BoardState{
		grid:       grid,
		blackScore: blackScore,
		whiteScore: whiteScore,
		options:    append([]Coord(nil), options...),
	}, nil
}

// GridFromRows converts the wire representation, checking dimensions and cell values.
func GridFromRows(rows [][]int) (Grid, error) {
	var grid Grid

	if len(rows) != BoardSize {
		return grid, fmt.Errorf("%w: board has %d rows", apperror.ErrMalformedResponse, len(rows))
	}

	for row, cells := range rows {
		if len(cells) != BoardSize {
			return grid, fmt.Errorf("%w: row %d has %d cells", apperror.ErrMalformedResponse, row, len(cells))
		}

		for col, value := range cells {
			cell := Cell(value)
			if value < 0 || int(cell) != value || !cell.Valid() {
				return grid, fmt.Errorf("%w: cell (%d,%d) has value %d", apperror.ErrMalformedResponse, row, col, value)
			}
			grid[row][col] = cell
		}
	}

	return grid, nil
}

func (that BoardState) Grid() Grid {
	return that.grid
}

// Rows returns the wire representation of the grid.
func (that BoardState) Rows() [][]int {
	rows := make([][]int, BoardSize)
	for row := range that.grid {
		rows[row] = make([]int, BoardSize)
		for col, cell := range that.grid[row] {
			rows[row][col] = int(cell)
		}
	}
	return rows
}

func (that BoardState) Cell(coord Coord) Cell {
	if !coord.InBoard() {
		return Empty
	}
	return that.grid[coord.Row][coord.Col]
}

func (that BoardState) BlackScore() int {
	return that.blackScore
}

func (that BoardState) WhiteScore() int {
	return that.whiteScore
}

func (that BoardState) Options() []Coord {
	return append([]Coord(nil), that.options...)
}

func (that BoardState) HasOption(coord Coord) bool {
	for _, option := range that.options {
		if option == coord {
			return true
		}
	}
	return false
}

func (that BoardState) IsFull() bool {
	return that.blackScore+that.whiteScore == cellCount
}

// Winner returns the side with more discs, or SideNone on a draw.
func (that BoardState) Winner() Side {
	switch {
	case that.blackScore > that.whiteScore:
		return SideBlack
	case that.whiteScore > that.blackScore:
		return SideWhite
	default:
		return SideNone
	}
}
