package entity

import (
	"fmt"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
)

// Cell is the content of one board square. The numeric values are the wire encoding.
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
)

func (that Cell) Valid() bool {
	return that <= White
}

// Side is one of the two players. SideNone only appears on the wire, where it marks a finished game.
type Side string

const (
	SideBlack Side = "black"
	SideWhite Side = "white"
	SideNone  Side = "none"
)

func ParseSide(value string) (Side, error) {
	switch side := Side(value); side {
	case SideBlack, SideWhite:
		return side, nil
	default:
		return "", fmt.Errorf("%w: %q", apperror.ErrInvalidSide, value)
	}
}

func (that Side) Valid() bool {
	return that == SideBlack || that == SideWhite
}

func (that Side) Opponent() Side {
	switch that {
	case SideBlack:
		return SideWhite
	case SideWhite:
		return SideBlack
	default:
		return SideNone
	}
}

func (that Side) Cell() Cell {
	switch that {
	case SideBlack:
		return Black
	case SideWhite:
		return White
	default:
		return Empty
	}
}

// Sign is the prefix used for the side in move notation.
func (that Side) Sign() string {
	if that == SideBlack {
		return "+"
	}
	return "-"
}
