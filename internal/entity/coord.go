package entity

import (
	"encoding/json"
	"fmt"
)

const BoardSize = 8

// Coord addresses a board square. On the wire it is the pair [row, col].
type Coord struct {
	Row int
	Col int
}

func (that Coord) InBoard() bool {
	return that.Row >= 0 && that.Row < BoardSize && that.Col >= 0 && that.Col < BoardSize
}

// String renders the square as a row letter followed by a 1-based column, e.g. (2,3) is "c4".
func (that Coord) String() string {
	return fmt.Sprintf("%c%d", rune('a'+that.Row), that.Col+1)
}

func (that Coord) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{that.Row, that.Col})
}

func (that *Coord) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to decode coordinate: %w", err)
	}

	if len(pair) != 2 {
		return fmt.Errorf("coordinate must have 2 elements, got %d", len(pair))
	}

	that.Row, that.Col = pair[0], pair[1]

	return nil
}
