package authority

import (
	"github.com/rocketscienceinc/othello-session/internal/entity"
)

// MoveRequest is sent for every turn. Action is nil when the computer is to move.
type MoveRequest struct {
	SessionID string        `json:"sessionId"`
	Player    entity.Side   `json:"player"`
	Action    *entity.Coord `json:"action,omitempty"`
	Board     [][]int       `json:"board"`
}

// Report summarises a finished game.
type Report struct {
	SessionID string        `json:"sessionId"`
	Steps     []entity.Step `json:"steps"`
	Notation  string        `json:"notation"`
	Result    string        `json:"result"`
}

// boardResponse is the payload shared by the new-game and move endpoints.
type boardResponse struct {
	Board      [][]int        `json:"board"`
	Options    []entity.Coord `json:"options"`
	BlackScore int            `json:"blackScore"`
	WhiteScore int            `json:"whiteScore"`
	Turn       string         `json:"turn"`
	Action     *entity.Coord  `json:"action,omitempty"`
	Finished   bool           `json:"finished,omitempty"`
}

// Result is a validated authority response.
type Result struct {
	Board    entity.BoardState
	Turn     entity.Side
	Action   *entity.Coord
	Finished bool
}
