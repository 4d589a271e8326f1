package render

import (
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/session"
)

// View is the JSON form of a snapshot sent to browser clients.
type View struct {
	Version     uint64         `json:"version"`
	SessionID   string         `json:"sessionId,omitempty"`
	State       session.State  `json:"state"`
	Pending     bool           `json:"pending"`
	Board       [][]int        `json:"board"`
	BlackScore  int            `json:"blackScore"`
	WhiteScore  int            `json:"whiteScore"`
	Turn        entity.Side    `json:"turn"`
	HumanPlayer entity.Side    `json:"humanPlayer"`
	AIPlayer    entity.Side    `json:"aiPlayer"`
	Highlight   []entity.Coord `json:"highlight"`
	LastAction  *entity.Coord  `json:"lastAction,omitempty"`
	History     []entity.Step  `json:"history"`
	Winner      entity.Side    `json:"winner,omitempty"`
	Status      string         `json:"status"`
	Error       string         `json:"error,omitempty"`
	Fatal       bool           `json:"fatal"`
}

func NewView(snapshot session.Snapshot) View {
	view := View{
		Version:     snapshot.Version,
		SessionID:   snapshot.SessionID,
		State:       snapshot.State,
		Pending:     snapshot.Pending,
		Board:       snapshot.Board.Rows(),
		BlackScore:  snapshot.Board.BlackScore(),
		WhiteScore:  snapshot.Board.WhiteScore(),
		Turn:        snapshot.Turn,
		HumanPlayer: snapshot.HumanPlayer,
		AIPlayer:    snapshot.AIPlayer,
		Highlight:   snapshot.Highlight(),
		LastAction:  snapshot.LastAction,
		History:     snapshot.History,
		Status:      Status(snapshot),
		Fatal:       snapshot.Fatal,
	}

	if view.Highlight == nil {
		view.Highlight = []entity.Coord{}
	}

	if view.History == nil {
		view.History = []entity.Step{}
	}

	if snapshot.State == session.StateFinished {
		view.Winner = snapshot.Board.Winner()
	}

	if snapshot.Err != nil {
		view.Error = snapshot.Err.Error()
	}

	return view
}
