package session

import (
	"github.com/rocketscienceinc/othello-session/internal/entity"
)

// Snapshot is a read-only copy of the session handed to renderers and transports.
// Version grows with every change, so consumers can drop snapshots that arrive out of order.
type Snapshot struct {
	Version     uint64
	SessionID   string
	State       State
	Pending     bool
	Board       entity.BoardState
	Turn        entity.Side
	HumanPlayer entity.Side
	AIPlayer    entity.Side
	LastAction  *entity.Coord
	History     []entity.Step
	Err         error
	Fatal       bool
}

func (that Snapshot) Started() bool {
	return that.State != StateIdle
}

// Highlight returns the squares a renderer should mark: the legal options, but only while the human is to move.
func (that Snapshot) Highlight() []entity.Coord {
	if that.State != StateAwaitingHuman || that.Pending {
		return nil
	}
	return that.Board.Options()
}

func (that *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Version:     that.version,
		SessionID:   that.id,
		State:       that.state,
		Pending:     that.pending,
		Board:       that.board,
		Turn:        that.turn,
		HumanPlayer: that.human,
		AIPlayer:    that.human.Opponent(),
		LastAction:  copyCoord(that.lastAction),
		History:     that.history.All(),
		Err:         that.lastErr,
		Fatal:       that.fault != nil,
	}
}
