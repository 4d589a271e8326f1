package render

import (
	"fmt"

	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/session"
)

// Status is the one-line summary shown under the board.
func Status(snapshot session.Snapshot) string {
	scores := fmt.Sprintf("Black %d  White %d", snapshot.Board.BlackScore(), snapshot.Board.WhiteScore())

	switch {
	case snapshot.Fatal:
		return scores + "  |  invalid response, start a new game"
	case !snapshot.Started():
		return scores + "  |  press new game"
	case snapshot.State == session.StateFinished:
		winner := snapshot.Board.Winner()
		if winner == entity.SideNone {
			return scores + "  |  draw"
		}
		return fmt.Sprintf("%s  |  %s wins", scores, winner)
	case snapshot.Pending || snapshot.State == session.StateAwaitingAI:
		if snapshot.Err != nil && !snapshot.Pending {
			return scores + "  |  computer unreachable, retry"
		}
		return scores + "  |  computer is thinking"
	default:
		return fmt.Sprintf("%s  |  your move (%s)", scores, snapshot.HumanPlayer)
	}
}
