package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/authority"
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/stretchr/testify/require"
)

type playFunc func(request authority.MoveRequest) (authority.Result, error)

// fakeAuthority replays scripted responses in order and records every request.
type fakeAuthority struct {
	mu       sync.Mutex
	newGames []authority.Result
	plays    []playFunc
	requests []authority.MoveRequest
	reports  []authority.Report
	newGameN int
}

func (that *fakeAuthority) NewGame(_ context.Context) (authority.Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if len(that.newGames) == 0 {
		return authority.Result{}, fmt.Errorf("%w: no scripted new game", apperror.ErrTransportFailure)
	}

	that.newGameN++
	result := that.newGames[0]
	if len(that.newGames) > 1 {
		that.newGames = that.newGames[1:]
	}

	return result, nil
}

func (that *fakeAuthority) Play(_ context.Context, request authority.MoveRequest) (authority.Result, error) {
	that.mu.Lock()
	that.requests = append(that.requests, request)
	if len(that.plays) == 0 {
		that.mu.Unlock()
		return authority.Result{}, fmt.Errorf("%w: no scripted play", apperror.ErrTransportFailure)
	}
	next := that.plays[0]
	that.plays = that.plays[1:]
	that.mu.Unlock()

	return next(request)
}

func (that *fakeAuthority) Report(_ context.Context, report authority.Report) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.reports = append(that.reports, report)

	return nil
}

func (that *fakeAuthority) script(plays ...playFunc) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.plays = append(that.plays, plays...)
}

func (that *fakeAuthority) Requests() []authority.MoveRequest {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]authority.MoveRequest(nil), that.requests...)
}

func (that *fakeAuthority) Reports() []authority.Report {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]authority.Report(nil), that.reports...)
}

func respond(result authority.Result) playFunc {
	return func(authority.MoveRequest) (authority.Result, error) {
		return result, nil
	}
}

func fail(err error) playFunc {
	return func(authority.MoveRequest) (authority.Result, error) {
		return authority.Result{}, err
	}
}

// blockUntil signals started when the request arrives and answers once release is closed.
func blockUntil(started chan<- struct{}, release <-chan struct{}, result authority.Result) playFunc {
	return func(authority.MoveRequest) (authority.Result, error) {
		close(started)
		<-release
		return result, nil
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
}

func newTestSession(t *testing.T, fake *fakeAuthority, opts ...Option) *Session {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithIDGenerator(sequentialIDs())}, opts...)

	return New(logger, fake, opts...)
}

func buildResult(t *testing.T, grid entity.Grid, turn entity.Side, options []entity.Coord, action *entity.Coord, finished bool) authority.Result {
	t.Helper()

	var blacks, whites int
	for _, row := range grid {
		for _, cell := range row {
			switch cell {
			case entity.Black:
				blacks++
			case entity.White:
				whites++
			}
		}
	}

	board, err := entity.NewBoardState(grid, blacks, whites, options)
	require.NoError(t, err)

	return authority.Result{Board: board, Turn: turn, Action: action, Finished: finished}
}

func openingResult(t *testing.T) authority.Result {
	t.Helper()

	board := entity.NewInitialBoard()
	return buildResult(t, board.Grid(), entity.SideBlack, board.Options(), nil, false)
}

// blackC4 is the position after black plays (2,3), flipping (3,3).
func blackC4(t *testing.T) authority.Result {
	t.Helper()

	grid := entity.NewInitialBoard().Grid()
	grid[2][3] = entity.Black
	grid[3][3] = entity.Black

	return buildResult(t, grid, entity.SideWhite,
		[]entity.Coord{{Row: 2, Col: 2}, {Row: 2, Col: 4}, {Row: 4, Col: 2}},
		&entity.Coord{Row: 2, Col: 3}, false)
}

// whiteC3 follows blackC4 with white playing (2,2), flipping (3,3) back.
func whiteC3(t *testing.T) authority.Result {
	t.Helper()

	grid := entity.NewInitialBoard().Grid()
	grid[2][3] = entity.Black
	grid[2][2] = entity.White

	return buildResult(t, grid, entity.SideBlack,
		[]entity.Coord{{Row: 4, Col: 5}, {Row: 5, Col: 4}},
		&entity.Coord{Row: 2, Col: 2}, false)
}
