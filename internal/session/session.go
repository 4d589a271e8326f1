// Package session holds the game session state machine. It gates when a request may be sent to the
// move authority and applies each response atomically; the authority alone decides legality.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/authority"
	"github.com/rocketscienceinc/othello-session/internal/entity"
)

type State string

const (
	StateIdle          State = "idle"
	StateAwaitingHuman State = "awaiting_human"
	StateAwaitingAI    State = "awaiting_ai"
	StateFinished      State = "finished"
)

type moveAuthority interface {
	NewGame(ctx context.Context) (authority.Result, error)
	Play(ctx context.Context, request authority.MoveRequest) (authority.Result, error)
	Report(ctx context.Context, report authority.Report) error
}

// Listener receives a snapshot after every state change.
type Listener func(Snapshot)

type Option func(*Session)

func WithHumanSide(side entity.Side) Option {
	return func(s *Session) {
		if side.Valid() {
			s.human = side
		}
	}
}

func WithIDGenerator(generate func() string) Option {
	return func(s *Session) {
		s.newID = generate
	}
}

type Session struct {
	logger    *slog.Logger
	authority moveAuthority
	newID     func() string

	mu       sync.Mutex
	id       string
	state    State
	pending  bool
	starting bool
	fault    error
	lastErr  error
	version  uint64

	board      entity.BoardState
	turn       entity.Side
	human      entity.Side
	lastAction *entity.Coord
	history    entity.StepHistory

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// New creates an idle session showing the opening position, with the human playing Black.
func New(logger *slog.Logger, authority moveAuthority, opts ...Option) *Session {
	that := &Session{
		logger:    logger.With("component", "session"),
		authority: authority,
		newID:     uuid.NewString,
		state:     StateIdle,
		board:     entity.NewInitialBoard(),
		turn:      entity.SideBlack,
		human:     entity.SideBlack,
		listeners: make(map[int]Listener),
	}

	for _, opt := range opts {
		opt(that)
	}

	return that
}

// Restore rebuilds a session from its persisted record.
func Restore(logger *slog.Logger, authority moveAuthority, record entity.SessionRecord, opts ...Option) (*Session, error) {
	grid, err := entity.GridFromRows(record.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to restore board: %w", err)
	}

	board, err := entity.NewBoardState(grid, record.BlackScore, record.WhiteScore, record.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to restore board: %w", err)
	}

	human, err := entity.ParseSide(string(record.HumanPlayer))
	if err != nil {
		return nil, fmt.Errorf("failed to restore human side: %w", err)
	}

	turn, err := entity.ParseSide(string(record.Turn))
	if err != nil {
		return nil, fmt.Errorf("failed to restore turn: %w", err)
	}

	that := New(logger, authority, opts...)
	that.id = record.SessionID
	that.board = board
	that.human = human
	that.turn = turn
	that.lastAction = record.LastAction
	that.history = entity.NewStepHistory(record.Steps...)

	if record.Fatal {
		that.fault = fmt.Errorf("%w: restored from a failed session", apperror.ErrMalformedResponse)
		that.lastErr = that.fault
	}

	switch {
	case !record.Started:
		that.state = StateIdle
	case record.Finished:
		that.state = StateFinished
	default:
		that.state = that.playState()
	}

	return that, nil
}

// StartGame requests a fresh board. A previous session's in-flight request is not cancelled; its
// response is discarded once it arrives.
func (that *Session) StartGame(ctx context.Context) (Snapshot, error) {
	log := that.logger.With("method", "StartGame")

	that.mu.Lock()
	if that.starting {
		snapshot := that.snapshotLocked()
		that.mu.Unlock()
		return snapshot, apperror.ErrRequestPending
	}
	that.starting = true
	that.mu.Unlock()

	result, err := that.authority.NewGame(ctx)
	if err == nil && result.Finished {
		err = fmt.Errorf("%w: new game is already finished", apperror.ErrMalformedResponse)
	}

	that.mu.Lock()
	that.starting = false

	if err != nil {
		that.lastErr = err
		that.version++
		snapshot := that.snapshotLocked()
		that.mu.Unlock()

		log.Error("failed to start game", "error", err)
		that.notify(snapshot)

		return snapshot, fmt.Errorf("failed to start game: %w", err)
	}

	that.id = that.newID()
	that.pending = false
	that.fault = nil
	that.lastErr = nil
	that.board = result.Board
	that.turn = result.Turn
	that.lastAction = nil
	that.history = entity.StepHistory{}
	that.state = that.playState()
	that.version++
	snapshot := that.snapshotLocked()
	that.mu.Unlock()

	log.Info("game started", "sessionId", snapshot.SessionID, "human", snapshot.HumanPlayer, "turn", snapshot.Turn)
	that.notify(snapshot)

	return that.advance(ctx, snapshot)
}

// SetHumanSide assigns the human to a side. It is rejected while a game is running.
func (that *Session) SetHumanSide(side entity.Side) (Snapshot, error) {
	if !side.Valid() {
		return that.Snapshot(), fmt.Errorf("%w: %q", apperror.ErrInvalidSide, side)
	}

	that.mu.Lock()
	if that.state == StateAwaitingHuman || that.state == StateAwaitingAI {
		snapshot := that.snapshotLocked()
		that.mu.Unlock()
		return snapshot, apperror.ErrSideLocked
	}

	that.human = side
	that.version++
	snapshot := that.snapshotLocked()
	that.mu.Unlock()

	that.notify(snapshot)

	return snapshot, nil
}

// SubmitHumanMove sends the human's move. It is accepted only when the human is to move, no request
// is pending and coord is one of the current options; otherwise nothing is sent and state is unchanged.
func (that *Session) SubmitHumanMove(ctx context.Context, coord entity.Coord) (Snapshot, error) {
	log := that.logger.With("method", "SubmitHumanMove")

	that.mu.Lock()
	if err := that.checkTurnLocked(StateAwaitingHuman); err != nil {
		snapshot := that.snapshotLocked()
		that.mu.Unlock()
		log.Debug("move dropped", "coord", coord.String(), "reason", err)
		return snapshot, err
	}

	if !coord.InBoard() {
		snapshot := that.snapshotLocked()
		that.mu.Unlock()
		return snapshot, fmt.Errorf("%w: (%d,%d)", apperror.ErrOutOfBoard, coord.Row, coord.Col)
	}

	if !that.board.HasOption(coord) {
		snapshot := that.snapshotLocked()
		that.mu.Unlock()
		log.Debug("move dropped", "coord", coord.String(), "reason", apperror.ErrIllegalMove)
		return snapshot, apperror.ErrIllegalMove
	}

	action := coord
	request := that.requestLocked(&action)
	that.mu.Unlock()

	snapshot, err := that.exchange(ctx, request)
	if err != nil {
		return snapshot, err
	}

	return that.advance(ctx, snapshot)
}

// TriggerAIMove asks the authority to play the computer side. It runs automatically whenever the
// session enters StateAwaitingAI and may be called again to retry after a transport failure.
func (that *Session) TriggerAIMove(ctx context.Context) (Snapshot, error) {
	snapshot, err := that.playAI(ctx)
	if err != nil {
		return snapshot, err
	}

	return that.advance(ctx, snapshot)
}

func (that *Session) Snapshot() Snapshot {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.snapshotLocked()
}

func (that *Session) History() entity.StepHistory {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.NewStepHistory(that.history.All()...)
}

// Record returns the persistable form of the session.
func (that *Session) Record(clientID string) entity.SessionRecord {
	that.mu.Lock()
	defer that.mu.Unlock()

	return entity.SessionRecord{
		ClientID:    clientID,
		SessionID:   that.id,
		Started:     that.state != StateIdle,
		Finished:    that.state == StateFinished,
		Fatal:       that.fault != nil,
		HumanPlayer: that.human,
		Turn:        that.turn,
		Board:       that.board.Rows(),
		Options:     that.board.Options(),
		BlackScore:  that.board.BlackScore(),
		WhiteScore:  that.board.WhiteScore(),
		LastAction:  copyCoord(that.lastAction),
		Steps:       that.history.All(),
	}
}

// Subscribe registers a listener and returns a function that removes it.
func (that *Session) Subscribe(listener Listener) func() {
	that.listenersMu.Lock()
	defer that.listenersMu.Unlock()

	id := that.nextListener
	that.nextListener++
	that.listeners[id] = listener

	return func() {
		that.listenersMu.Lock()
		defer that.listenersMu.Unlock()

		delete(that.listeners, id)
	}
}

func (that *Session) playAI(ctx context.Context) (Snapshot, error) {
	that.mu.Lock()
	if err := that.checkTurnLocked(StateAwaitingAI); err != nil {
		snapshot := that.snapshotLocked()
		that.mu.Unlock()
		return snapshot, err
	}

	request := that.requestLocked(nil)
	that.mu.Unlock()

	return that.exchange(ctx, request)
}

// advance keeps the computer playing while it is to move. A forced pass can hand it several turns in a row.
func (that *Session) advance(ctx context.Context, snapshot Snapshot) (Snapshot, error) {
	var err error
	for snapshot.State == StateAwaitingAI {
		if snapshot, err = that.playAI(ctx); err != nil {
			return snapshot, err
		}
	}

	return snapshot, nil
}

// checkTurnLocked validates that a request for the wanted state may be sent now.
func (that *Session) checkTurnLocked(want State) error {
	switch {
	case that.state == StateIdle:
		return apperror.ErrGameIsNotStarted
	case that.state == StateFinished:
		return apperror.ErrGameFinished
	case that.fault != nil:
		return that.fault
	case that.pending:
		return apperror.ErrRequestPending
	case that.state != want:
		return apperror.ErrNotYourTurn
	}

	return nil
}

func (that *Session) requestLocked(action *entity.Coord) authority.MoveRequest {
	that.pending = true
	that.version++

	return authority.MoveRequest{
		SessionID: that.id,
		Player:    that.turn,
		Action:    action,
		Board:     that.board.Rows(),
	}
}

// exchange performs one authority call and applies its outcome.
func (that *Session) exchange(ctx context.Context, request authority.MoveRequest) (Snapshot, error) {
	log := that.logger.With("method", "exchange", "sessionId", request.SessionID, "player", request.Player)

	result, err := that.authority.Play(ctx, request)
	if err == nil && result.Action == nil {
		err = fmt.Errorf("%w: response without action", apperror.ErrMalformedResponse)
	}

	that.mu.Lock()
	if request.SessionID != that.id {
		snapshot := that.snapshotLocked()
		that.mu.Unlock()
		log.Debug("stale response discarded", "current", snapshot.SessionID)
		return snapshot, apperror.ErrStaleResponse
	}

	that.pending = false
	that.version++

	if err != nil {
		that.lastErr = err
		if errors.Is(err, apperror.ErrMalformedResponse) {
			that.fault = err
		}
		snapshot := that.snapshotLocked()
		that.mu.Unlock()

		log.Error("move request failed", "error", err, "retriable", authority.IsRetriable(err))
		that.notify(snapshot)

		return snapshot, fmt.Errorf("move request failed: %w", err)
	}

	that.lastErr = nil
	that.board = result.Board
	that.lastAction = copyCoord(result.Action)
	that.history.Append(entity.Step{Player: request.Player, Action: *result.Action})

	if result.Finished {
		that.state = StateFinished
	} else {
		that.turn = result.Turn
		that.state = that.playState()
	}

	snapshot := that.snapshotLocked()
	var report *authority.Report
	moves := that.history.Len()
	if snapshot.State == StateFinished {
		report = that.reportLocked()
	}
	that.mu.Unlock()

	that.notify(snapshot)

	if report != nil {
		log.Info("game finished", "result", report.Result, "moves", moves, "notation", report.Notation)
		if err = that.authority.Report(ctx, *report); err != nil {
			log.Warn("failed to report game", "error", err)
		}
	}

	return snapshot, nil
}

func (that *Session) reportLocked() *authority.Report {
	result := string(that.board.Winner())
	if that.board.Winner() == entity.SideNone {
		result = "draw"
	}

	return &authority.Report{
		SessionID: that.id,
		Steps:     that.history.All(),
		Notation:  that.history.Notation(),
		Result:    result,
	}
}

func (that *Session) playState() State {
	if that.turn == that.human {
		return StateAwaitingHuman
	}
	return StateAwaitingAI
}

func (that *Session) notify(snapshot Snapshot) {
	that.listenersMu.Lock()
	listeners := make([]Listener, 0, len(that.listeners))
	for _, listener := range that.listeners {
		listeners = append(listeners, listener)
	}
	that.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(snapshot)
	}
}

func copyCoord(coord *entity.Coord) *entity.Coord {
	if coord == nil {
		return nil
	}
	c := *coord
	return &c
}
