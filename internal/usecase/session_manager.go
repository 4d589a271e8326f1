package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/authority"
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/input"
	"github.com/rocketscienceinc/othello-session/internal/session"
)

const checkpointTimeout = 2 * time.Second

type sessionRepo interface {
	Save(ctx context.Context, record entity.SessionRecord) error
	GetByID(ctx context.Context, clientID string) (entity.SessionRecord, error)
	DeleteByID(ctx context.Context, clientID string) error
}

type moveAuthority interface {
	NewGame(ctx context.Context) (authority.Result, error)
	Play(ctx context.Context, request authority.MoveRequest) (authority.Result, error)
	Report(ctx context.Context, report authority.Report) error
}

// SessionManager keeps one game session per browser client and checkpoints it after every change.
// Sessions left idle for longer than the idle ttl are dropped from memory; the checkpoint store
// still holds them.
type SessionManager struct {
	logger    *slog.Logger
	repo      sessionRepo
	authority moveAuthority
	mapper    input.Mapper
	idleTTL   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	session     *session.Session
	unsubscribe func()
	lastAccess  time.Time
	streams     int

	checkpointMu sync.Mutex
}

// NewSessionManager creates a manager. An idleTTL of zero keeps sessions in memory forever.
func NewSessionManager(logger *slog.Logger, repo sessionRepo, authority moveAuthority, mapper input.Mapper, idleTTL time.Duration) *SessionManager {
	return &SessionManager{
		logger:    logger.With("component", "session_manager"),
		repo:      repo,
		authority: authority,
		mapper:    mapper,
		idleTTL:   idleTTL,
		now:       time.Now,
		sessions:  make(map[string]*entry),
	}
}

// GetOrCreate returns the client's session, restoring it from the checkpoint store if this process has
// not seen it yet. An empty clientID gets a fresh one.
func (that *SessionManager) GetOrCreate(ctx context.Context, clientID string) (string, *session.Session, error) {
	log := that.logger.With("method", "GetOrCreate")

	if clientID == "" {
		clientID = uuid.NewString()
	}

	if existing := that.lookup(clientID); existing != nil {
		return clientID, existing, nil
	}

	loaded, err := that.load(ctx, clientID)
	if err != nil {
		return "", nil, err
	}

	that.mu.Lock()
	if current, ok := that.sessions[clientID]; ok {
		// another request loaded the same client first
		current.lastAccess = that.now()
		that.mu.Unlock()
		return clientID, current.session, nil
	}

	added := &entry{session: loaded, lastAccess: that.now()}
	added.unsubscribe = loaded.Subscribe(func(session.Snapshot) {
		that.checkpoint(clientID, added)
	})
	that.sessions[clientID] = added
	that.mu.Unlock()

	// a checkpoint taken while the computer was to move has no request in flight anymore
	if loaded.Snapshot().State == session.StateAwaitingAI {
		if _, err = loaded.TriggerAIMove(ctx); err != nil {
			log.Warn("failed to resume computer move", "clientId", clientID, "error", err)
		}
	}

	return clientID, loaded, nil
}

// Run drops idle sessions every interval until ctx is done.
func (that *SessionManager) Run(ctx context.Context, interval time.Duration) {
	if that.idleTTL <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.EvictIdle()
		}
	}
}

// EvictIdle drops every session not touched within the idle ttl. Sessions with a request in flight or
// an open stream stay. It returns the number of sessions dropped.
func (that *SessionManager) EvictIdle() int {
	if that.idleTTL <= 0 {
		return 0
	}

	that.mu.Lock()
	now := that.now()
	var evicted []*entry
	for clientID, current := range that.sessions {
		if !that.expiredLocked(current, now) {
			continue
		}
		delete(that.sessions, clientID)
		evicted = append(evicted, current)
	}
	that.mu.Unlock()

	for _, current := range evicted {
		current.unsubscribe()
	}

	if len(evicted) > 0 {
		that.logger.Debug("idle sessions evicted", "count", len(evicted))
	}

	return len(evicted)
}

func (that *SessionManager) lookup(clientID string) *session.Session {
	that.mu.Lock()
	defer that.mu.Unlock()

	current, ok := that.sessions[clientID]
	if !ok {
		return nil
	}

	now := that.now()
	if that.expiredLocked(current, now) {
		delete(that.sessions, clientID)
		current.unsubscribe()
		return nil
	}

	current.lastAccess = now
	return current.session
}

func (that *SessionManager) expiredLocked(current *entry, now time.Time) bool {
	if that.idleTTL <= 0 || current.streams > 0 {
		return false
	}

	if now.Sub(current.lastAccess) < that.idleTTL {
		return false
	}

	return !current.session.Snapshot().Pending
}

func (that *SessionManager) StartGame(ctx context.Context, clientID string) (session.Snapshot, error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return session.Snapshot{}, err
	}

	if err = that.repo.DeleteByID(ctx, clientID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		that.logger.Warn("failed to delete previous checkpoint", "clientId", clientID, "error", err)
	}

	return gameSession.StartGame(ctx)
}

func (that *SessionManager) SetSide(ctx context.Context, clientID, side string) (session.Snapshot, error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return session.Snapshot{}, err
	}

	parsed, err := entity.ParseSide(side)
	if err != nil {
		return gameSession.Snapshot(), err
	}

	return gameSession.SetHumanSide(parsed)
}

// Click maps a pixel position on the rendered board to a square and submits it as the human's move.
func (that *SessionManager) Click(ctx context.Context, clientID string, x, y int) (session.Snapshot, error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return session.Snapshot{}, err
	}

	coord, ok := that.mapper.Map(x, y)
	if !ok {
		return gameSession.Snapshot(), fmt.Errorf("%w: pixel (%d,%d)", apperror.ErrOutOfBoard, x, y)
	}

	return gameSession.SubmitHumanMove(ctx, coord)
}

func (that *SessionManager) Move(ctx context.Context, clientID string, coord entity.Coord) (session.Snapshot, error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return session.Snapshot{}, err
	}

	return gameSession.SubmitHumanMove(ctx, coord)
}

// RetryAI repeats the computer's move request after a transport failure.
func (that *SessionManager) RetryAI(ctx context.Context, clientID string) (session.Snapshot, error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return session.Snapshot{}, err
	}

	return gameSession.TriggerAIMove(ctx)
}

func (that *SessionManager) State(ctx context.Context, clientID string) (session.Snapshot, error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return session.Snapshot{}, err
	}

	return gameSession.Snapshot(), nil
}

func (that *SessionManager) History(ctx context.Context, clientID string) (entity.StepHistory, error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return entity.StepHistory{}, err
	}

	return gameSession.History(), nil
}

// Subscribe streams the client's snapshots to listener until the returned function is called. The
// session stays in memory while the stream is open.
func (that *SessionManager) Subscribe(ctx context.Context, clientID string, listener session.Listener) (func(), error) {
	_, gameSession, err := that.GetOrCreate(ctx, clientID)
	if err != nil {
		return nil, err
	}

	that.mu.Lock()
	current, ok := that.sessions[clientID]
	if ok && current.session == gameSession {
		current.streams++
	}
	that.mu.Unlock()

	unsubscribe := gameSession.Subscribe(listener)

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			if !ok {
				return
			}

			that.mu.Lock()
			current.streams--
			current.lastAccess = that.now()
			that.mu.Unlock()
		})
	}, nil
}

func (that *SessionManager) load(ctx context.Context, clientID string) (*session.Session, error) {
	log := that.logger.With("method", "load", "clientId", clientID)

	record, err := that.repo.GetByID(ctx, clientID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return session.New(that.logger, that.authority), nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	restored, err := session.Restore(that.logger, that.authority, record)
	if err != nil {
		log.Warn("discarding unreadable checkpoint", "error", err)
		return session.New(that.logger, that.authority), nil
	}

	log.Info("session restored", "sessionId", record.SessionID)

	return restored, nil
}

func (that *SessionManager) checkpoint(clientID string, current *entry) {
	current.checkpointMu.Lock()
	defer current.checkpointMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), checkpointTimeout)
	defer cancel()

	if err := that.repo.Save(ctx, current.session.Record(clientID)); err != nil {
		that.logger.Error("failed to checkpoint session", "clientId", clientID, "error", err)
	}
}
