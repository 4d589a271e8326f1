// Package websocket streams session snapshots to browsers and accepts game commands over the same connection.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/render"
	"github.com/rocketscienceinc/othello-session/internal/session"
	"github.com/rocketscienceinc/othello-session/pkg/handlers"
)

const sendBuffer = 16

type sessionManager interface {
	StartGame(ctx context.Context, clientID string) (session.Snapshot, error)
	SetSide(ctx context.Context, clientID, side string) (session.Snapshot, error)
	Click(ctx context.Context, clientID string, x, y int) (session.Snapshot, error)
	Move(ctx context.Context, clientID string, coord entity.Coord) (session.Snapshot, error)
	RetryAI(ctx context.Context, clientID string) (session.Snapshot, error)
	State(ctx context.Context, clientID string) (session.Snapshot, error)
	Subscribe(ctx context.Context, clientID string, listener session.Listener) (func(), error)
}

type handlerFunc func(ctx context.Context, clientID string, payload Payload) (session.Snapshot, error)

type Server struct {
	logger   *slog.Logger
	manager  sessionManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, manager sessionManager) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		manager:  manager,
		upgrader: websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionState] = server.handleState
	server.handlers[actionNew] = server.handleNewGame
	server.handlers[actionSide] = server.handleSide
	server.handlers[actionClick] = server.handleClick
	server.handlers[actionMove] = server.handleMove
	server.handlers[actionRetryAI] = server.handleRetryAI

	return server
}

// ServeHTTP upgrades the request. The client id comes from the session cookie middleware.
func (that *Server) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	clientID := handlers.ClientID(req.Context())
	if clientID == "" {
		http.Error(writer, "missing session", http.StatusUnauthorized)
		return
	}

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	send := make(chan []byte, sendBuffer)
	done := make(chan struct{})
	defer close(done)

	push := func(msg Message) {
		select {
		case send <- mustMarshal(msg):
		case <-done:
		default:
			log.Warn("client is slow, message dropped", "clientId", clientID, "action", msg.Action)
		}
	}

	unsubscribe, err := that.manager.Subscribe(ctx, clientID, func(snapshot session.Snapshot) {
		push(Message{Action: actionSnapshot, Payload: mustMarshal(render.NewView(snapshot))})
	})
	if err != nil {
		log.Error("failed to subscribe", "clientId", clientID, "error", err)
		return
	}
	defer unsubscribe()

	go func() {
		if err := writeWithHeartbeat(conn, send, done); err != nil {
			log.Debug("write loop stopped", "error", err)
			cancel()
		}
	}()

	log.Info("WebSocket connection established", "clientId", clientID)

	if snapshot, err := that.manager.State(ctx, clientID); err == nil {
		push(Message{Action: actionSnapshot, Payload: mustMarshal(render.NewView(snapshot))})
	}

	that.handleMessages(ctx, conn, clientID, push)
}

// handleMessages reads commands until the connection closes. Each command runs on its own goroutine so a click
// arriving while a request is in flight is rejected by the session instead of waiting behind it.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, clientID string, push func(Message)) {
	log := that.logger.With("method", "handleMessages", "clientId", clientID)

	// moves already sent to the authority still complete and get checkpointed after a disconnect
	actionCtx := context.WithoutCancel(ctx)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			log.Debug("connection closed", "error", err)
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			continue
		}

		var payload Payload
		if len(message.Payload) > 0 {
			if err = json.Unmarshal(message.Payload, &payload); err != nil {
				push(errorMessage(fmt.Errorf("invalid payload: %w", err)))
				continue
			}
		}

		go func() {
			snapshot, err := handler(actionCtx, clientID, payload)
			switch {
			case err != nil && !apperror.IsSilent(err):
				log.Warn("action failed", "action", message.Action, "error", err)
				push(errorMessage(err))
			case message.Action == actionState:
				push(Message{Action: actionSnapshot, Payload: mustMarshal(render.NewView(snapshot))})
			}
		}()
	}
}

func (that *Server) handleState(ctx context.Context, clientID string, _ Payload) (session.Snapshot, error) {
	return that.manager.State(ctx, clientID)
}

func (that *Server) handleNewGame(ctx context.Context, clientID string, _ Payload) (session.Snapshot, error) {
	return that.manager.StartGame(ctx, clientID)
}

func (that *Server) handleSide(ctx context.Context, clientID string, payload Payload) (session.Snapshot, error) {
	return that.manager.SetSide(ctx, clientID, payload.Side)
}

func (that *Server) handleClick(ctx context.Context, clientID string, payload Payload) (session.Snapshot, error) {
	return that.manager.Click(ctx, clientID, payload.X, payload.Y)
}

func (that *Server) handleMove(ctx context.Context, clientID string, payload Payload) (session.Snapshot, error) {
	return that.manager.Move(ctx, clientID, entity.Coord{Row: payload.Row, Col: payload.Col})
}

func (that *Server) handleRetryAI(ctx context.Context, clientID string, _ Payload) (session.Snapshot, error) {
	return that.manager.RetryAI(ctx, clientID)
}

func errorMessage(err error) Message {
	return Message{Action: actionError, Payload: mustMarshal(Payload{Error: err.Error()})}
}
