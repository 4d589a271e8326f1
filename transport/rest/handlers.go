package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/rocketscienceinc/othello-session/internal/input"
	"github.com/rocketscienceinc/othello-session/internal/render"
	"github.com/rocketscienceinc/othello-session/internal/session"
	"github.com/rocketscienceinc/othello-session/pkg/handlers"
)

type sessionManager interface {
	StartGame(ctx context.Context, clientID string) (session.Snapshot, error)
	SetSide(ctx context.Context, clientID, side string) (session.Snapshot, error)
	Click(ctx context.Context, clientID string, x, y int) (session.Snapshot, error)
	Move(ctx context.Context, clientID string, coord entity.Coord) (session.Snapshot, error)
	RetryAI(ctx context.Context, clientID string) (session.Snapshot, error)
	State(ctx context.Context, clientID string) (session.Snapshot, error)
	History(ctx context.Context, clientID string) (entity.StepHistory, error)
}

type sideRequest struct {
	Side string `json:"side"`
}

type clickRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type moveRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type historyResponse struct {
	Steps    []entity.Step `json:"steps"`
	Notation string        `json:"notation"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type gameHandlers struct {
	logger   *slog.Logger
	manager  sessionManager
	geometry input.Mapper
}

func (that *gameHandlers) state(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.manager.State(r.Context(), handlers.ClientID(r.Context()))
	that.writeSnapshot(w, snapshot, err)
}

func (that *gameHandlers) newGame(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.manager.StartGame(r.Context(), handlers.ClientID(r.Context()))
	that.writeSnapshot(w, snapshot, err)
}

func (that *gameHandlers) side(w http.ResponseWriter, r *http.Request) {
	var req sideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	snapshot, err := that.manager.SetSide(r.Context(), handlers.ClientID(r.Context()), req.Side)
	that.writeSnapshot(w, snapshot, err)
}

func (that *gameHandlers) click(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	snapshot, err := that.manager.Click(r.Context(), handlers.ClientID(r.Context()), req.X, req.Y)
	that.writeSnapshot(w, snapshot, err)
}

func (that *gameHandlers) move(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	coord := entity.Coord{Row: req.Row, Col: req.Col}
	snapshot, err := that.manager.Move(r.Context(), handlers.ClientID(r.Context()), coord)
	that.writeSnapshot(w, snapshot, err)
}

func (that *gameHandlers) retryAI(w http.ResponseWriter, r *http.Request) {
	snapshot, err := that.manager.RetryAI(r.Context(), handlers.ClientID(r.Context()))
	that.writeSnapshot(w, snapshot, err)
}

func (that *gameHandlers) history(w http.ResponseWriter, r *http.Request) {
	history, err := that.manager.History(r.Context(), handlers.ClientID(r.Context()))
	if err != nil {
		that.logger.Error("failed to get history", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to get history"})
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Steps: history.All(), Notation: history.Notation()})
}

func (that *gameHandlers) boardImage(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "boardImage")

	snapshot, err := that.manager.State(r.Context(), handlers.ClientID(r.Context()))
	if err != nil {
		log.Error("failed to get state", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	image, err := render.PNG(that.geometry, snapshot, snapshot.Highlight())
	if err != nil {
		log.Error("failed to render board", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(image)
}

// writeSnapshot answers with the snapshot; rejected inputs keep status 200 because the board is simply unchanged.
func (that *gameHandlers) writeSnapshot(w http.ResponseWriter, snapshot session.Snapshot, err error) {
	if err == nil || apperror.IsSilent(err) {
		writeJSON(w, http.StatusOK, render.NewView(snapshot))
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}

	view := render.NewView(snapshot)
	view.Error = err.Error()
	writeJSON(w, status, view)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, apperror.ErrTransportFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, apperror.ErrInvalidSide):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrSideLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
