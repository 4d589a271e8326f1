// Package authority talks to the remote service that decides move legality and plays the computer side.
package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/entity"
)

const (
	pathNewGame = "/othello/new"
	pathPlay    = "/othello/play"
	pathReport  = "/othello/report"

	maxResponseSize = 1 << 20
)

type Client struct {
	logger  *slog.Logger
	baseURL string
	http    *http.Client
}

func New(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		logger:  logger.With("component", "authority"),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// NewGame asks for the opening position.
func (that *Client) NewGame(ctx context.Context) (Result, error) {
	var response boardResponse
	if err := that.do(ctx, http.MethodGet, pathNewGame, nil, &response); err != nil {
		return Result{}, err
	}

	result, err := parseResult(response)
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

// Play submits a turn. The returned action is what the authority actually played.
func (that *Client) Play(ctx context.Context, request MoveRequest) (Result, error) {
	log := that.logger.With("method", "Play", "sessionId", request.SessionID, "player", request.Player)

	var response boardResponse
	if err := that.do(ctx, http.MethodPost, pathPlay, request, &response); err != nil {
		return Result{}, err
	}

	result, err := parseResult(response)
	if err != nil {
		return Result{}, err
	}

	if result.Action == nil {
		return Result{}, fmt.Errorf("%w: move response without action", apperror.ErrMalformedResponse)
	}

	if !result.Action.InBoard() || result.Board.Cell(*result.Action) != request.Player.Cell() {
		return Result{}, fmt.Errorf("%w: action %v does not hold a %s disc", apperror.ErrMalformedResponse, *result.Action, request.Player)
	}

	log.Info("move applied", "action", result.Action.String(), "turn", result.Turn, "finished", result.Finished)

	return result, nil
}

// Report sends the summary of a finished game.
func (that *Client) Report(ctx context.Context, report Report) error {
	if err := that.do(ctx, http.MethodPost, pathReport, report, nil); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}

	return nil
}

func (that *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("could not marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, that.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrTransportFailure, err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := that.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: %s %s returned status %d", apperror.ErrTransportFailure, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %w", apperror.ErrTransportFailure, err)
	}

	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrMalformedResponse, err)
	}

	return nil
}

func parseResult(response boardResponse) (Result, error) {
	grid, err := entity.GridFromRows(response.Board)
	if err != nil {
		return Result{}, err
	}

	board, err := entity.NewBoardState(grid, response.BlackScore, response.WhiteScore, response.Options)
	if err != nil {
		return Result{}, err
	}

	turn := entity.Side(response.Turn)
	if !turn.Valid() && turn != entity.SideNone {
		return Result{}, fmt.Errorf("%w: unknown turn %q", apperror.ErrMalformedResponse, response.Turn)
	}

	finished := response.Finished || turn == entity.SideNone || board.IsFull()
	if !finished && len(response.Options) == 0 {
		return Result{}, fmt.Errorf("%w: %s to move without options", apperror.ErrMalformedResponse, turn)
	}

	return Result{
		Board:    board,
		Turn:     turn,
		Action:   response.Action,
		Finished: finished,
	}, nil
}

// IsRetriable reports whether a failed call may be repeated unchanged.
func IsRetriable(err error) bool {
	return errors.Is(err, apperror.ErrTransportFailure)
}
