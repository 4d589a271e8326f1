package authority

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rocketscienceinc/othello-session/internal/apperror"
	"github.com/rocketscienceinc/othello-session/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(logger, server.URL+"/", time.Second)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func openingResponse() map[string]any {
	return map[string]any{
		"board":      entity.NewInitialBoard().Rows(),
		"options":    [][2]int{{2, 3}, {3, 2}, {4, 5}, {5, 4}},
		"blackScore": 2,
		"whiteScore": 2,
		"turn":       "black",
	}
}

func afterBlackC4() map[string]any {
	rows := entity.NewInitialBoard().Rows()
	rows[2][3] = int(entity.Black)
	rows[3][3] = int(entity.Black)

	return map[string]any{
		"board":      rows,
		"options":    [][2]int{{2, 2}, {2, 4}, {4, 2}},
		"blackScore": 4,
		"whiteScore": 1,
		"turn":       "white",
		"action":     [2]int{2, 3},
	}
}

func TestClient_NewGame(t *testing.T) {
	t.Run("Parses the opening position", func(t *testing.T) {
		// Given: an authority serving the opening
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, pathNewGame, r.URL.Path)
			writeJSON(t, w, openingResponse())
		})

		// When: a new game is requested
		result, err := client.NewGame(context.Background())

		// Then: the board and turn are returned
		require.NoError(t, err)
		assert.Equal(t, entity.SideBlack, result.Turn)
		assert.False(t, result.Finished)
		assert.Equal(t, entity.NewInitialBoard().Grid(), result.Board.Grid())
		assert.Nil(t, result.Action)
	})

	t.Run("Non-success status is a transport failure", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.NewGame(context.Background())

		require.ErrorIs(t, err, apperror.ErrTransportFailure)
		assert.True(t, IsRetriable(err))
	})

	t.Run("Inconsistent scores are a malformed response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			response := openingResponse()
			response["blackScore"] = 3
			writeJSON(t, w, response)
		})

		_, err := client.NewGame(context.Background())

		require.ErrorIs(t, err, apperror.ErrMalformedResponse)
		assert.False(t, IsRetriable(err))
	})

	t.Run("Invalid JSON is a malformed response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("{"))
		})

		_, err := client.NewGame(context.Background())

		assert.ErrorIs(t, err, apperror.ErrMalformedResponse)
	})

	t.Run("A side to move without options is a malformed response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			response := openingResponse()
			response["options"] = [][2]int{}
			writeJSON(t, w, response)
		})

		_, err := client.NewGame(context.Background())

		assert.ErrorIs(t, err, apperror.ErrMalformedResponse)
	})
}

func TestClient_Play(t *testing.T) {
	t.Run("Sends the move request and parses the result", func(t *testing.T) {
		// Given: an authority that records the request
		var got map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, pathPlay, r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, afterBlackC4())
		})

		// When: black plays (2,3)
		action := entity.Coord{Row: 2, Col: 3}
		result, err := client.Play(context.Background(), MoveRequest{
			SessionID: "s1",
			Player:    entity.SideBlack,
			Action:    &action,
			Board:     entity.NewInitialBoard().Rows(),
		})

		// Then: the request carried session, player and action
		require.NoError(t, err)
		assert.Equal(t, "s1", got["sessionId"])
		assert.Equal(t, "black", got["player"])
		assert.Equal(t, []any{2.0, 3.0}, got["action"])

		// Then: the result reflects the flip
		assert.Equal(t, entity.SideWhite, result.Turn)
		require.NotNil(t, result.Action)
		assert.Equal(t, action, *result.Action)
		assert.Equal(t, entity.Black, result.Board.Cell(entity.Coord{Row: 3, Col: 3}))
	})

	t.Run("Computer move requests omit the action", func(t *testing.T) {
		var got map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, afterBlackC4())
		})

		_, err := client.Play(context.Background(), MoveRequest{SessionID: "s1", Player: entity.SideBlack, Board: entity.NewInitialBoard().Rows()})

		require.NoError(t, err)
		assert.NotContains(t, got, "action")
	})

	t.Run("Missing action is a malformed response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			response := afterBlackC4()
			delete(response, "action")
			writeJSON(t, w, response)
		})

		_, err := client.Play(context.Background(), MoveRequest{SessionID: "s1", Player: entity.SideBlack})

		assert.ErrorIs(t, err, apperror.ErrMalformedResponse)
	})

	t.Run("Action not holding the mover's disc is a malformed response", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, afterBlackC4())
		})

		_, err := client.Play(context.Background(), MoveRequest{SessionID: "s1", Player: entity.SideWhite})

		assert.ErrorIs(t, err, apperror.ErrMalformedResponse)
	})

	t.Run("Turn none finishes the game", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			response := afterBlackC4()
			response["turn"] = "none"
			response["options"] = [][2]int{}
			writeJSON(t, w, response)
		})

		result, err := client.Play(context.Background(), MoveRequest{SessionID: "s1", Player: entity.SideBlack})

		require.NoError(t, err)
		assert.True(t, result.Finished)
	})

	t.Run("Timeouts are transport failures", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
			<-release
		}))
		t.Cleanup(server.Close)
		t.Cleanup(func() { close(release) })

		client := New(slog.New(slog.NewTextHandler(io.Discard, nil)), server.URL, 50*time.Millisecond)

		_, err := client.Play(context.Background(), MoveRequest{SessionID: "s1", Player: entity.SideBlack})

		assert.ErrorIs(t, err, apperror.ErrTransportFailure)
	})
}

func TestClient_Report(t *testing.T) {
	// Given: an authority accepting reports
	var got Report
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pathReport, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(t, w, map[string]string{"status": "OK"})
	})

	// When: a report is sent
	err := client.Report(context.Background(), Report{
		SessionID: "s1",
		Steps:     []entity.Step{{Player: entity.SideBlack, Action: entity.Coord{Row: 2, Col: 3}}},
		Notation:  "+c4",
		Result:    "black",
	})

	// Then: it arrives intact
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	assert.Equal(t, "+c4", got.Notation)
	require.Len(t, got.Steps, 1)
	assert.Equal(t, entity.Coord{Row: 2, Col: 3}, got.Steps[0].Action)
}
