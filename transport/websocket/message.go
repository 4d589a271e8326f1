package websocket

import (
	"encoding/json"
)

const (
	actionState    = "game:state"
	actionNew      = "game:new"
	actionSide     = "game:side"
	actionClick    = "game:click"
	actionMove     = "game:move"
	actionRetryAI  = "game:ai"
	actionSnapshot = "game:snapshot"
	actionError    = "error"
	actionPing     = "ping"
)

// Message is the envelope for both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	Side  string `json:"side,omitempty"`
	X     int    `json:"x,omitempty"`
	Y     int    `json:"y,omitempty"`
	Row   int    `json:"row,omitempty"`
	Col   int    `json:"col,omitempty"`
	Error string `json:"error,omitempty"`
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
