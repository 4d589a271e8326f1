package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

const idlePingInterval = 30 * time.Second

// writeWithHeartbeat forwards queued messages and pings the client after a quiet interval.
// It returns when done is closed or a write fails.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte, done <-chan struct{}) error {
	ticker := time.NewTicker(idlePingInterval)
	defer ticker.Stop()

	lastWrite := time.Now()
	ping := mustMarshal(Message{Action: actionPing})

	for {
		select {
		case <-done:
			return nil
		case msg := <-send:
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < idlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
