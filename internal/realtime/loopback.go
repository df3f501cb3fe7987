package realtime

import (
	"context"
	"log/slog"

	"github.com/gorilla/websocket"
)

type serverEvent struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text,omitempty"`
}

type clientEvent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// LoopbackDriver is the development stand-in for a vendor realtime
// driver. It announces the session, serves the assembled instructions
// on request, and echoes every other text event back. Useful for
// verifying the assembly pipeline end to end without vendor access.
type LoopbackDriver struct {
	logger *slog.Logger
}

var _ SessionDriver = (*LoopbackDriver)(nil)

func NewLoopbackDriver(logger *slog.Logger) *LoopbackDriver {
	if logger == nil {
		panic("logger cannot be nil for LoopbackDriver")
	}
	return &LoopbackDriver{logger: logger.With("component", "LoopbackDriver")}
}

func (d *LoopbackDriver) Run(ctx context.Context, conn *websocket.Conn, sess Session) error {
	defer conn.Close()

	created := serverEvent{Type: "session.created", SessionID: sess.ID}
	if err := conn.WriteJSON(created); err != nil {
		return err
	}

	for {
		var ev clientEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		switch ev.Type {
		case "session.instructions":
			reply := serverEvent{Type: "session.instructions", SessionID: sess.ID, Text: sess.Instructions}
			if err := conn.WriteJSON(reply); err != nil {
				return err
			}
		case "session.close":
			return nil
		default:
			reply := serverEvent{Type: "echo", SessionID: sess.ID, Text: ev.Text}
			if err := conn.WriteJSON(reply); err != nil {
				return err
			}
		}
	}
}
