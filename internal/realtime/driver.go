package realtime

import (
	"context"

	"voicecollect/internal/config"

	"github.com/gorilla/websocket"
)

// Session carries everything a driver needs to run one realtime
// conversation: the identity of the connection, the instructions
// assembled for it, and the upstream vendor credential.
type Session struct {
	ID           string
	Instructions string
	Credential   config.Credential
}

// SessionDriver owns the websocket connection for the lifetime of a
// session. Run blocks until the conversation ends and must close the
// connection before returning.
type SessionDriver interface {
	Run(ctx context.Context, conn *websocket.Conn, sess Session) error
}
