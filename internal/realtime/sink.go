package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Sink is one writable side of the bridge. Implementations must be safe for
// use from both pumps: the upstream socket is written by the client pump and,
// on tool calls, by the dispatcher.
type Sink interface {
	Send(v any) error
}

type wsSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewSink wraps a websocket connection with a write lock.
func NewSink(conn *websocket.Conn) Sink {
	return &wsSink{conn: conn}
}

func (s *wsSink) Send(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}
