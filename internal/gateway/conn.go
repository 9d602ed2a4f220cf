package gateway

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"
)

var ErrBackpressure = errors.New("backpressure")

// Sender is the transport half a room channel fans out to. Owned by
// the gateway; the gateway must Close() it.
type Sender interface {
	TrySend([]byte) error
	Close()
}

// WsConn wraps a websocket with a bounded send queue. A full queue
// drops the frame rather than blocking the broadcaster.
type WsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func NewWsConn(ws *websocket.Conn, buffer int) *WsConn {
	return &WsConn{
		conn: ws,
		send: make(chan []byte, buffer),
	}
}

func (c *WsConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}
