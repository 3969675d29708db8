package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/s21platform/group-chat-service/internal/model"
	"github.com/s21platform/group-chat-service/internal/registry"
)

const writeWait = 10 * time.Second

// conn is the registry transport of one websocket. All writes happen on the
// write pump; Send and Close only hand work to it.
type conn struct {
	ws     *websocket.Conn
	send   chan model.Event
	closed chan registry.CloseReason
	done   chan struct{}
	once   sync.Once
}

func newConn(ws *websocket.Conn, buffer int) *conn {
	return &conn{
		ws:     ws,
		send:   make(chan model.Event, buffer),
		closed: make(chan registry.CloseReason, 1),
		done:   make(chan struct{}),
	}
}

func (c *conn) Send(ev model.Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *conn) Close(reason registry.CloseReason) {
	c.once.Do(func() {
		c.closed <- reason
		close(c.done)
	})
}

// writePump drains outbound events, pings the peer and writes the close
// frame. onError is called when the socket can no longer be written to.
func (c *conn) writePump(pingInterval time.Duration, onError func(error)) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()

	for {
		select {
		case ev := <-c.send:
			if err := c.write(ev); err != nil {
				onError(err)
				return
			}

		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				onError(err)
				return
			}

		case reason := <-c.closed:
			if reason != registry.CloseSlowConsumer {
				c.flush()
			}
			msg := websocket.FormatCloseMessage(reason.Code, reason.Text)
			_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

func (c *conn) write(ev model.Event) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteJSON(ev)
}

// flush writes whatever is already buffered, best effort.
func (c *conn) flush() {
	for n := len(c.send); n > 0; n-- {
		if err := c.write(<-c.send); err != nil {
			return
		}
	}
}
