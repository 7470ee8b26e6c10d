package hub

import (
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum message size allowed
	maxMessageSize = 64 * 1024 // dashboards only send pongs
)

// Client represents a single websocket connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message

	// stop is closed once the client should go away; send is never closed
	// so Queue and the hub can't race on it.
	stop     chan struct{}
	stopOnce sync.Once

	// done is closed when writePump has returned
	done chan struct{}
}

// NewClient creates a new client and registers it with the hub
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, 256), // Buffered channel for backpressure
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	select {
	case hub.register <- client:
	case <-hub.quit:
		client.close()
	}
	return client
}

// Run starts the client's read and write pumps
// This should be called in the websocket handler. It returns once both
// pumps are done, so the handler may release the connection.
func (c *Client) Run() {
	go c.writePump()
	c.readPump() // Blocks until connection closes
	<-c.done
}

func (c *Client) close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// readPump reads messages from the websocket connection
// It keeps the connection alive and detects disconnection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// We don't expect messages from clients, but we need to read
		// to detect disconnection and receive pong responses
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// writePump writes messages to the websocket connection
// Only this goroutine writes to the connection - no race conditions!
func (c *Client) writePump() {
	defer close(c.done)
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		// readPump may still be blocked on a dead connection
		c.close()
	}()

	for {
		select {
		case message := <-c.send:
			// Determine websocket message type
			wsType := websocket.TextMessage
			if message.Type == BinaryMessage {
				wsType = websocket.BinaryMessage
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(wsType, message.Data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.stop:
			// Hub dropped us - send close frame
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// Queue sends msg to this client only, e.g. a snapshot on connect. It
// returns false if the client's buffer is full or the client is stopped.
func (c *Client) Queue(msg Message) bool {
	select {
	case <-c.stop:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}
