package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/protocol"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
)

// ErrUnreachable means the remote process could not be reached, either at
// dial time or because the connection dropped mid-call.
var ErrUnreachable = errors.New("remote: backend unreachable")

// RemoteError is a request the remote process received and rejected.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote: %s: %s", e.Code, e.Message)
}

// Client is a robot.Backend served by a remote Server. Like every backend it
// is not safe for concurrent use.
type Client struct {
	url  string
	conn *websocket.Conn
}

var _ robot.InfoBackend = (*Client)(nil)

// Dial connects once to url, e.g. "ws://localhost:7070/ws/backend".
func Dial(url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, url, err)
	}
	log.Debug("remote backend connected", "url", url)
	return &Client{url: url, conn: conn}, nil
}

// DialWithRetry dials url, retrying up to retries times.
func DialWithRetry(ctx context.Context, url string, retries int, interval time.Duration) (*Client, error) {
	conn := robot.NewConnection("remote", func() (*Client, error) {
		return Dial(url)
	})
	return conn.ConnectWithRetry(ctx, retries, interval)
}

// call sends a request and waits for the response carrying its ID. Unrelated
// messages (server pushes, late replies) are skipped.
func (c *Client) call(req *protocol.Message) (*protocol.Message, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("%w: not connected", ErrUnreachable)
	}

	data, err := req.Bytes()
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", req.Type, err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, req.Type, err)
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrUnreachable, req.Type, err)
		}
		resp, err := protocol.ParseMessage(raw)
		if err != nil {
			return nil, fmt.Errorf("remote %s: %w", req.Type, err)
		}
		if resp.ID != req.ID {
			continue
		}
		if resp.Type == protocol.TypeError {
			e, err := resp.GetErrorData()
			if err != nil {
				return nil, fmt.Errorf("remote %s: %w", req.Type, err)
			}
			return nil, &RemoteError{Code: e.Code, Message: e.Message}
		}
		return resp, nil
	}
}

func (c *Client) request(msgType protocol.MessageType) (*protocol.Message, error) {
	req, err := protocol.NewRequest(msgType, uuid.NewString())
	if err != nil {
		return nil, err
	}
	return c.call(req)
}

// SendControl forwards msg to the remote backend.
func (c *Client) SendControl(msg nao.ControlMessage) error {
	req, err := protocol.NewSendControlMessage(uuid.NewString(), msg)
	if err != nil {
		return err
	}
	_, err = c.call(req)
	return err
}

// ReadState asks the remote backend for its next state.
func (c *Client) ReadState() (nao.State, error) {
	resp, err := c.request(protocol.TypeReadState)
	if err != nil {
		return nao.State{}, err
	}
	data, err := resp.GetStateData()
	if err != nil {
		return nao.State{}, fmt.Errorf("remote read_state: %w", err)
	}
	return data.State, nil
}

// ReadHardwareInfo asks the remote backend for the robot identity.
func (c *Client) ReadHardwareInfo() (nao.HardwareInfo, error) {
	resp, err := c.request(protocol.TypeReadHardware)
	if err != nil {
		return nao.HardwareInfo{}, err
	}
	data, err := resp.GetHardwareData()
	if err != nil {
		return nao.HardwareInfo{}, fmt.Errorf("remote read_hardware: %w", err)
	}
	return data.Hardware, nil
}

// Ping measures the round trip to the server.
func (c *Client) Ping() (time.Duration, error) {
	start := time.Now()
	req, err := protocol.NewPingMessage(uuid.NewString(), start.UnixMilli())
	if err != nil {
		return 0, err
	}
	req.ID = uuid.NewString()
	if _, err := c.call(req); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// Disconnect ends the session and closes the connection. The remote backend
// keeps running. Further calls are no-ops.
func (c *Client) Disconnect() error {
	if c.conn == nil {
		return nil
	}
	// Best effort: the server may already be gone.
	if _, err := c.request(protocol.TypeDisconnect); err != nil {
		log.Debug("remote disconnect request failed", "url", c.url, "error", err)
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
