// Package remote runs a backend in one process and drives it from another
// over WebSocket. The server side wraps any robot.Backend (usually the
// simulator); the client side is itself a robot.Backend.
package remote

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/protocol"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
)

// BackendPath is the WebSocket endpoint clients dial.
const BackendPath = "/ws/backend"

// errBackendClosed answers requests that arrive after Close.
var errBackendClosed = errors.New("backend disconnected")

// Session is one connected client.
type Session struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send writes a message to the client.
func (s *Session) Send(msg *protocol.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

// Server exposes one backend to any number of clients. Calls into the
// backend are serialized, so clients interleave at request granularity.
type Server struct {
	name string

	backendMu sync.Mutex
	backend   robot.Backend
	closed    bool

	mu       sync.RWMutex
	sessions map[string]*Session

	// Stats
	requestsHandled atomic.Uint64
	requestsFailed  atomic.Uint64
}

// NewServer wraps backend. name is reported to clients and in logs.
func NewServer(backend robot.Backend, name string) *Server {
	return &Server{
		name:     name,
		backend:  backend,
		sessions: make(map[string]*Session),
	}
}

// RegisterRoutes registers the backend WebSocket endpoint on a Fiber app
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get(BackendPath, websocket.New(s.handleSession))
}

// handleSession serves one client until it disconnects
func (s *Server) handleSession(c *websocket.Conn) {
	sess := &Session{
		ID:        uuid.NewString(),
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	count := len(s.sessions)
	s.mu.Unlock()

	log.Info("remote client connected", "session", sess.ID, "backend", s.name, "clients", count)

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.ID)
		count := len(s.sessions)
		s.mu.Unlock()

		log.Info("remote client disconnected", "session", sess.ID, "clients", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			log.Debug("remote read error", "session", sess.ID, "error", err)
			return
		}

		sess.mu.Lock()
		sess.LastSeen = time.Now()
		sess.mu.Unlock()

		resp, done := s.handleMessage(data)
		if resp != nil {
			if err := sess.Send(resp); err != nil {
				log.Debug("remote write error", "session", sess.ID, "error", err)
				return
			}
		}
		if done {
			return
		}
	}
}

// handleMessage answers one request. done is true when the client asked to
// end the session.
func (s *Server) handleMessage(data []byte) (resp *protocol.Message, done bool) {
	req, err := protocol.ParseMessage(data)
	if err != nil {
		s.requestsFailed.Add(1)
		resp, _ = protocol.NewErrorReply(&protocol.Message{}, protocol.CodeBadRequest, err.Error())
		return resp, false
	}

	resp, err = s.dispatch(req)
	if err != nil {
		s.requestsFailed.Add(1)
		code := protocol.CodeBackend
		if errors.Is(err, errBackendClosed) {
			code = protocol.CodeDisconnected
		}
		resp, _ = protocol.NewErrorReply(req, code, err.Error())
		return resp, false
	}
	if resp.Type == protocol.TypeError {
		s.requestsFailed.Add(1)
	} else {
		s.requestsHandled.Add(1)
	}
	return resp, req.Type == protocol.TypeDisconnect
}

func (s *Server) dispatch(req *protocol.Message) (*protocol.Message, error) {
	switch req.Type {
	case protocol.TypeSendControl:
		data, err := req.GetControlData()
		if err != nil {
			return protocol.NewErrorReply(req, protocol.CodeBadRequest, err.Error())
		}
		err = s.withBackend(func(b robot.Backend) error {
			return b.SendControl(data.Control)
		})
		if err != nil {
			return nil, err
		}
		return req.Reply(protocol.TypeAck, nil)

	case protocol.TypeReadState:
		var state nao.State
		err := s.withBackend(func(b robot.Backend) (err error) {
			state, err = b.ReadState()
			return err
		})
		if err != nil {
			return nil, err
		}
		return req.Reply(protocol.TypeState, protocol.StateData{State: state, Backend: s.name})

	case protocol.TypeReadHardware:
		hr, ok := s.backend.(robot.HardwareInfoReader)
		if !ok {
			return protocol.NewErrorReply(req, protocol.CodeUnsupported, s.name+" does not report hardware info")
		}
		var hw nao.HardwareInfo
		err := s.withBackend(func(robot.Backend) (err error) {
			hw, err = hr.ReadHardwareInfo()
			return err
		})
		if err != nil {
			return nil, err
		}
		return req.Reply(protocol.TypeHardware, protocol.HardwareData{Hardware: hw})

	case protocol.TypeDisconnect:
		// Ends the session only; the backend outlives its clients.
		return req.Reply(protocol.TypeAck, nil)

	case protocol.TypePing:
		ping, err := req.GetPingData()
		if err != nil {
			return protocol.NewErrorReply(req, protocol.CodeBadRequest, err.Error())
		}
		pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
		if err != nil {
			return nil, err
		}
		pong.ID = req.ID
		return pong, nil

	default:
		return protocol.NewErrorReply(req, protocol.CodeBadRequest, "unknown message type "+string(req.Type))
	}
}

// withBackend runs fn with the backend lock held, or fails with
// errBackendClosed once Close was called.
func (s *Server) withBackend(fn func(robot.Backend) error) error {
	s.backendMu.Lock()
	defer s.backendMu.Unlock()
	if s.closed {
		return errBackendClosed
	}
	return fn(s.backend)
}

// Close disconnects the wrapped backend. Requests still arriving are
// answered with a disconnected error.
func (s *Server) Close() error {
	s.backendMu.Lock()
	defer s.backendMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Disconnect()
}

// SessionCount returns the number of connected clients
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats contains server statistics
type Stats struct {
	Backend         string `json:"backend"`
	Sessions        int    `json:"sessions"`
	RequestsHandled uint64 `json:"requests_handled"`
	RequestsFailed  uint64 `json:"requests_failed"`
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		Backend:         s.name,
		Sessions:        s.SessionCount(),
		RequestsHandled: s.requestsHandled.Load(),
		RequestsFailed:  s.requestsFailed.Load(),
	}
}

// SessionInfo contains info about a connected client
type SessionInfo struct {
	ID        string    `json:"id"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// GetSessionInfos returns info about all connected clients
func (s *Server) GetSessionInfos() []SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess.mu.Lock()
		infos = append(infos, SessionInfo{
			ID:        sess.ID,
			Connected: sess.Connected,
			LastSeen:  sess.LastSeen,
		})
		sess.mu.Unlock()
	}
	return infos
}

// RegisterAPIRoutes registers management routes
func (s *Server) RegisterAPIRoutes(api fiber.Router) {
	api.Get("/sessions", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions": s.GetSessionInfos(),
			"count":    s.SessionCount(),
		})
	})

	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.GetStats())
	})
}
