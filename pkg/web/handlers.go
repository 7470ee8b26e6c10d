package web

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/hub"
	"github.com/teslashibe/go-nidhogg/pkg/protocol"
)

// handleHealth reports liveness and whether the backend is connected
func (s *Server) handleHealth(c *fiber.Ctx) error {
	st := s.Status()
	code := fiber.StatusOK
	if !st.Connected {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"ok":        st.Connected,
		"backend":   st.Backend,
		"connected": st.Connected,
	})
}

// handleStatus returns backend, identity and loop counters
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// handleState returns the latest state
func (s *Server) handleState(c *fiber.Ctx) error {
	s.stateMu.RLock()
	state, ok := s.state, s.hasState
	s.stateMu.RUnlock()

	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no state received yet",
		})
	}
	return c.JSON(state)
}

// handleHardware returns the robot identity
func (s *Server) handleHardware(c *fiber.Ctx) error {
	hw := s.Status().Hardware
	if hw == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "hardware info not available",
		})
	}
	return c.JSON(hw)
}

// handleEvents returns recent events
func (s *Server) handleEvents(c *fiber.Ctx) error {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	return c.JSON(s.events)
}

// handleStateWS streams state messages. A client connecting after the first
// state gets the latest one right away.
func (s *Server) handleStateWS(c *websocket.Conn) {
	client := hub.NewClient(s.stateHub, c)

	s.stateMu.RLock()
	state, ok, st := s.state, s.hasState, s.status
	s.stateMu.RUnlock()

	if ok {
		msg, err := protocol.NewStateMessage(state, st.Hardware, st.Backend)
		var snapshot hub.Message
		if err == nil {
			snapshot, err = hub.NewProtocolMessage(msg)
		}
		if err != nil {
			log.Warn("state snapshot not sent", "error", err)
		} else {
			client.Queue(snapshot)
		}
	}

	client.Run()
}

// handleEventsWS streams events, starting with the buffered ones
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)

	s.eventsMu.RLock()
	for _, entry := range s.events {
		if data, err := json.Marshal(entry); err == nil {
			client.Queue(hub.NewJSONMessage(data))
		}
	}
	s.eventsMu.RUnlock()

	client.Run()
}
