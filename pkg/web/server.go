// Package web serves a live view of the robot: the latest state, its
// identity and the control loop counters, over HTTP and WebSocket.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/hub"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/protocol"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
)

// maxEvents is the size of the event ring buffer.
const maxEvents = 500

// Event is a connection or loop event shown on the dashboard
type Event struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, connect, disconnect, error
	Message string `json:"message"`
}

// Status is the monitor's view of the backend
type Status struct {
	Backend   string            `json:"backend"`
	Connected bool              `json:"connected"`
	Hardware  *nao.HardwareInfo `json:"hardware,omitempty"`
	Stats     robot.LoopStats   `json:"stats"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Server is the state monitor server
type Server struct {
	app  *fiber.App
	addr string

	// Every broadcastEvery-th state is pushed to dashboards; LoLA produces
	// 83 frames per second, far more than a browser needs.
	broadcastEvery uint64

	stateMu  sync.RWMutex
	status   Status
	state    nao.State
	hasState bool
	received uint64

	events   []Event
	eventsMu sync.RWMutex

	// Hubs for websocket broadcast
	stateHub *hub.Hub
	eventHub *hub.Hub
}

// NewServer creates a monitor for the named backend, listening on addr
// (e.g. ":8080") once started.
func NewServer(addr, backend string, broadcastEvery int) *Server {
	if broadcastEvery < 1 {
		broadcastEvery = 1
	}
	s := &Server{
		addr:           addr,
		broadcastEvery: uint64(broadcastEvery),
		status:         Status{Backend: backend},
		events:         make([]Event, 0, maxEvents),
		stateHub:       hub.New("state"),
		eventHub:       hub.New("events"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "nidhogg monitor",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/status", s.handleStatus)
	api.Get("/state", s.handleState)
	api.Get("/hardware", s.handleHardware)
	api.Get("/events", s.handleEvents)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App exposes the Fiber app, e.g. for app.Test in tests or extra routes.
func (s *Server) App() *fiber.App {
	return s.app
}

// RunHubs starts the broadcast hubs. Start calls it; tests that drive App
// directly call it themselves.
func (s *Server) RunHubs() {
	go s.stateHub.Run()
	go s.eventHub.Run()
}

// Start starts the web server. It blocks until Shutdown.
func (s *Server) Start() error {
	log.Info("monitor listening", "addr", s.addr)
	s.RunHubs()
	return s.app.Listen(s.addr)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("monitor server stopped", "error", err)
		}
	}()
}

// SetConnected records the backend connection state.
func (s *Server) SetConnected(connected bool) {
	s.stateMu.Lock()
	changed := s.status.Connected != connected
	s.status.Connected = connected
	s.stateMu.Unlock()

	if changed {
		if connected {
			s.AddEvent("connect", "backend connected")
		} else {
			s.AddEvent("disconnect", "backend disconnected")
		}
	}
}

// SetHardware records the robot identity.
func (s *Server) SetHardware(hw nao.HardwareInfo) {
	s.stateMu.Lock()
	s.status.Hardware = &hw
	s.stateMu.Unlock()
}

// UpdateState stores the latest state and, every broadcastEvery calls,
// pushes it to connected dashboards.
func (s *Server) UpdateState(state nao.State) {
	s.stateMu.Lock()
	s.state = state
	s.hasState = true
	s.received++
	s.status.UpdatedAt = time.Now()
	push := s.received%s.broadcastEvery == 1 || s.broadcastEvery == 1
	hw := s.status.Hardware
	backend := s.status.Backend
	s.stateMu.Unlock()

	if !push {
		return
	}
	msg, err := protocol.NewStateMessage(state, hw, backend)
	if err == nil {
		err = s.stateHub.BroadcastMessage(msg)
	}
	if err != nil {
		log.Warn("state not broadcast", "error", err)
	}
}

// UpdateStats stores the control loop counters and pushes them to
// connected state dashboards.
func (s *Server) UpdateStats(stats robot.LoopStats) {
	s.stateMu.Lock()
	s.status.Stats = stats
	s.stateMu.Unlock()

	msg, err := protocol.NewStatsMessage(protocol.StatsData(stats))
	if err == nil {
		err = s.stateHub.BroadcastMessage(msg)
	}
	if err != nil {
		log.Warn("stats not broadcast", "error", err)
	}
}

// AddEvent adds an event and broadcasts it to clients
func (s *Server) AddEvent(eventType, message string) {
	entry := Event{
		Time:    time.Now().Format("15:04:05"),
		Type:    eventType,
		Message: message,
	}

	s.eventsMu.Lock()
	s.events = append(s.events, entry)
	if len(s.events) > maxEvents {
		s.events = s.events[1:]
	}
	s.eventsMu.Unlock()

	s.eventHub.BroadcastJSON(entry)
}

// Status returns a copy of the current status
func (s *Server) Status() Status {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.status
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	s.stateHub.Stop()
	s.eventHub.Stop()
	return s.app.Shutdown()
}
