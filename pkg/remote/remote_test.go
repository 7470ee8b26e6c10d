package remote

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/protocol"
	"github.com/teslashibe/go-nidhogg/pkg/sim"
)

// startServer serves s on a random loopback port and returns its backend URL.
func startServer(t *testing.T, s *Server) string {
	t.Helper()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.RegisterRoutes(app)
	s.RegisterAPIRoutes(app.Group("/api"))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go app.Listener(ln)
	t.Cleanup(func() { app.Shutdown() })

	return "ws://" + ln.Addr().String() + BackendPath
}

// limpBackend fails reads and has no hardware info.
type limpBackend struct{}

func (limpBackend) SendControl(nao.ControlMessage) error { return nil }
func (limpBackend) ReadState() (nao.State, error)        { return nao.State{}, errors.New("motor board offline") }
func (limpBackend) Disconnect() error                    { return nil }

func TestClient_SimulatorRoundTrip(t *testing.T) {
	backend := sim.New(sim.Config{Step: 10 * time.Millisecond, MaxJointVelocity: 2})
	server := NewServer(backend, "sim")
	url := startServer(t, server)

	client, err := Dial(url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	info, err := client.ReadHardwareInfo()
	if err != nil {
		t.Fatalf("ReadHardwareInfo: %v", err)
	}
	if info != sim.DefaultHardware {
		t.Errorf("hardware = %+v", info)
	}

	msg := nao.BuildControl().
		Position(nao.FillJoints[float32](1)).
		Stiffness(nao.FillJoints[float32](1)).
		Chest(nao.Green).
		Build()
	if err := client.SendControl(msg); err != nil {
		t.Fatalf("SendControl: %v", err)
	}

	state, err := client.ReadState()
	if err != nil {
		t.Fatalf("ReadState: %v", err)
	}
	if d := state.Position.HeadYaw - 0.02; d > 1e-6 || d < -1e-6 {
		t.Errorf("HeadYaw = %v, want 0.02", state.Position.HeadYaw)
	}
	if backend.LastControl().Chest != nao.Green {
		t.Error("control message did not reach the backend")
	}

	if _, err := client.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}

	if err := client.Disconnect(); err != nil {
		t.Errorf("Disconnect: %v", err)
	}
	if err := client.Disconnect(); err != nil {
		t.Errorf("second Disconnect: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if server.SessionCount() != 0 {
		t.Errorf("SessionCount = %d, want 0 after disconnect", server.SessionCount())
	}
	if got := server.GetStats().RequestsHandled; got < 4 {
		t.Errorf("RequestsHandled = %d, want >= 4", got)
	}

	if _, err := client.ReadState(); !errors.Is(err, ErrUnreachable) {
		t.Errorf("ReadState after Disconnect: %v", err)
	}
}

func TestClient_RemoteErrors(t *testing.T) {
	url := startServer(t, NewServer(limpBackend{}, "limp"))

	client, err := Dial(url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Disconnect()

	_, err = client.ReadState()
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("ReadState error = %v, want *RemoteError", err)
	}
	if re.Code != protocol.CodeBackend || !strings.Contains(re.Message, "motor board offline") {
		t.Errorf("got %+v", re)
	}
	if errors.Is(err, ErrUnreachable) {
		t.Error("a rejected request must not look like an unreachable server")
	}

	_, err = client.ReadHardwareInfo()
	if !errors.As(err, &re) || re.Code != protocol.CodeUnsupported {
		t.Errorf("ReadHardwareInfo error = %v, want unsupported", err)
	}
}

func TestServer_RequestsAfterClose(t *testing.T) {
	backend := sim.New(sim.Config{})
	server := NewServer(backend, "sim")
	url := startServer(t, server)

	client, err := Dial(url)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Disconnect()

	if err := server.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := server.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	var re *RemoteError
	_, err = client.ReadState()
	if !errors.As(err, &re) || re.Code != protocol.CodeDisconnected {
		t.Errorf("ReadState error = %v, want disconnected", err)
	}
	_, err = client.ReadHardwareInfo()
	if !errors.As(err, &re) || re.Code != protocol.CodeDisconnected {
		t.Errorf("ReadHardwareInfo error = %v, want disconnected", err)
	}
	err = client.SendControl(nao.NewControlMessage())
	if !errors.As(err, &re) || re.Code != protocol.CodeDisconnected {
		t.Errorf("SendControl error = %v, want disconnected", err)
	}

	// The session itself is still usable.
	if _, err := client.Ping(); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestDial_Unreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	_, err = Dial("ws://" + addr + BackendPath)
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("Dial error = %v, want ErrUnreachable", err)
	}
}

func TestServer_BadRequest(t *testing.T) {
	url := startServer(t, NewServer(limpBackend{}, "limp"))

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"launch_rockets","id":"x1"}`))

	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}

	var resp protocol.Message
	json.Unmarshal(data, &resp)
	if resp.Type != protocol.TypeError || resp.ID != "x1" {
		t.Errorf("got type %q id %q", resp.Type, resp.ID)
	}
}

func TestServer_APIStats(t *testing.T) {
	server := NewServer(limpBackend{}, "limp")
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	server.RegisterRoutes(app)
	server.RegisterAPIRoutes(app.Group("/api"))

	req := httptest.NewRequest("GET", "/api/stats", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"backend":"limp"`) {
		t.Errorf("unexpected body %s", body)
	}

	req = httptest.NewRequest("GET", BackendPath, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("plain GET on the socket: status %d, want 426", resp.StatusCode)
	}
}
