package web

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/protocol"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
)

func get(t *testing.T, s *Server, path string) (int, []byte) {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest("GET", path, nil))
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body
}

func TestAPI_BeforeFirstState(t *testing.T) {
	s := NewServer(":0", "sim", 1)

	if code, _ := get(t, s, "/api/health"); code != 503 {
		t.Errorf("health: status %d, want 503", code)
	}
	if code, _ := get(t, s, "/api/state"); code != 404 {
		t.Errorf("state: status %d, want 404", code)
	}
	if code, _ := get(t, s, "/api/hardware"); code != 404 {
		t.Errorf("hardware: status %d, want 404", code)
	}
}

func TestAPI_State(t *testing.T) {
	s := NewServer(":0", "lola", 1)
	s.SetConnected(true)
	s.SetHardware(nao.HardwareInfo{BodyID: "P0000074A04S", HeadID: "P0000073A07S"})
	s.UpdateStats(robot.LoopStats{Ticks: 12, Sent: 10, Skipped: 2})

	var state nao.State
	state.Battery.Charge = 0.76
	state.Position.LeftKneePitch = 1.2
	s.UpdateState(state)

	code, body := get(t, s, "/api/health")
	if code != 200 {
		t.Errorf("health: status %d, want 200", code)
	}

	code, body = get(t, s, "/api/state")
	if code != 200 {
		t.Fatalf("state: status %d", code)
	}
	var got nao.State
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if got != state {
		t.Errorf("state mismatch: %+v", got)
	}

	_, body = get(t, s, "/api/hardware")
	var hw nao.HardwareInfo
	json.Unmarshal(body, &hw)
	if hw.BodyID != "P0000074A04S" {
		t.Errorf("BodyID = %q", hw.BodyID)
	}

	_, body = get(t, s, "/api/status")
	var st Status
	json.Unmarshal(body, &st)
	if st.Backend != "lola" || !st.Connected || st.Stats.Sent != 10 {
		t.Errorf("unexpected status %+v", st)
	}

	_, body = get(t, s, "/api/events")
	var events []Event
	json.Unmarshal(body, &events)
	if len(events) != 1 || events[0].Type != "connect" {
		t.Errorf("events = %+v", events)
	}
}

func TestEvents_RingBuffer(t *testing.T) {
	s := NewServer(":0", "sim", 1)
	for i := 0; i < maxEvents+20; i++ {
		s.AddEvent("info", "tick")
	}
	s.eventsMu.RLock()
	n := len(s.events)
	s.eventsMu.RUnlock()
	if n != maxEvents {
		t.Errorf("len(events) = %d, want %d", n, maxEvents)
	}
}

func TestStateWebSocket(t *testing.T) {
	s := NewServer(":0", "sim", 2)
	s.RunHubs()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.App().Listener(ln)
	defer s.Shutdown()

	var first nao.State
	first.Position.HeadYaw = 0.1
	s.UpdateState(first)

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/state", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	read := func() *protocol.StateData {
		t.Helper()
		ws.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := ws.ReadMessage()
		if err != nil {
			t.Fatalf("Read error: %v", err)
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			t.Fatalf("ParseMessage: %v", err)
		}
		if msg.Type != protocol.TypeState {
			t.Fatalf("Type = %s, want state", msg.Type)
		}
		sd, err := msg.GetStateData()
		if err != nil {
			t.Fatalf("GetStateData: %v", err)
		}
		return sd
	}

	// Snapshot on connect.
	if got := read(); got.State.Position.HeadYaw != 0.1 || got.Backend != "sim" {
		t.Errorf("snapshot = %+v", got)
	}

	// Wait for the hub to register the client before broadcasting.
	time.Sleep(50 * time.Millisecond)

	// With broadcastEvery=2 only every other update is pushed: updates 2
	// and 4 are skipped, update 3 is sent.
	for i := 2; i <= 4; i++ {
		var st nao.State
		st.Position.HeadYaw = float32(i) / 10
		s.UpdateState(st)
	}
	if got := read(); got.State.Position.HeadYaw != 0.3 {
		t.Errorf("HeadYaw = %v, want 0.3", got.State.Position.HeadYaw)
	}
}

func listen(t *testing.T, s *Server) string {
	t.Helper()
	s.RunHubs()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go s.App().Listener(ln)
	t.Cleanup(func() { s.Shutdown() })
	return "ws://" + ln.Addr().String()
}

func waitClients(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.stateHub.ClientCount() != n && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := s.stateHub.ClientCount(); got != n {
		t.Fatalf("ClientCount = %d, want %d", got, n)
	}
}

func TestStateWebSocket_Stats(t *testing.T) {
	s := NewServer(":0", "sim", 1)
	url := listen(t, s)

	ws, _, err := websocket.DefaultDialer.Dial(url+"/ws/state", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()
	waitClients(t, s, 1)

	s.UpdateStats(robot.LoopStats{Ticks: 83, Sent: 80, Skipped: 2, Errors: 1})

	ws.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if msg.Type != protocol.TypeStats {
		t.Fatalf("Type = %s, want stats", msg.Type)
	}
	stats, err := msg.GetStatsData()
	if err != nil {
		t.Fatalf("GetStatsData: %v", err)
	}
	want := protocol.StatsData{Ticks: 83, Sent: 80, Skipped: 2, Errors: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}

// Run with -race: dashboards coming and going while states stream in must
// not leave a pump writing to a connection its handler already released.
func TestStateWebSocket_DisconnectWhileBroadcasting(t *testing.T) {
	s := NewServer(":0", "sim", 1)
	url := listen(t, s)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		var st nao.State
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			st.Position.HeadYaw = float32(i%100) / 100
			s.UpdateState(st)
			if i%10 == 0 {
				s.UpdateStats(robot.LoopStats{Ticks: uint64(i)})
			}
			time.Sleep(100 * time.Microsecond)
		}
	}()

	for i := 0; i < 20; i++ {
		ws, _, err := websocket.DefaultDialer.Dial(url+"/ws/state", nil)
		if err != nil {
			t.Fatalf("WebSocket dial error: %v", err)
		}
		ws.SetReadDeadline(time.Now().Add(time.Second))
		if _, _, err := ws.ReadMessage(); err != nil {
			t.Fatalf("Read error: %v", err)
		}
		ws.Close()
	}

	close(stop)
	wg.Wait()
	waitClients(t, s, 0)
}

func TestUpdateState_EncodeErrorIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.Setup(&buf, "warn", false)
	t.Cleanup(func() { log.Init("info") })

	s := NewServer(":0", "sim", 1)

	var st nao.State
	st.Position.HeadYaw = float32(math.NaN())
	s.UpdateState(st)

	if !strings.Contains(buf.String(), "state not broadcast") {
		t.Errorf("missing warning, log = %q", buf.String())
	}
	if s.Status().UpdatedAt.IsZero() {
		t.Error("state should still be stored")
	}
}
