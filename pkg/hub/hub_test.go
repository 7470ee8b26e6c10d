package hub

import (
	"testing"
	"time"

	"github.com/teslashibe/go-nidhogg/pkg/protocol"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := New("test")
	go h.Run()
	deadline := time.Now().Add(time.Second)
	for !h.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !h.IsRunning() {
		t.Fatal("hub did not start")
	}
	return h
}

func TestHub_RunStop(t *testing.T) {
	h := New("test")

	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for !h.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !h.IsRunning() {
		t.Fatal("hub did not start")
	}

	h.Stop()
	h.Stop()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Run did not return after Stop")
	}
	if h.IsRunning() {
		t.Error("IsRunning should be false after Stop")
	}
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	h := New("test")
	go h.Run()
	defer h.Stop()

	if err := h.BroadcastJSON(map[string]int{"ticks": 1}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}
	h.BroadcastBinary([]byte{0x80})

	if h.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0", h.ClientCount())
	}
}

func TestHub_DropsWhenNotRunning(t *testing.T) {
	h := New("test")

	// Nobody drains the channel: the first 256 queue, the rest drop.
	for i := 0; i < 300; i++ {
		h.Broadcast(NewJSONMessage([]byte("{}")))
	}

	if got := h.Dropped(); got != 44 {
		t.Errorf("Dropped = %d, want 44", got)
	}
}

func TestHub_BroadcastJSONError(t *testing.T) {
	h := New("test")
	if err := h.BroadcastJSON(func() {}); err == nil {
		t.Error("BroadcastJSON should fail on unencodable values")
	}
}

func TestMessageConstructors(t *testing.T) {
	if m := NewJSONMessage([]byte("{}")); m.Type != JSONMessage {
		t.Errorf("Type = %v, want JSONMessage", m.Type)
	}
	if m := NewBinaryMessage([]byte{1}); m.Type != BinaryMessage {
		t.Errorf("Type = %v, want BinaryMessage", m.Type)
	}
}

func TestHub_BroadcastMessage(t *testing.T) {
	h := New("test")

	msg, err := protocol.NewStatsMessage(protocol.StatsData{Ticks: 3})
	if err != nil {
		t.Fatalf("NewStatsMessage: %v", err)
	}
	if err := h.BroadcastMessage(msg); err != nil {
		t.Fatalf("BroadcastMessage: %v", err)
	}

	got := <-h.broadcast
	if got.Type != JSONMessage {
		t.Errorf("Type = %v, want JSONMessage", got.Type)
	}
	parsed, err := protocol.ParseMessage(got.Data)
	if err != nil {
		t.Fatalf("ParseMessage: %v", err)
	}
	if parsed.Type != protocol.TypeStats {
		t.Errorf("parsed Type = %s, want stats", parsed.Type)
	}
}

// Clients are only registered here; their pumps never run, so the
// connection is never touched.

func TestClient_QueueAfterStop(t *testing.T) {
	h := startHub(t)

	c := NewClient(h, nil)
	if !c.Queue(NewJSONMessage([]byte("{}"))) {
		t.Fatal("Queue should succeed while registered")
	}

	h.Stop()
	select {
	case <-c.stop:
	case <-time.After(time.Second):
		t.Fatal("client was not stopped with the hub")
	}
	for i := 0; i < 10; i++ {
		if c.Queue(NewJSONMessage([]byte("{}"))) {
			t.Fatal("Queue should fail after the hub stopped")
		}
	}
}

func TestClient_NewAfterStop(t *testing.T) {
	h := New("test")
	h.Stop()

	c := NewClient(h, nil)
	if c.Queue(NewJSONMessage([]byte("{}"))) {
		t.Error("Queue should fail on a client of a stopped hub")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)
	defer h.Stop()

	c := NewClient(h, nil)
	msg := NewJSONMessage([]byte("{}"))
	for h.ClientCount() == 0 {
		time.Sleep(time.Millisecond)
	}

	// Nobody drains c.send, so the hub gives up on it once its buffer fills.
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() > 0 && time.Now().Before(deadline) {
		h.Broadcast(msg)
	}
	if h.ClientCount() != 0 {
		t.Fatal("slow client was not dropped")
	}
	if h.Dropped() == 0 {
		t.Error("Dropped should count the slow client")
	}
	if c.Queue(msg) {
		t.Error("Queue should fail on a dropped client")
	}
}
