// Package protocol defines the WebSocket message types shared by the remote
// backend (client and server) and the state monitor.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Client → backend server requests
	TypeSendControl  MessageType = "send_control"  // Apply a control message
	TypeReadState    MessageType = "read_state"    // Advance and read one state
	TypeReadHardware MessageType = "read_hardware" // Robot identity
	TypeDisconnect   MessageType = "disconnect"    // Release the backend

	// Backend server → client responses
	TypeAck      MessageType = "ack"      // Request succeeded, no payload
	TypeState    MessageType = "state"    // State payload; also pushed by the monitor
	TypeHardware MessageType = "hardware" // HardwareInfo payload
	TypeError    MessageType = "error"    // Request failed

	// Monitor → dashboard
	TypeStats MessageType = "stats" // Loop counters

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type MessageType `json:"type"`
	// ID pairs a response with its request. Pushed messages leave it empty.
	ID        string          `json:"id,omitempty"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// Reply builds a response to m carrying the same ID.
func (m *Message) Reply(msgType MessageType, data any) (*Message, error) {
	resp, err := NewMessage(msgType, data)
	if err != nil {
		return nil, err
	}
	resp.ID = m.ID
	return resp, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Payloads
// =============================================================================

// ControlData carries a control message.
type ControlData struct {
	Control nao.ControlMessage `json:"control"`
}

// StateData carries one state frame. Hardware is only set on monitor pushes.
type StateData struct {
	State    nao.State         `json:"state"`
	Hardware *nao.HardwareInfo `json:"hardware,omitempty"`
	Backend  string            `json:"backend,omitempty"`
}

// HardwareData carries the robot identity.
type HardwareData struct {
	Hardware nao.HardwareInfo `json:"hardware"`
}

// Error codes carried in ErrorData.
const (
	CodeBadRequest   = "bad_request"
	CodeUnsupported  = "unsupported"
	CodeBackend      = "backend_error"
	CodeDisconnected = "disconnected"
)

// ErrorData describes why the server rejected a request.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StatsData mirrors the control loop counters.
type StatsData struct {
	Ticks   uint64 `json:"ticks"`
	Sent    uint64 `json:"sent"`
	Skipped uint64 `json:"skipped"`
	Errors  uint64 `json:"errors"`
}

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
