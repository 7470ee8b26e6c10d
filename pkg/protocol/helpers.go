package protocol

import (
	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewSendControlMessage creates a send_control request
func NewSendControlMessage(id string, msg nao.ControlMessage) (*Message, error) {
	m, err := NewMessage(TypeSendControl, ControlData{Control: msg})
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

// NewRequest creates a payload-less request (read_state, read_hardware,
// disconnect).
func NewRequest(msgType MessageType, id string) (*Message, error) {
	m, err := NewMessage(msgType, nil)
	if err != nil {
		return nil, err
	}
	m.ID = id
	return m, nil
}

// NewStateMessage creates a state message
func NewStateMessage(state nao.State, hw *nao.HardwareInfo, backend string) (*Message, error) {
	return NewMessage(TypeState, StateData{
		State:    state,
		Hardware: hw,
		Backend:  backend,
	})
}

// NewStatsMessage creates a loop counters message
func NewStatsMessage(stats StatsData) (*Message, error) {
	return NewMessage(TypeStats, stats)
}

// NewErrorReply answers req with an error
func NewErrorReply(req *Message, code, message string) (*Message, error) {
	return req.Reply(TypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string, ts int64) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: ts,
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetControlData extracts the control message from a send_control request
func (m *Message) GetControlData() (*ControlData, error) {
	var data ControlData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStateData extracts state data from a message
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetHardwareData extracts hardware data from a message
func (m *Message) GetHardwareData() (*HardwareData, error) {
	var data HardwareData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStatsData extracts loop counters from a message
func (m *Message) GetStatsData() (*StatsData, error) {
	var data StatsData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
