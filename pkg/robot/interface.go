// Package robot defines what a NAO backend can do and how callers connect to
// one.
//
// Backends are described by small, focused interfaces that can be composed
// as needed. Consumers should depend only on the interfaces they actually
// use: a state logger needs a StateReader, a motion loop needs a Backend.
package robot

import "github.com/teslashibe/go-nidhogg/pkg/nao"

// ControlSender sends one actuator frame to the robot.
type ControlSender interface {
	SendControl(msg nao.ControlMessage) error
}

// StateReader blocks until the next sensor frame arrives.
type StateReader interface {
	ReadState() (nao.State, error)
}

// HardwareInfoReader reports the identity of the connected robot.
type HardwareInfoReader interface {
	ReadHardwareInfo() (nao.HardwareInfo, error)
}

// Disconnector releases the backend's transport.
type Disconnector interface {
	Disconnect() error
}

// Backend is the contract shared by the real robot, the simulator and the
// remote simulator. Each backend owns its transport exclusively and is not
// safe for concurrent use.
type Backend interface {
	ControlSender
	StateReader
	Disconnector
}

// InfoBackend is a Backend that can also identify the robot.
type InfoBackend interface {
	Backend
	HardwareInfoReader
}
