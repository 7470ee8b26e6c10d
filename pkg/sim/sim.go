// Package sim is an in-process stand-in for the robot. It follows the same
// Backend contract as the LoLA socket, so motion code can be exercised on a
// laptop or in CI.
//
// The model is kinematic only: stiff joints slew toward their targets at a
// bounded rate, motors warm up under load, the robot always stands upright
// on flat ground. It is driven by ReadState calls, not by a wall clock, so
// runs are reproducible.
package sim

import (
	"errors"
	"math"
	"time"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
)

// ErrDisconnected is returned by every call after Disconnect.
var ErrDisconnected = errors.New("sim: backend disconnected")

// Defaults for Config fields left at zero.
const (
	DefaultStep             = 12 * time.Millisecond // LoLA's 83 Hz cycle
	DefaultMaxJointVelocity = 6.0                   // rad/s at full stiffness
	DefaultSonarRange       = 1.5                   // m
	DefaultMass             = 5.3                   // kg
	DefaultAmbient          = 27.0                  // °C
	StandardGravity         = 9.81
)

// Motor temperature model: first order toward ambient + heatPerStiffness,
// with time constant 1/heatRate seconds.
const (
	heatPerStiffness = 45.0
	heatRate         = 0.02

	batteryCapacity = 2.25 * 3600 // As
	holdCurrent     = 0.15        // A per joint at full stiffness
	moveCurrent     = 0.6         // A per joint moving at full speed
)

// DefaultHardware is the identity reported by a simulated robot.
var DefaultHardware = nao.HardwareInfo{
	BodyID:      "SIM00000000000000000",
	BodyVersion: "6.0.0",
	HeadID:      "SIM00000000000000001",
	HeadVersion: "6.0.0",
}

// Config tunes the model. Zero fields take the defaults above.
type Config struct {
	Step             time.Duration
	MaxJointVelocity float32
	SonarRange       float32
	Mass             float32
	// Ambient temperature in °C; nil takes DefaultAmbient. 0 °C is valid.
	Ambient  *float32
	Hardware nao.HardwareInfo
	// Initial joint positions; zero is the straight "zero pose".
	Initial nao.JointArray[float32]
}

func (c Config) withDefaults() Config {
	if c.Step <= 0 {
		c.Step = DefaultStep
	}
	if c.MaxJointVelocity <= 0 {
		c.MaxJointVelocity = DefaultMaxJointVelocity
	}
	if c.SonarRange <= 0 {
		c.SonarRange = DefaultSonarRange
	}
	if c.Mass <= 0 {
		c.Mass = DefaultMass
	}
	ambient := float32(DefaultAmbient)
	if c.Ambient != nil {
		ambient = *c.Ambient
	}
	c.Ambient = &ambient
	if c.Hardware == (nao.HardwareInfo{}) {
		c.Hardware = DefaultHardware
	}
	return c
}

// Backend is a simulated robot. Like every backend it is not safe for
// concurrent use.
type Backend struct {
	cfg Config

	position    [nao.JointCount]float32
	target      [nao.JointCount]float32
	stiffness   [nao.JointCount]float32
	temperature [nao.JointCount]float32
	current     [nao.JointCount]float32

	charge  float32
	sonar   nao.SonarEnabled
	touch   nao.Touch
	control nao.ControlMessage

	ticks        uint64
	disconnected bool
}

var _ robot.InfoBackend = (*Backend)(nil)

// New returns a connected simulator at rest: joints limp at cfg.Initial,
// motors at ambient temperature, battery full.
func New(cfg Config) *Backend {
	cfg = cfg.withDefaults()
	b := &Backend{
		cfg:     cfg,
		charge:  1,
		sonar:   nao.DefaultSonarEnabled(),
		control: nao.NewControlMessage(),
	}
	b.position = cfg.Initial.Array()
	b.target = b.position
	for i := range b.temperature {
		b.temperature[i] = *cfg.Ambient
	}
	return b
}

// Connect never fails; it has the shape of a robot.ConnectFunc body.
func Connect(cfg Config) (*Backend, error) {
	b := New(cfg)
	log.Info("simulator started", "body_id", b.cfg.Hardware.BodyID, "step", b.cfg.Step)
	return b, nil
}

// SendControl sets joint targets and stiffness. A position at
// nao.UnsetPosition keeps the joint's previous target. Stiffness is clamped
// to [0, 1].
func (b *Backend) SendControl(msg nao.ControlMessage) error {
	if b.disconnected {
		return ErrDisconnected
	}
	pos := msg.Position.Array()
	stiff := msg.Stiffness.Array()
	for i := range pos {
		if pos[i] != nao.UnsetPosition {
			b.target[i] = pos[i]
		}
		b.stiffness[i] = clamp(stiff[i], 0, 1)
	}
	b.sonar = msg.Sonar
	b.control = msg
	return nil
}

// ReadState advances the model by one step and reports it.
func (b *Backend) ReadState() (nao.State, error) {
	if b.disconnected {
		return nao.State{}, ErrDisconnected
	}
	b.step()
	return b.state(), nil
}

// ReadHardwareInfo reports the configured identity without advancing.
func (b *Backend) ReadHardwareInfo() (nao.HardwareInfo, error) {
	if b.disconnected {
		return nao.HardwareInfo{}, ErrDisconnected
	}
	return b.cfg.Hardware, nil
}

// Disconnect stops the simulator.
func (b *Backend) Disconnect() error {
	if !b.disconnected {
		b.disconnected = true
		log.Info("simulator stopped", "ticks", b.ticks)
	}
	return nil
}

// SetTouch injects touch sensor readings, e.g. a head tap.
func (b *Backend) SetTouch(t nao.Touch) {
	b.touch = t
}

// LastControl returns the last accepted control message, LEDs included.
func (b *Backend) LastControl() nao.ControlMessage {
	return b.control
}

// Elapsed is the simulated time so far.
func (b *Backend) Elapsed() time.Duration {
	return time.Duration(b.ticks) * b.cfg.Step
}

func (b *Backend) step() {
	dt := float32(b.cfg.Step.Seconds())
	var total float32

	for i := range b.position {
		s := b.stiffness[i]
		moved := float32(0)
		if s > 0 {
			limit := b.cfg.MaxJointVelocity * s * dt
			delta := clamp(b.target[i]-b.position[i], -limit, limit)
			b.position[i] += delta
			moved = abs(delta) / (b.cfg.MaxJointVelocity * dt)
		}

		b.current[i] = s*holdCurrent + moved*moveCurrent
		total += b.current[i]

		goal := *b.cfg.Ambient + heatPerStiffness*s
		b.temperature[i] += (goal - b.temperature[i]) * float32(1-math.Exp(-heatRate*float64(dt)))
	}

	b.charge = clamp(b.charge-total*dt/batteryCapacity, 0, 1)
	b.ticks++
}

func (b *Backend) state() nao.State {
	var status [nao.JointCount]int32
	for i, t := range b.temperature {
		status[i] = motorStatus(t)
	}

	perSensor := b.cfg.Mass / 8
	foot := nao.ForceSensitiveResistorFoot{
		FrontLeft: perSensor, FrontRight: perSensor, RearLeft: perSensor, RearRight: perSensor,
	}

	var sonar nao.SonarValues
	if b.sonar.Left {
		sonar.Left = b.cfg.SonarRange
	}
	if b.sonar.Right {
		sonar.Right = b.cfg.SonarRange
	}

	var total float32
	for _, c := range b.current {
		total += c
	}

	return nao.State{
		Position:    nao.JointsFromArray(b.position),
		Stiffness:   nao.JointsFromArray(b.stiffness),
		Temperature: nao.JointsFromArray(b.temperature),
		Current:     nao.JointsFromArray(b.current),
		Status:      nao.JointsFromArray(status),
		Battery: nao.Battery{
			Charge:      b.charge,
			Current:     -total,
			Temperature: *b.cfg.Ambient + 3,
		},
		ForceSensitiveResistors: nao.ForceSensitiveResistors{LeftFoot: foot, RightFoot: foot},
		Touch:                   b.touch,
		Accelerometer:           nao.Vector3[float32]{Z: StandardGravity},
		Sonar:                   sonar,
	}
}

// motorStatus maps a temperature to the controller's 0 (ok) .. 3 (critical)
// scale.
func motorStatus(t float32) int32 {
	switch {
	case t >= 80:
		return 3
	case t >= 75:
		return 2
	case t >= 70:
		return 1
	default:
		return 0
	}
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
