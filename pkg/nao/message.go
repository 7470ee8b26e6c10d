package nao

// UnsetPosition is the position sentinel NewControlMessage writes to every
// joint.
const UnsetPosition float32 = -1

// ControlMessage is one outbound actuator frame.
type ControlMessage struct {
	Position  JointArray[float32] `json:"position"`
	Stiffness JointArray[float32] `json:"stiffness"`
	Sonar     SonarEnabled        `json:"sonar"`

	LeftEar   LeftEar  `json:"left_ear"`
	RightEar  RightEar `json:"right_ear"`
	Chest     RgbF32   `json:"chest"`
	LeftEye   LeftEye  `json:"left_eye"`
	RightEye  RightEye `json:"right_eye"`
	LeftFoot  RgbF32   `json:"left_foot"`
	RightFoot RgbF32   `json:"right_foot"`
	Skull     Skull    `json:"skull"`
}

// NewControlMessage returns the default control message: positions at the
// UnsetPosition sentinel, zero stiffness, both sonars enabled, LEDs off.
func NewControlMessage() ControlMessage {
	return ControlMessage{
		Position: FillJoints(UnsetPosition),
		Sonar:    DefaultSonarEnabled(),
	}
}

// State is one inbound sensor frame.
type State struct {
	Position    JointArray[float32] `json:"position"`
	Stiffness   JointArray[float32] `json:"stiffness"`
	Temperature JointArray[float32] `json:"temperature"`
	Current     JointArray[float32] `json:"current"`
	Status      JointArray[int32]   `json:"status"`

	Battery                 Battery                 `json:"battery"`
	ForceSensitiveResistors ForceSensitiveResistors `json:"force_sensitive_resistors"`
	Touch                   Touch                   `json:"touch"`

	// Accelerometer in m/s², z up.
	Accelerometer Vector3[float32] `json:"accelerometer"`
	// Gyroscope in rad/s, z up.
	Gyroscope Vector3[float32] `json:"gyroscope"`
	// Angles are the torso inclination (x, y) in radians.
	Angles Vector2[float32] `json:"angles"`
	Sonar  SonarValues      `json:"sonar"`
}

// HardwareInfo identifies the physical robot. It is carried in every state
// frame but is constant for a connection.
type HardwareInfo struct {
	BodyID      string `json:"body_id"`
	BodyVersion string `json:"body_version"`
	HeadID      string `json:"head_id"`
	HeadVersion string `json:"head_version"`
}

// ControlBuilder assembles a ControlMessage starting from NewControlMessage.
type ControlBuilder struct {
	msg ControlMessage
}

// BuildControl starts a builder with default values.
func BuildControl() *ControlBuilder {
	return &ControlBuilder{msg: NewControlMessage()}
}

// Position sets the target angle of every joint, in radians.
func (b *ControlBuilder) Position(j JointArray[float32]) *ControlBuilder {
	b.msg.Position = j
	return b
}

// Stiffness sets every joint's stiffness in [0, 1]. 0 leaves a joint limp.
func (b *ControlBuilder) Stiffness(j JointArray[float32]) *ControlBuilder {
	b.msg.Stiffness = j
	return b
}

// Sonar switches the left and right sonar emitters.
func (b *ControlBuilder) Sonar(s SonarEnabled) *ControlBuilder {
	b.msg.Sonar = s
	return b
}

// LeftEar sets the left ear's ten blue LEDs.
func (b *ControlBuilder) LeftEar(e LeftEar) *ControlBuilder {
	b.msg.LeftEar = e
	return b
}

// RightEar sets the right ear's ten blue LEDs.
func (b *ControlBuilder) RightEar(e RightEar) *ControlBuilder {
	b.msg.RightEar = e
	return b
}

// Chest sets the chest button LED.
func (b *ControlBuilder) Chest(c RgbF32) *ControlBuilder {
	b.msg.Chest = c
	return b
}

// LeftEye sets the eight LEDs around the left eye.
func (b *ControlBuilder) LeftEye(e LeftEye) *ControlBuilder {
	b.msg.LeftEye = e
	return b
}

// RightEye sets the eight LEDs around the right eye.
func (b *ControlBuilder) RightEye(e RightEye) *ControlBuilder {
	b.msg.RightEye = e
	return b
}

// LeftFoot sets the left foot LED.
func (b *ControlBuilder) LeftFoot(c RgbF32) *ControlBuilder {
	b.msg.LeftFoot = c
	return b
}

// RightFoot sets the right foot LED.
func (b *ControlBuilder) RightFoot(c RgbF32) *ControlBuilder {
	b.msg.RightFoot = c
	return b
}

// Skull sets the twelve blue LEDs on top of the head.
func (b *ControlBuilder) Skull(s Skull) *ControlBuilder {
	b.msg.Skull = s
	return b
}

// Build returns the message. The builder can keep being used afterwards.
func (b *ControlBuilder) Build() ControlMessage {
	return b.msg
}
