package lola

import "github.com/teslashibe/go-nidhogg/pkg/nao"

// Wire layouts. Each table maps a wire position to the logical slot stored
// there; encode and decode both read the same table, so they cannot drift
// apart.
//
// The eye tables are one of two conventions found on NAO code bases and
// still need checking against hardware (see DESIGN.md).
var (
	leftEarWire  = [nao.EarLEDCount]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	rightEarWire = [nao.EarLEDCount]int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}

	// Logical eye slot i is the LED at 45*i degrees.
	leftEyeWire  = [nao.EyeLEDCount]int{1, 0, 7, 6, 5, 4, 3, 2}
	rightEyeWire = [nao.EyeLEDCount]int{0, 1, 2, 3, 4, 5, 6, 7}
)

// skullWire walks around the head: left front to left rear, then right rear
// to right front.
var skullWire = [nao.SkullLEDCount]func(*nao.Skull) *float32{
	func(s *nao.Skull) *float32 { return &s.LeftFront0 },
	func(s *nao.Skull) *float32 { return &s.LeftFront1 },
	func(s *nao.Skull) *float32 { return &s.LeftMiddle0 },
	func(s *nao.Skull) *float32 { return &s.LeftRear0 },
	func(s *nao.Skull) *float32 { return &s.LeftRear1 },
	func(s *nao.Skull) *float32 { return &s.LeftRear2 },
	func(s *nao.Skull) *float32 { return &s.RightRear2 },
	func(s *nao.Skull) *float32 { return &s.RightRear1 },
	func(s *nao.Skull) *float32 { return &s.RightRear0 },
	func(s *nao.Skull) *float32 { return &s.RightMiddle0 },
	func(s *nao.Skull) *float32 { return &s.RightFront0 },
	func(s *nao.Skull) *float32 { return &s.RightFront1 },
}

// touchWire is the controller's touch sensor order.
var touchWire = [14]func(*nao.Touch) *float32{
	func(t *nao.Touch) *float32 { return &t.ChestBoard },
	func(t *nao.Touch) *float32 { return &t.HeadFront },
	func(t *nao.Touch) *float32 { return &t.HeadMiddle },
	func(t *nao.Touch) *float32 { return &t.HeadRear },
	func(t *nao.Touch) *float32 { return &t.LeftFootLeft },
	func(t *nao.Touch) *float32 { return &t.LeftFootRight },
	func(t *nao.Touch) *float32 { return &t.LeftHandBack },
	func(t *nao.Touch) *float32 { return &t.LeftHandLeft },
	func(t *nao.Touch) *float32 { return &t.LeftHandRight },
	func(t *nao.Touch) *float32 { return &t.RightFootLeft },
	func(t *nao.Touch) *float32 { return &t.RightFootRight },
	func(t *nao.Touch) *float32 { return &t.RightHandBack },
	func(t *nao.Touch) *float32 { return &t.RightHandLeft },
	func(t *nao.Touch) *float32 { return &t.RightHandRight },
}

// EncodeJoints flattens a JointArray into wire order.
func EncodeJoints[T any](j nao.JointArray[T]) [nao.JointCount]T {
	return j.Array()
}

// DecodeJoints rebuilds a JointArray from wire order.
func DecodeJoints[T any](wire [nao.JointCount]T) nao.JointArray[T] {
	return nao.JointsFromArray(wire)
}

// EncodeLeftEar flattens the left ear into its 10 wire slots.
func EncodeLeftEar(e nao.LeftEar) [nao.EarLEDCount]float32 {
	return earToWire(leftEarWire, e.Slots())
}

// DecodeLeftEar is the inverse of EncodeLeftEar.
func DecodeLeftEar(wire [nao.EarLEDCount]float32) nao.LeftEar {
	return nao.LeftEarFromSlots(earFromWire(leftEarWire, wire))
}

// EncodeRightEar flattens the right ear. The right ear winds the other way,
// so wire[i] holds logical slot 9-i.
func EncodeRightEar(e nao.RightEar) [nao.EarLEDCount]float32 {
	return earToWire(rightEarWire, e.Slots())
}

// DecodeRightEar is the inverse of EncodeRightEar.
func DecodeRightEar(wire [nao.EarLEDCount]float32) nao.RightEar {
	return nao.RightEarFromSlots(earFromWire(rightEarWire, wire))
}

func earToWire(table [nao.EarLEDCount]int, logical [nao.EarLEDCount]float32) [nao.EarLEDCount]float32 {
	var wire [nao.EarLEDCount]float32
	for i, slot := range table {
		wire[i] = logical[slot]
	}
	return wire
}

func earFromWire(table [nao.EarLEDCount]int, wire [nao.EarLEDCount]float32) [nao.EarLEDCount]float32 {
	var logical [nao.EarLEDCount]float32
	for i, slot := range table {
		logical[slot] = wire[i]
	}
	return logical
}

// EncodeLeftEye flattens the left eye into 24 floats: 8 reds, 8 greens,
// 8 blues, each block in leftEyeWire order.
func EncodeLeftEye(e nao.LeftEye) [3 * nao.EyeLEDCount]float32 {
	return eyeToWire(leftEyeWire, e.Slots())
}

// DecodeLeftEye is the inverse of EncodeLeftEye.
func DecodeLeftEye(wire [3 * nao.EyeLEDCount]float32) nao.LeftEye {
	return nao.LeftEyeFromSlots(eyeFromWire(leftEyeWire, wire))
}

// EncodeRightEye flattens the right eye like EncodeLeftEye, using rightEyeWire.
func EncodeRightEye(e nao.RightEye) [3 * nao.EyeLEDCount]float32 {
	return eyeToWire(rightEyeWire, e.Slots())
}

// DecodeRightEye is the inverse of EncodeRightEye.
func DecodeRightEye(wire [3 * nao.EyeLEDCount]float32) nao.RightEye {
	return nao.RightEyeFromSlots(eyeFromWire(rightEyeWire, wire))
}

func eyeToWire(table [nao.EyeLEDCount]int, logical [nao.EyeLEDCount]nao.RgbF32) [3 * nao.EyeLEDCount]float32 {
	const n = nao.EyeLEDCount
	var wire [3 * n]float32
	for i, slot := range table {
		c := logical[slot]
		wire[i] = c.Red
		wire[n+i] = c.Green
		wire[2*n+i] = c.Blue
	}
	return wire
}

func eyeFromWire(table [nao.EyeLEDCount]int, wire [3 * nao.EyeLEDCount]float32) [nao.EyeLEDCount]nao.RgbF32 {
	const n = nao.EyeLEDCount
	var logical [n]nao.RgbF32
	for i, slot := range table {
		logical[slot] = nao.RgbF32{Red: wire[i], Green: wire[n+i], Blue: wire[2*n+i]}
	}
	return logical
}

// EncodeSkull flattens the skull LEDs in walk-around order.
func EncodeSkull(s nao.Skull) [nao.SkullLEDCount]float32 {
	var wire [nao.SkullLEDCount]float32
	for i, field := range skullWire {
		wire[i] = *field(&s)
	}
	return wire
}

// DecodeSkull is the inverse of EncodeSkull.
func DecodeSkull(wire [nao.SkullLEDCount]float32) nao.Skull {
	var s nao.Skull
	for i, field := range skullWire {
		*field(&s) = wire[i]
	}
	return s
}

// EncodeRgb flattens a color to [r, g, b].
func EncodeRgb(c nao.RgbF32) [3]float32 {
	return [3]float32{c.Red, c.Green, c.Blue}
}

// DecodeRgb is the inverse of EncodeRgb.
func DecodeRgb(wire [3]float32) nao.RgbF32 {
	return nao.RgbF32{Red: wire[0], Green: wire[1], Blue: wire[2]}
}

// EncodeSonarEnabled flattens to [left, right].
func EncodeSonarEnabled(s nao.SonarEnabled) [2]bool {
	return [2]bool{s.Left, s.Right}
}

// DecodeSonarEnabled is the inverse of EncodeSonarEnabled.
func DecodeSonarEnabled(wire [2]bool) nao.SonarEnabled {
	return nao.SonarEnabled{Left: wire[0], Right: wire[1]}
}

// EncodeSonarValues flattens to [left, right].
func EncodeSonarValues(s nao.SonarValues) [2]float32 {
	return [2]float32{s.Left, s.Right}
}

// DecodeSonarValues is the inverse of EncodeSonarValues.
func DecodeSonarValues(wire [2]float32) nao.SonarValues {
	return nao.SonarValues{Left: wire[0], Right: wire[1]}
}

// EncodeBattery flattens to [charge, current, status, temperature].
func EncodeBattery(b nao.Battery) [4]float32 {
	return [4]float32{b.Charge, b.Current, b.Status, b.Temperature}
}

// DecodeBattery is the inverse of EncodeBattery.
func DecodeBattery(wire [4]float32) nao.Battery {
	return nao.Battery{Charge: wire[0], Current: wire[1], Status: wire[2], Temperature: wire[3]}
}

// EncodeFSR flattens both feet, left foot first, each as front-left,
// front-right, rear-left, rear-right.
func EncodeFSR(f nao.ForceSensitiveResistors) [8]float32 {
	l, r := f.LeftFoot, f.RightFoot
	return [8]float32{
		l.FrontLeft, l.FrontRight, l.RearLeft, l.RearRight,
		r.FrontLeft, r.FrontRight, r.RearLeft, r.RearRight,
	}
}

// DecodeFSR is the inverse of EncodeFSR.
func DecodeFSR(wire [8]float32) nao.ForceSensitiveResistors {
	return nao.ForceSensitiveResistors{
		LeftFoot:  nao.ForceSensitiveResistorFoot{FrontLeft: wire[0], FrontRight: wire[1], RearLeft: wire[2], RearRight: wire[3]},
		RightFoot: nao.ForceSensitiveResistorFoot{FrontLeft: wire[4], FrontRight: wire[5], RearLeft: wire[6], RearRight: wire[7]},
	}
}

// EncodeTouch flattens the touch sensors in controller order.
func EncodeTouch(t nao.Touch) [14]float32 {
	var wire [14]float32
	for i, field := range touchWire {
		wire[i] = *field(&t)
	}
	return wire
}

// DecodeTouch is the inverse of EncodeTouch.
func DecodeTouch(wire [14]float32) nao.Touch {
	var t nao.Touch
	for i, field := range touchWire {
		*field(&t) = wire[i]
	}
	return t
}

// EncodeVector3 flattens to [x, y, z].
func EncodeVector3(v nao.Vector3[float32]) [3]float32 { return [3]float32{v.X, v.Y, v.Z} }

// DecodeVector3 is the inverse of EncodeVector3.
func DecodeVector3(wire [3]float32) nao.Vector3[float32] {
	return nao.Vector3[float32]{X: wire[0], Y: wire[1], Z: wire[2]}
}

// EncodeVector2 flattens to [x, y].
func EncodeVector2(v nao.Vector2[float32]) [2]float32 { return [2]float32{v.X, v.Y} }

// DecodeVector2 is the inverse of EncodeVector2.
func DecodeVector2(wire [2]float32) nao.Vector2[float32] {
	return nao.Vector2[float32]{X: wire[0], Y: wire[1]}
}
