package nao

// Ear LEDs are numbered by angle in 36 degree steps, eye LEDs in 45 degree
// steps. The logical slot of an LED is its angle divided by the step, so
// Deg108 on an ear is slot 3. Angles are measured the same way on both sides
// of the head; how each side is wired to the controller is the codec's
// concern, not the model's.

// EarLEDCount is the number of LEDs in one ear.
const EarLEDCount = 10

// EyeLEDCount is the number of RGB LEDs in one eye.
const EyeLEDCount = 8

// SkullLEDCount is the number of LEDs on top of the head.
const SkullLEDCount = 12

// LeftEar holds the intensities, in [0, 1], of the left ear LEDs.
type LeftEar struct {
	Deg0   float32 `json:"deg_0"`
	Deg36  float32 `json:"deg_36"`
	Deg72  float32 `json:"deg_72"`
	Deg108 float32 `json:"deg_108"`
	Deg144 float32 `json:"deg_144"`
	Deg180 float32 `json:"deg_180"`
	Deg216 float32 `json:"deg_216"`
	Deg252 float32 `json:"deg_252"`
	Deg288 float32 `json:"deg_288"`
	Deg324 float32 `json:"deg_324"`
}

// RightEar holds the intensities, in [0, 1], of the right ear LEDs.
type RightEar struct {
	Deg0   float32 `json:"deg_0"`
	Deg36  float32 `json:"deg_36"`
	Deg72  float32 `json:"deg_72"`
	Deg108 float32 `json:"deg_108"`
	Deg144 float32 `json:"deg_144"`
	Deg180 float32 `json:"deg_180"`
	Deg216 float32 `json:"deg_216"`
	Deg252 float32 `json:"deg_252"`
	Deg288 float32 `json:"deg_288"`
	Deg324 float32 `json:"deg_324"`
}

// Slots returns the intensities in logical (angle) order.
func (e LeftEar) Slots() [EarLEDCount]float32 {
	return [EarLEDCount]float32{e.Deg0, e.Deg36, e.Deg72, e.Deg108, e.Deg144, e.Deg180, e.Deg216, e.Deg252, e.Deg288, e.Deg324}
}

// Slots returns the intensities in logical (angle) order.
func (e RightEar) Slots() [EarLEDCount]float32 {
	return [EarLEDCount]float32{e.Deg0, e.Deg36, e.Deg72, e.Deg108, e.Deg144, e.Deg180, e.Deg216, e.Deg252, e.Deg288, e.Deg324}
}

// LeftEarFromSlots builds a LeftEar from logical order.
func LeftEarFromSlots(s [EarLEDCount]float32) LeftEar {
	return LeftEar{s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7], s[8], s[9]}
}

// RightEarFromSlots builds a RightEar from logical order.
func RightEarFromSlots(s [EarLEDCount]float32) RightEar {
	return RightEar{s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7], s[8], s[9]}
}

// FillLeftEar sets every left ear LED to v.
func FillLeftEar(v float32) LeftEar { return LeftEarFromSlots(fill10(v)) }

// FillRightEar sets every right ear LED to v.
func FillRightEar(v float32) RightEar { return RightEarFromSlots(fill10(v)) }

func fill10(v float32) [EarLEDCount]float32 {
	var s [EarLEDCount]float32
	for i := range s {
		s[i] = v
	}
	return s
}

// LeftEye holds the colors of the left eye LEDs.
type LeftEye struct {
	Deg0   RgbF32 `json:"deg_0"`
	Deg45  RgbF32 `json:"deg_45"`
	Deg90  RgbF32 `json:"deg_90"`
	Deg135 RgbF32 `json:"deg_135"`
	Deg180 RgbF32 `json:"deg_180"`
	Deg225 RgbF32 `json:"deg_225"`
	Deg270 RgbF32 `json:"deg_270"`
	Deg315 RgbF32 `json:"deg_315"`
}

// RightEye holds the colors of the right eye LEDs.
type RightEye struct {
	Deg0   RgbF32 `json:"deg_0"`
	Deg45  RgbF32 `json:"deg_45"`
	Deg90  RgbF32 `json:"deg_90"`
	Deg135 RgbF32 `json:"deg_135"`
	Deg180 RgbF32 `json:"deg_180"`
	Deg225 RgbF32 `json:"deg_225"`
	Deg270 RgbF32 `json:"deg_270"`
	Deg315 RgbF32 `json:"deg_315"`
}

// Slots returns the colors in logical (angle) order.
func (e LeftEye) Slots() [EyeLEDCount]RgbF32 {
	return [EyeLEDCount]RgbF32{e.Deg0, e.Deg45, e.Deg90, e.Deg135, e.Deg180, e.Deg225, e.Deg270, e.Deg315}
}

// Slots returns the colors in logical (angle) order.
func (e RightEye) Slots() [EyeLEDCount]RgbF32 {
	return [EyeLEDCount]RgbF32{e.Deg0, e.Deg45, e.Deg90, e.Deg135, e.Deg180, e.Deg225, e.Deg270, e.Deg315}
}

// LeftEyeFromSlots builds a LeftEye from logical order.
func LeftEyeFromSlots(s [EyeLEDCount]RgbF32) LeftEye {
	return LeftEye{s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7]}
}

// RightEyeFromSlots builds a RightEye from logical order.
func RightEyeFromSlots(s [EyeLEDCount]RgbF32) RightEye {
	return RightEye{s[0], s[1], s[2], s[3], s[4], s[5], s[6], s[7]}
}

// FillLeftEye sets every left eye LED to c.
func FillLeftEye(c RgbF32) LeftEye { return LeftEyeFromSlots(fill8(c)) }

// FillRightEye sets every right eye LED to c.
func FillRightEye(c RgbF32) RightEye { return RightEyeFromSlots(fill8(c)) }

func fill8(c RgbF32) [EyeLEDCount]RgbF32 {
	var s [EyeLEDCount]RgbF32
	for i := range s {
		s[i] = c
	}
	return s
}

// Skull holds the intensities of the white LEDs on top of the head.
type Skull struct {
	LeftFront0  float32 `json:"left_front_0"`
	LeftFront1  float32 `json:"left_front_1"`
	LeftMiddle0 float32 `json:"left_middle_0"`
	LeftRear0   float32 `json:"left_rear_0"`
	LeftRear1   float32 `json:"left_rear_1"`
	LeftRear2   float32 `json:"left_rear_2"`

	RightFront0  float32 `json:"right_front_0"`
	RightFront1  float32 `json:"right_front_1"`
	RightMiddle0 float32 `json:"right_middle_0"`
	RightRear0   float32 `json:"right_rear_0"`
	RightRear1   float32 `json:"right_rear_1"`
	RightRear2   float32 `json:"right_rear_2"`
}

// FillSkull sets every skull LED to v.
func FillSkull(v float32) Skull {
	return Skull{v, v, v, v, v, v, v, v, v, v, v, v}
}
