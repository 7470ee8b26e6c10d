package nao

// Battery is the battery status reported by the chest board.
type Battery struct {
	// Charge in [0, 1].
	Charge float32 `json:"charge"`
	// Current drawn from the battery in amperes.
	Current float32 `json:"current"`
	// Status is an undocumented bit field.
	Status float32 `json:"status"`
	// Temperature in degrees Celsius.
	Temperature float32 `json:"temperature"`
}

// ForceSensitiveResistorFoot holds the four pressure sensors under one foot,
// each an approximate load in kilograms.
type ForceSensitiveResistorFoot struct {
	FrontLeft  float32 `json:"front_left"`
	FrontRight float32 `json:"front_right"`
	RearLeft   float32 `json:"rear_left"`
	RearRight  float32 `json:"rear_right"`
}

// Sum returns the total load on the foot.
func (f ForceSensitiveResistorFoot) Sum() float32 {
	return f.FrontLeft + f.FrontRight + f.RearLeft + f.RearRight
}

// Avg returns the mean sensor value.
func (f ForceSensitiveResistorFoot) Avg() float32 {
	return f.Sum() / 4
}

// ForceSensitiveResistors holds the pressure sensors of both feet.
type ForceSensitiveResistors struct {
	LeftFoot  ForceSensitiveResistorFoot `json:"left_foot"`
	RightFoot ForceSensitiveResistorFoot `json:"right_foot"`
}

// Sum returns the total load on both feet.
func (f ForceSensitiveResistors) Sum() float32 {
	return f.LeftFoot.Sum() + f.RightFoot.Sum()
}

// Avg returns the mean of both feet's averages.
func (f ForceSensitiveResistors) Avg() float32 {
	return (f.LeftFoot.Avg() + f.RightFoot.Avg()) / 2
}

// Touch holds the activation of every touch sensor and bumper. Values are
// 0 when released and 1 when pressed.
type Touch struct {
	ChestBoard     float32 `json:"chest_board"`
	HeadFront      float32 `json:"head_front"`
	HeadMiddle     float32 `json:"head_middle"`
	HeadRear       float32 `json:"head_rear"`
	LeftFootLeft   float32 `json:"left_foot_left"`
	LeftFootRight  float32 `json:"left_foot_right"`
	LeftHandBack   float32 `json:"left_hand_back"`
	LeftHandLeft   float32 `json:"left_hand_left"`
	LeftHandRight  float32 `json:"left_hand_right"`
	RightFootLeft  float32 `json:"right_foot_left"`
	RightFootRight float32 `json:"right_foot_right"`
	RightHandBack  float32 `json:"right_hand_back"`
	RightHandLeft  float32 `json:"right_hand_left"`
	RightHandRight float32 `json:"right_hand_right"`
}

// SonarValues holds the distance in meters measured by each sonar. 0 means
// an error; the maximum range (5m) means no echo.
type SonarValues struct {
	Left  float32 `json:"left"`
	Right float32 `json:"right"`
}

// SonarEnabled selects which sonars fire.
type SonarEnabled struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

// DefaultSonarEnabled enables both sonars.
func DefaultSonarEnabled() SonarEnabled {
	return SonarEnabled{Left: true, Right: true}
}
