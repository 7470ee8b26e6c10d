package nao

// HeadJoints is the head's yaw/pitch pair.
type HeadJoints[T any] struct {
	Yaw   T `json:"yaw"`
	Pitch T `json:"pitch"`
}

// ArmJoints is one arm without its hand actuator. Hands are grouped
// separately in HandJoints.
type ArmJoints[T any] struct {
	ShoulderPitch T `json:"shoulder_pitch"`
	ShoulderRoll  T `json:"shoulder_roll"`
	ElbowYaw      T `json:"elbow_yaw"`
	ElbowRoll     T `json:"elbow_roll"`
	WristYaw      T `json:"wrist_yaw"`
}

// LegJoints is one leg.
//
// The NAO has a single hip yaw-pitch motor driving both legs. Both leg views
// carry it so that each leg is complete on its own: the right leg's
// HipYawPitch is a copy of the left one when produced by RightLeg, and it is
// ignored when an array is rebuilt from groups.
type LegJoints[T any] struct {
	HipYawPitch T `json:"hip_yaw_pitch"`
	HipRoll     T `json:"hip_roll"`
	HipPitch    T `json:"hip_pitch"`
	KneePitch   T `json:"knee_pitch"`
	AnklePitch  T `json:"ankle_pitch"`
	AnkleRoll   T `json:"ankle_roll"`
}

// HandJoints holds the two hand actuators.
type HandJoints[T any] struct {
	Left  T `json:"left"`
	Right T `json:"right"`
}

// JointGroups is a JointArray split per limb.
type JointGroups[T any] struct {
	Head     HeadJoints[T] `json:"head"`
	LeftArm  ArmJoints[T]  `json:"left_arm"`
	RightArm ArmJoints[T]  `json:"right_arm"`
	LeftLeg  LegJoints[T]  `json:"left_leg"`
	RightLeg LegJoints[T]  `json:"right_leg"`
	Hands    HandJoints[T] `json:"hands"`
}

// Head returns the head joints.
func (j JointArray[T]) Head() HeadJoints[T] {
	return HeadJoints[T]{Yaw: j.HeadYaw, Pitch: j.HeadPitch}
}

// LeftArm returns the left arm joints.
func (j JointArray[T]) LeftArm() ArmJoints[T] {
	return ArmJoints[T]{
		ShoulderPitch: j.LeftShoulderPitch,
		ShoulderRoll:  j.LeftShoulderRoll,
		ElbowYaw:      j.LeftElbowYaw,
		ElbowRoll:     j.LeftElbowRoll,
		WristYaw:      j.LeftWristYaw,
	}
}

// RightArm returns the right arm joints.
func (j JointArray[T]) RightArm() ArmJoints[T] {
	return ArmJoints[T]{
		ShoulderPitch: j.RightShoulderPitch,
		ShoulderRoll:  j.RightShoulderRoll,
		ElbowYaw:      j.RightElbowYaw,
		ElbowRoll:     j.RightElbowRoll,
		WristYaw:      j.RightWristYaw,
	}
}

// LeftLeg returns the left leg joints.
func (j JointArray[T]) LeftLeg() LegJoints[T] {
	return LegJoints[T]{
		HipYawPitch: j.LeftHipYawPitch,
		HipRoll:     j.LeftHipRoll,
		HipPitch:    j.LeftHipPitch,
		KneePitch:   j.LeftKneePitch,
		AnklePitch:  j.LeftAnklePitch,
		AnkleRoll:   j.LeftAnkleRoll,
	}
}

// RightLeg returns the right leg joints. HipYawPitch mirrors the shared
// LeftHipYawPitch slot.
func (j JointArray[T]) RightLeg() LegJoints[T] {
	return LegJoints[T]{
		HipYawPitch: j.LeftHipYawPitch,
		HipRoll:     j.RightHipRoll,
		HipPitch:    j.RightHipPitch,
		KneePitch:   j.RightKneePitch,
		AnklePitch:  j.RightAnklePitch,
		AnkleRoll:   j.RightAnkleRoll,
	}
}

// Hands returns the hand actuators.
func (j JointArray[T]) Hands() HandJoints[T] {
	return HandJoints[T]{Left: j.LeftHand, Right: j.RightHand}
}

// Groups splits j into per-limb views.
func (j JointArray[T]) Groups() JointGroups[T] {
	return JointGroups[T]{
		Head:     j.Head(),
		LeftArm:  j.LeftArm(),
		RightArm: j.RightArm(),
		LeftLeg:  j.LeftLeg(),
		RightLeg: j.RightLeg(),
		Hands:    j.Hands(),
	}
}

// JointsFromGroups reassembles a JointArray. The left leg's HipYawPitch wins;
// g.RightLeg.HipYawPitch is ignored.
func JointsFromGroups[T any](g JointGroups[T]) JointArray[T] {
	var j JointArray[T]
	j.setHead(g.Head)
	j.setLeftArm(g.LeftArm)
	j.setRightArm(g.RightArm)
	j.setLeftLeg(g.LeftLeg)
	j.setRightLeg(g.RightLeg)
	j.setHands(g.Hands)
	return j
}

func (j *JointArray[T]) setHead(h HeadJoints[T]) {
	j.HeadYaw = h.Yaw
	j.HeadPitch = h.Pitch
}

func (j *JointArray[T]) setLeftArm(a ArmJoints[T]) {
	j.LeftShoulderPitch = a.ShoulderPitch
	j.LeftShoulderRoll = a.ShoulderRoll
	j.LeftElbowYaw = a.ElbowYaw
	j.LeftElbowRoll = a.ElbowRoll
	j.LeftWristYaw = a.WristYaw
}

func (j *JointArray[T]) setRightArm(a ArmJoints[T]) {
	j.RightShoulderPitch = a.ShoulderPitch
	j.RightShoulderRoll = a.ShoulderRoll
	j.RightElbowYaw = a.ElbowYaw
	j.RightElbowRoll = a.ElbowRoll
	j.RightWristYaw = a.WristYaw
}

func (j *JointArray[T]) setLeftLeg(l LegJoints[T]) {
	j.LeftHipYawPitch = l.HipYawPitch
	j.LeftHipRoll = l.HipRoll
	j.LeftHipPitch = l.HipPitch
	j.LeftKneePitch = l.KneePitch
	j.LeftAnklePitch = l.AnklePitch
	j.LeftAnkleRoll = l.AnkleRoll
}

// setRightLeg leaves the shared hip slot alone.
func (j *JointArray[T]) setRightLeg(l LegJoints[T]) {
	j.RightHipRoll = l.HipRoll
	j.RightHipPitch = l.HipPitch
	j.RightKneePitch = l.KneePitch
	j.RightAnklePitch = l.AnklePitch
	j.RightAnkleRoll = l.AnkleRoll
}

func (j *JointArray[T]) setHands(h HandJoints[T]) {
	j.LeftHand = h.Left
	j.RightHand = h.Right
}

// FillHead returns head joints all set to v.
func FillHead[T any](v T) HeadJoints[T] { return HeadJoints[T]{Yaw: v, Pitch: v} }

// FillArm returns arm joints all set to v.
func FillArm[T any](v T) ArmJoints[T] {
	return ArmJoints[T]{ShoulderPitch: v, ShoulderRoll: v, ElbowYaw: v, ElbowRoll: v, WristYaw: v}
}

// FillLeg returns leg joints all set to v.
func FillLeg[T any](v T) LegJoints[T] {
	return LegJoints[T]{HipYawPitch: v, HipRoll: v, HipPitch: v, KneePitch: v, AnklePitch: v, AnkleRoll: v}
}

// JointBuilder builds a JointArray fluently. Joints that are never set keep
// the builder's default value.
type JointBuilder[T any] struct {
	joints JointArray[T]
	err    error
}

// NewJointBuilder starts a builder with every joint set to def.
func NewJointBuilder[T any](def T) *JointBuilder[T] {
	return &JointBuilder[T]{joints: FillJoints(def)}
}

// Set sets a single joint. An invalid id is reported by Build.
func (b *JointBuilder[T]) Set(id JointID, v T) *JointBuilder[T] {
	if err := b.joints.Set(id, v); err != nil && b.err == nil {
		b.err = err
	}
	return b
}

// Head sets both head joints.
func (b *JointBuilder[T]) Head(h HeadJoints[T]) *JointBuilder[T] {
	b.joints.setHead(h)
	return b
}

// LeftArm sets the left arm joints.
func (b *JointBuilder[T]) LeftArm(a ArmJoints[T]) *JointBuilder[T] {
	b.joints.setLeftArm(a)
	return b
}

// RightArm sets the right arm joints.
func (b *JointBuilder[T]) RightArm(a ArmJoints[T]) *JointBuilder[T] {
	b.joints.setRightArm(a)
	return b
}

// LeftLeg sets the left leg joints, including the shared hip yaw-pitch.
func (b *JointBuilder[T]) LeftLeg(l LegJoints[T]) *JointBuilder[T] {
	b.joints.setLeftLeg(l)
	return b
}

// RightLeg sets the right leg joints. Its HipYawPitch is ignored.
func (b *JointBuilder[T]) RightLeg(l LegJoints[T]) *JointBuilder[T] {
	b.joints.setRightLeg(l)
	return b
}

// Hands sets both hands.
func (b *JointBuilder[T]) Hands(h HandJoints[T]) *JointBuilder[T] {
	b.joints.setHands(h)
	return b
}

// Build returns the assembled array and the first error from Set, if any.
func (b *JointBuilder[T]) Build() (JointArray[T], error) {
	return b.joints, b.err
}
