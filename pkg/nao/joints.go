// Package nao defines the typed data model shared by every NAO V6 backend.
//
// The model is backend agnostic: the LoLA socket backend, the simulation
// backend and the remote backend all accept a ControlMessage and return a
// State. Values are plain structs with no shared mutable state; copying a
// value copies everything.
package nao

import (
	"fmt"
	"strings"
)

// JointID is the canonical position of a joint in the controller's joint
// order. Valid values are in [0, JointCount).
type JointID int

// Joints in the order used by the robot controller.
const (
	HeadYaw JointID = iota
	HeadPitch
	LeftShoulderPitch
	LeftShoulderRoll
	LeftElbowYaw
	LeftElbowRoll
	LeftWristYaw
	LeftHipYawPitch
	LeftHipRoll
	LeftHipPitch
	LeftKneePitch
	LeftAnklePitch
	LeftAnkleRoll
	RightHipRoll
	RightHipPitch
	RightKneePitch
	RightAnklePitch
	RightAnkleRoll
	RightShoulderPitch
	RightShoulderRoll
	RightElbowYaw
	RightElbowRoll
	RightWristYaw
	LeftHand
	RightHand
)

// JointCount is the number of actuated joints on a NAO V6.
const JointCount = 25

var jointNames = [JointCount]string{
	"HeadYaw",
	"HeadPitch",
	"LShoulderPitch",
	"LShoulderRoll",
	"LElbowYaw",
	"LElbowRoll",
	"LWristYaw",
	"LHipYawPitch",
	"LHipRoll",
	"LHipPitch",
	"LKneePitch",
	"LAnklePitch",
	"LAnkleRoll",
	"RHipRoll",
	"RHipPitch",
	"RKneePitch",
	"RAnklePitch",
	"RAnkleRoll",
	"RShoulderPitch",
	"RShoulderRoll",
	"RElbowYaw",
	"RElbowRoll",
	"RWristYaw",
	"LHand",
	"RHand",
}

// Valid reports whether id addresses one of the 25 joints.
func (id JointID) Valid() bool {
	return id >= 0 && id < JointCount
}

// String returns the controller name of the joint, e.g. "LHipYawPitch".
func (id JointID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("JointID(%d)", int(id))
	}
	return jointNames[id]
}

// AllJoints returns every joint in canonical order.
func AllJoints() []JointID {
	ids := make([]JointID, JointCount)
	for i := range ids {
		ids[i] = JointID(i)
	}
	return ids
}

// ParseJoint resolves a controller joint name (case-insensitive).
func ParseJoint(name string) (JointID, error) {
	for i, n := range jointNames {
		if strings.EqualFold(n, name) {
			return JointID(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJoint, name)
}

// JointArray holds one value of type T per joint.
//
// The struct fields are only a convenient view. The authoritative layout is
// the canonical order returned by Array, which is also the wire order.
type JointArray[T any] struct {
	HeadYaw   T `json:"head_yaw"`
	HeadPitch T `json:"head_pitch"`

	LeftShoulderPitch T `json:"left_shoulder_pitch"`
	LeftShoulderRoll  T `json:"left_shoulder_roll"`
	LeftElbowYaw      T `json:"left_elbow_yaw"`
	LeftElbowRoll     T `json:"left_elbow_roll"`
	LeftWristYaw      T `json:"left_wrist_yaw"`

	LeftHipYawPitch T `json:"left_hip_yaw_pitch"`
	LeftHipRoll     T `json:"left_hip_roll"`
	LeftHipPitch    T `json:"left_hip_pitch"`
	LeftKneePitch   T `json:"left_knee_pitch"`
	LeftAnklePitch  T `json:"left_ankle_pitch"`
	LeftAnkleRoll   T `json:"left_ankle_roll"`

	RightHipRoll    T `json:"right_hip_roll"`
	RightHipPitch   T `json:"right_hip_pitch"`
	RightKneePitch  T `json:"right_knee_pitch"`
	RightAnklePitch T `json:"right_ankle_pitch"`
	RightAnkleRoll  T `json:"right_ankle_roll"`

	RightShoulderPitch T `json:"right_shoulder_pitch"`
	RightShoulderRoll  T `json:"right_shoulder_roll"`
	RightElbowYaw      T `json:"right_elbow_yaw"`
	RightElbowRoll     T `json:"right_elbow_roll"`
	RightWristYaw      T `json:"right_wrist_yaw"`

	LeftHand  T `json:"left_hand"`
	RightHand T `json:"right_hand"`
}

// slots returns pointers to every field, indexed by JointID. All index based
// access goes through this table so the order lives in exactly one place.
func (j *JointArray[T]) slots() [JointCount]*T {
	return [JointCount]*T{
		&j.HeadYaw,
		&j.HeadPitch,
		&j.LeftShoulderPitch,
		&j.LeftShoulderRoll,
		&j.LeftElbowYaw,
		&j.LeftElbowRoll,
		&j.LeftWristYaw,
		&j.LeftHipYawPitch,
		&j.LeftHipRoll,
		&j.LeftHipPitch,
		&j.LeftKneePitch,
		&j.LeftAnklePitch,
		&j.LeftAnkleRoll,
		&j.RightHipRoll,
		&j.RightHipPitch,
		&j.RightKneePitch,
		&j.RightAnklePitch,
		&j.RightAnkleRoll,
		&j.RightShoulderPitch,
		&j.RightShoulderRoll,
		&j.RightElbowYaw,
		&j.RightElbowRoll,
		&j.RightWristYaw,
		&j.LeftHand,
		&j.RightHand,
	}
}

// FillJoints returns a JointArray with every joint set to v.
func FillJoints[T any](v T) JointArray[T] {
	var out [JointCount]T
	for i := range out {
		out[i] = v
	}
	return JointsFromArray(out)
}

// JointsFromArray builds a JointArray from values in canonical order.
func JointsFromArray[T any](values [JointCount]T) JointArray[T] {
	var j JointArray[T]
	for i, p := range j.slots() {
		*p = values[i]
	}
	return j
}

// Array returns the values in canonical order.
func (j JointArray[T]) Array() [JointCount]T {
	var out [JointCount]T
	for i, p := range j.slots() {
		out[i] = *p
	}
	return out
}

// Get returns the value for id, or ErrJointOutOfRange.
func (j JointArray[T]) Get(id JointID) (T, error) {
	if !id.Valid() {
		var zero T
		return zero, fmt.Errorf("%w: %d", ErrJointOutOfRange, int(id))
	}
	return *j.slots()[id], nil
}

// Set stores v for id, or returns ErrJointOutOfRange and leaves j unchanged.
func (j *JointArray[T]) Set(id JointID, v T) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %d", ErrJointOutOfRange, int(id))
	}
	*j.slots()[id] = v
	return nil
}

// Any reports whether f holds for at least one joint.
func (j JointArray[T]) Any(f func(T) bool) bool {
	for _, v := range j.Array() {
		if f(v) {
			return true
		}
	}
	return false
}

// All reports whether f holds for every joint.
func (j JointArray[T]) All(f func(T) bool) bool {
	for _, v := range j.Array() {
		if !f(v) {
			return false
		}
	}
	return true
}

// MapJoints applies f to every joint, preserving the 25-slot structure.
func MapJoints[T, U any](j JointArray[T], f func(T) U) JointArray[U] {
	in := j.Array()
	var out [JointCount]U
	for i, v := range in {
		out[i] = f(v)
	}
	return JointsFromArray(out)
}

// Pair is one element of a zipped JointArray.
type Pair[T, U any] struct {
	First  T `json:"first"`
	Second U `json:"second"`
}

// ZipJoints combines two arrays joint by joint.
func ZipJoints[T, U any](a JointArray[T], b JointArray[U]) JointArray[Pair[T, U]] {
	av, bv := a.Array(), b.Array()
	var out [JointCount]Pair[T, U]
	for i := range out {
		out[i] = Pair[T, U]{First: av[i], Second: bv[i]}
	}
	return JointsFromArray(out)
}

// Signed is the set of types DiffJoints can operate on.
type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// DiffJoints returns |a - b| for every joint.
func DiffJoints[T Signed](a, b JointArray[T]) JointArray[T] {
	return MapJoints(ZipJoints(a, b), func(p Pair[T, T]) T {
		d := p.First - p.Second
		if d < 0 {
			return -d
		}
		return d
	})
}
