package nao

import "errors"

var (
	// ErrJointOutOfRange is returned for a JointID outside [0, 25).
	ErrJointOutOfRange = errors.New("nao: joint index out of range")

	// ErrUnknownJoint is returned by ParseJoint for an unrecognised name.
	ErrUnknownJoint = errors.New("nao: unknown joint name")
)
