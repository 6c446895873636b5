package utils

import "errors"

var (
	// ErrInvalidSpaceConfiguration is returned when a space is built with an
	// unsupported polynomial order or DOF ordering, or when a space tuple
	// does not match the geometric dimension of its mesh.
	ErrInvalidSpaceConfiguration = errors.New("invalid space configuration")
	// ErrShapeMismatch is returned when a caller supplied output buffer does
	// not have the exact required dimensions.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInconsistentMeshTopology is returned when connectivity tables refer
	// to entities outside their valid ranges.
	ErrInconsistentMeshTopology = errors.New("inconsistent mesh topology")
	// ErrSelectionOutOfRange is returned when an element selector reaches
	// past the number of entities it is applied to.
	ErrSelectionOutOfRange = errors.New("selection out of range")
)
