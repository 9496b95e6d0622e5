package linalg

import "errors"

// Domain errors for vector and operator arithmetic.
var (
	// ErrDimensionMismatch indicates operands of different lengths or widths.
	ErrDimensionMismatch = errors.New("linalg: dimension mismatch")

	// ErrOutOfBandAccess indicates an operator index pair with |row-col| > 1.
	ErrOutOfBandAccess = errors.New("linalg: out of band access")

	// ErrIndexOutOfRange indicates an indexed read or write outside valid bounds.
	ErrIndexOutOfRange = errors.New("linalg: index out of range")

	// ErrInvalidGridGeometry indicates non-positive grid dimensions.
	ErrInvalidGridGeometry = errors.New("linalg: invalid grid geometry")

	// ErrZeroPivot indicates a zero diagonal entry met during a solve.
	ErrZeroPivot = errors.New("linalg: zero pivot")
)
