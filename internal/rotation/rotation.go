package rotation

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// DegenerateNorm is the quaternion norm below which a quaternion (or a mean
// of quaternions) is treated as unrepresentable and replaced by identity.
const DegenerateNorm = 1e-12

// Angles is a roll/pitch/yaw triple. Units depend on the producer: the
// decomposition functions return radians, Degrees converts.
type Angles struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Degrees returns a copy of a with every angle converted from radians.
func (a Angles) Degrees() Angles {
	return Angles{
		Roll:  a.Roll * 180.0 / math.Pi,
		Pitch: a.Pitch * 180.0 / math.Pi,
		Yaw:   a.Yaw * 180.0 / math.Pi,
	}
}

// Radians returns a copy of a with every angle converted from degrees.
func (a Angles) Radians() Angles {
	return Angles{
		Roll:  a.Roll * math.Pi / 180.0,
		Pitch: a.Pitch * math.Pi / 180.0,
		Yaw:   a.Yaw * math.Pi / 180.0,
	}
}

// GimbalCase identifies which decomposition branch a matrix falls into.
type GimbalCase int

const (
	// Regular is the non-degenerate case: roll and yaw are separable.
	Regular GimbalCase = iota
	// LockPositive is pitch at +90°: roll is forced to 0 and yaw absorbs it.
	LockPositive
	// LockNegative is pitch at -90°: roll is forced to 0 and yaw absorbs it.
	LockNegative
)

func (g GimbalCase) String() string {
	switch g {
	case Regular:
		return "regular"
	case LockPositive:
		return "lock(+90°)"
	case LockNegative:
		return "lock(-90°)"
	default:
		return "unknown"
	}
}

// ClassifyGimbal maps sin(pitch) to its decomposition branch. Values at or
// beyond ±1 are locked; NaN falls through to Regular.
func ClassifyGimbal(sinPitch float64) GimbalCase {
	switch {
	case sinPitch >= 1:
		return LockPositive
	case sinPitch <= -1:
		return LockNegative
	default:
		return Regular
	}
}

// Identity returns a new 3×3 identity matrix.
func Identity() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
}

// QuaternionToMatrix converts q to a rotation matrix. q is normalised first;
// a quaternion with norm below DegenerateNorm yields identity.
func QuaternionToMatrix(q quat.Number) *mat.Dense {
	n := quat.Abs(q)
	if n < DegenerateNorm {
		return Identity()
	}
	w, x, y, z := q.Real/n, q.Imag/n, q.Jmag/n, q.Kmag/n

	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

// MatrixToRPYExtrinsic decomposes r, assumed to be Rz(yaw)·Ry(pitch)·Rx(roll)
// about fixed world axes, into radians.
func MatrixToRPYExtrinsic(r mat.Matrix) Angles {
	sinPitch := -r.At(2, 0)

	switch ClassifyGimbal(sinPitch) {
	case LockPositive:
		return Angles{Roll: 0, Pitch: math.Pi / 2, Yaw: math.Atan2(r.At(0, 1), r.At(1, 1))}
	case LockNegative:
		return Angles{Roll: 0, Pitch: -math.Pi / 2, Yaw: math.Atan2(-r.At(0, 1), r.At(1, 1))}
	}

	return Angles{
		Roll:  math.Atan2(r.At(2, 1), r.At(2, 2)),
		Pitch: math.Asin(sinPitch),
		Yaw:   math.Atan2(r.At(1, 0), r.At(0, 0)),
	}
}

// MatrixToRPYIntrinsic decomposes r into roll about X, then pitch about the
// rotated Y, then yaw about the twice-rotated Z, in radians. The sign
// conventions mirror MatrixToRPYExtrinsic; RPYToMatrixIntrinsic inverts it.
func MatrixToRPYIntrinsic(r mat.Matrix) Angles {
	sinPitch := r.At(2, 0)

	switch ClassifyGimbal(sinPitch) {
	case LockPositive:
		return Angles{Roll: 0, Pitch: math.Pi / 2, Yaw: math.Atan2(r.At(0, 1), r.At(1, 1))}
	case LockNegative:
		return Angles{Roll: 0, Pitch: -math.Pi / 2, Yaw: math.Atan2(-r.At(0, 1), r.At(1, 1))}
	}

	return Angles{
		Roll:  math.Atan2(-r.At(2, 1), r.At(2, 2)),
		Pitch: math.Asin(sinPitch),
		Yaw:   math.Atan2(-r.At(1, 0), r.At(0, 0)),
	}
}

// RotX returns the elementary rotation by angle radians about X.
func RotX(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	})
}

// RotY returns the elementary rotation by angle radians about Y.
func RotY(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(3, 3, []float64{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	})
}

// RotZ returns the elementary rotation by angle radians about Z.
func RotZ(angle float64) *mat.Dense {
	c, s := math.Cos(angle), math.Sin(angle)
	return mat.NewDense(3, 3, []float64{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	})
}

// RPYToMatrix composes Rz(yaw)·Ry(pitch)·Rx(roll). It is the inverse of
// MatrixToRPYExtrinsic away from gimbal lock.
func RPYToMatrix(roll, pitch, yaw float64) *mat.Dense {
	var zy, out mat.Dense
	zy.Mul(RotZ(yaw), RotY(pitch))
	out.Mul(&zy, RotX(roll))
	return &out
}

// RPYToMatrixIntrinsic rebuilds the matrix that MatrixToRPYIntrinsic
// decomposes: (Rx(roll)·Ry(pitch)·Rz(yaw))ᵀ.
func RPYToMatrixIntrinsic(roll, pitch, yaw float64) *mat.Dense {
	var xy, xyz mat.Dense
	xy.Mul(RotX(roll), RotY(pitch))
	xyz.Mul(&xy, RotZ(yaw))
	return mat.DenseCopyOf(xyz.T())
}

// FrobeniusDistance returns ‖a − b‖ under the Frobenius norm.
func FrobeniusDistance(a, b mat.Matrix) float64 {
	var d mat.Dense
	d.Sub(a, b)
	return mat.Norm(&d, 2)
}

// IsRotation reports whether r is orthonormal with determinant +1 within tol.
func IsRotation(r mat.Matrix, tol float64) bool {
	rows, cols := r.Dims()
	if rows != 3 || cols != 3 {
		return false
	}
	var rtr mat.Dense
	rtr.Mul(r.T(), r)
	if !mat.EqualApprox(&rtr, Identity(), tol) {
		return false
	}
	return scalar.EqualWithinAbs(mat.Det(r), 1, tol)
}

// Apply rotates the vector (x, y, z) by r.
func Apply(r mat.Matrix, x, y, z float64) (rx, ry, rz float64) {
	rx = r.At(0, 0)*x + r.At(0, 1)*y + r.At(0, 2)*z
	ry = r.At(1, 0)*x + r.At(1, 1)*y + r.At(1, 2)*z
	rz = r.At(2, 0)*x + r.At(2, 1)*y + r.At(2, 2)*z
	return
}
