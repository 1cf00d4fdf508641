package rotation

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// MeanQuaternion averages qs after normalising each sample and aligning its
// sign with the first one, then renormalises the mean. ok is false for an
// empty batch or when the samples cancel out (mean norm below DegenerateNorm).
//
// Zero quaternions are left as-is and contribute nothing to the sum.
func MeanQuaternion(qs []quat.Number) (mean quat.Number, ok bool) {
	if len(qs) == 0 {
		return quat.Number{}, false
	}

	ref := normalize(qs[0])
	var sum quat.Number
	for _, q := range qs {
		q = normalize(q)
		// q and -q are the same rotation; keep every sample in the
		// hemisphere of the first so the sum does not cancel.
		if dot(q, ref) < 0 {
			q = quat.Scale(-1, q)
		}
		sum = quat.Add(sum, q)
	}

	mean = quat.Scale(1/float64(len(qs)), sum)
	n := quat.Abs(mean)
	if n < DegenerateNorm {
		return quat.Number{}, false
	}
	return quat.Scale(1/n, mean), true
}

// MeanRotation returns the mean orientation of qs as a proper rotation
// matrix. An empty batch, or one whose samples cancel, yields identity.
//
// This is simple quaternion averaging, not the eigenvector-of-covariance
// estimator. It is accurate for the small spread of a stationary sensor.
func MeanRotation(qs []quat.Number) *mat.Dense {
	if len(qs) == 0 {
		return Identity()
	}

	r := Identity()
	if mean, ok := MeanQuaternion(qs); ok {
		r = QuaternionToMatrix(mean)
	}
	return Orthonormalize(r)
}

// Orthonormalize returns the proper rotation closest to r using the polar
// decomposition r = U·Σ·Vᵀ → U·Vᵀ. If U·Vᵀ is a reflection, the last column
// of U is negated so the result has determinant +1. A matrix the SVD cannot
// factorise (NaN input) is returned unchanged.
func Orthonormalize(r mat.Matrix) *mat.Dense {
	var svd mat.SVD
	if ok := svd.Factorize(r, mat.SVDFull); !ok {
		return mat.DenseCopyOf(r)
	}

	var u, v, out mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	out.Mul(&u, v.T())

	if mat.Det(&out) < 0 {
		rows, cols := u.Dims()
		for i := 0; i < rows; i++ {
			u.Set(i, cols-1, -u.At(i, cols-1))
		}
		out.Mul(&u, v.T())
	}
	return &out
}

func normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return q
	}
	return quat.Scale(1/n, q)
}

func dot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}
