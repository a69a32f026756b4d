package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// TransformPoint applies an affine 4x4 matrix to a point. The homogeneous w component is
// assumed to stay 1 and is dropped.
func TransformPoint(m mgl64.Mat4, p r3.Vector) r3.Vector {
	return Vec3ToR3(m.Mul4x1(R3ToVec3(p).Vec4(1)).Vec3())
}

// R3ToVec3 converts a vector to its mathgl form.
func R3ToVec3(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Vec3ToR3 converts a mathgl vector to its r3 form.
func Vec3ToR3(v mgl64.Vec3) r3.Vector {
	return r3.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// CheckMatrix returns an error if m cannot be used to place points: it contains NaN or
// infinite entries, its last row is not (0,0,0,1), or it collapses space (zero determinant).
func CheckMatrix(m mgl64.Mat4) error {
	for i, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Errorf("matrix entry %d is not finite (%v)", i, v)
		}
	}
	if m.Row(3) != (mgl64.Vec4{0, 0, 0, 1}) {
		return errors.Errorf("matrix is not affine, last row is %v", m.Row(3))
	}
	if m.Det() == 0 {
		return errors.New("matrix is degenerate")
	}
	return nil
}

// ProjectToRadius moves p along the ray from the origin so that it lies at the given distance
// from the origin. The zero vector has no direction and is rejected, as are non-finite points.
func ProjectToRadius(p r3.Vector, radius float64) (r3.Vector, error) {
	if !IsFinite(p) {
		return r3.Vector{}, errors.Errorf("cannot project non-finite point %v", p)
	}
	norm := p.Norm()
	if norm == 0 {
		return r3.Vector{}, errors.New("cannot project the origin onto a sphere")
	}
	return p.Mul(radius / norm), nil
}
