// Package geom provides the vector, orientation and bounding volume types used by
// placement and combination. Vectors and matrices are mgl64 types; an axis matrix
// stores the forward, left and up vectors as its columns.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a world-space vector.
type Vec3 = mgl64.Vec3

// Mat3 is an orientation matrix with forward/left/up columns.
type Mat3 = mgl64.Mat3

// Identity returns the identity axis.
func Identity() Mat3 {
	return mgl64.Ident3()
}

// Angles are Euler angles in degrees.
type Angles struct {
	Pitch float64 `yaml:"pitch"`
	Yaw   float64 `yaml:"yaw"`
	Roll  float64 `yaml:"roll"`
}

// Zero reports whether all three angles are zero.
func (a Angles) Zero() bool {
	return a.Pitch == 0 && a.Yaw == 0 && a.Roll == 0
}

// ToMat3 converts the angles into an axis matrix.
func (a Angles) ToMat3() Mat3 {
	sp, cp := math.Sincos(mgl64.DegToRad(a.Pitch))
	sy, cy := math.Sincos(mgl64.DegToRad(a.Yaw))
	sr, cr := math.Sincos(mgl64.DegToRad(a.Roll))

	forward := Vec3{cp * cy, cp * sy, -sp}
	left := Vec3{sr*sp*cy - cr*sy, sr*sp*sy + cr*cy, sr * cp}
	up := Vec3{cr*sp*cy + sr*sy, cr*sp*sy - sr*cy, cr * cp}
	return mgl64.Mat3FromCols(forward, left, up)
}

// AnglesFromMat3 recovers Euler angles from an axis matrix.
func AnglesFromMat3(m Mat3) Angles {
	forward, left, up := m.Col(0), m.Col(1), m.Col(2)

	sp := mgl64.Clamp(forward.Z(), -1, 1)
	theta := -math.Asin(sp)
	cp := math.Cos(theta)

	if cp > 8192*1e-7 {
		return Angles{
			Pitch: mgl64.RadToDeg(theta),
			Yaw:   mgl64.RadToDeg(math.Atan2(forward.Y(), forward.X())),
			Roll:  mgl64.RadToDeg(math.Atan2(left.Z(), up.Z())),
		}
	}
	return Angles{
		Pitch: mgl64.RadToDeg(theta),
		Yaw:   mgl64.RadToDeg(-math.Atan2(left.X(), left.Y())),
	}
}

// Polar converts spherical coordinates to a vector. elevation is measured from the
// XY plane and azimuth around Z, both in degrees.
func Polar(radius, elevation, azimuth float64) Vec3 {
	se, ce := math.Sincos(mgl64.DegToRad(elevation))
	sa, ca := math.Sincos(mgl64.DegToRad(azimuth))
	return Vec3{ce * radius * ca, ce * radius * sa, radius * se}
}

// LenSqrXY is the squared length of v projected onto the XY plane.
func LenSqrXY(v Vec3) float64 {
	return v.X()*v.X() + v.Y()*v.Y()
}

// MulElem multiplies two vectors component-wise.
func MulElem(a, b Vec3) Vec3 {
	return Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// MaxElem returns the component-wise maximum.
func MaxElem(a, b Vec3) Vec3 {
	return Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// ClampVec clamps each component of v into [lo, hi].
func ClampVec(v, lo, hi Vec3) Vec3 {
	return Vec3{
		mgl64.Clamp(v[0], lo[0], hi[0]),
		mgl64.Clamp(v[1], lo[1], hi[1]),
		mgl64.Clamp(v[2], lo[2], hi[2]),
	}
}

// PackColor packs an RGB vector in [0,1] into 0xAARRGGBB with full alpha.
func PackColor(c Vec3) uint32 {
	ch := func(f float64) uint32 {
		return uint32(mgl64.Clamp(f, 0, 1)*255 + 0.5)
	}
	return 0xff000000 | ch(c[0])<<16 | ch(c[1])<<8 | ch(c[2])
}

// UnpackColor reverses PackColor.
func UnpackColor(c uint32) Vec3 {
	return Vec3{
		float64((c>>16)&0xff) / 255,
		float64((c>>8)&0xff) / 255,
		float64(c&0xff) / 255,
	}
}
