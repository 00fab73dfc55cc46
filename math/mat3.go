package math

// Mat3 is a column-major 3x3 matrix: Mat3[c] is column c.
type Mat3 [3]Vec3

// Mat3FromColumns builds a basis matrix, as GLSL mat3(a, b, c) does.
func Mat3FromColumns(c0, c1, c2 Vec3) Mat3 {
	return Mat3{c0, c1, c2}
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return m[0].Mul(v.X).Add(m[1].Mul(v.Y)).Add(m[2].Mul(v.Z))
}

// Mat3LookAt returns the camera-to-world basis for a camera at eye looking
// at target, rolled by roll radians. Columns are right, up and forward.
func Mat3LookAt(eye, target Vec3, roll float32) Mat3 {
	cw := target.Sub(eye).Normalize()
	cp := Vec3{X: Sin(roll), Y: Cos(roll), Z: 0}
	cu := cw.Cross(cp).Normalize()
	cv := cu.Cross(cw).Normalize()
	return Mat3FromColumns(cu, cv, cw)
}
