// Package instance generates the static grid of per-instance transforms drawn by the
// renderer and uploads them to a vertex buffer consumed at instance rate.
package instance

import "github.com/go-gl/mathgl/mgl32"

// Instance is the transform of one drawn copy of the mesh.
type Instance struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// ToRaw converts the instance to its model matrix, translation * rotation.
//
// Returns:
//   - InstanceRaw: the GPU representation
func (i Instance) ToRaw() InstanceRaw {
	m := mgl32.Translate3D(i.Position.X(), i.Position.Y(), i.Position.Z()).Mul4(i.Rotation.Mat4())
	return InstanceRaw{Model: m}
}

// gridRotation is identity at the origin and a 45 degree turn about the normalized
// position everywhere else.
func gridRotation(position mgl32.Vec3) mgl32.Quat {
	if position.Len() == 0 {
		return mgl32.QuatRotate(0, mgl32.Vec3{0, 0, 1})
	}
	return mgl32.QuatRotate(mgl32.DegToRad(45), position.Normalize())
}

// cellPosition returns the centered position of grid cell (x, z).
func cellPosition(x, z, rowsX, rowsZ int, spacing float32) mgl32.Vec3 {
	displacement := mgl32.Vec3{float32(rowsX) * spacing * 0.5, 0, float32(rowsZ) * spacing * 0.5}
	return mgl32.Vec3{float32(x) * spacing, 0, float32(z) * spacing}.Sub(displacement)
}
