package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ClipCorrection remaps an OpenGL-style clip-space depth range of [-1, 1] onto the [0, 1]
// range WebGPU expects. X and Y pass through unchanged; z' = 0.5*z + 0.5*w.
// Stored column-major, matching mgl32.
var ClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Epsilon is the tolerance used when deciding whether a vector is too short to normalize.
const Epsilon float32 = 1e-6

// IsFiniteMat4 reports whether every element of m is a finite number.
//
// Parameters:
//   - m: the matrix to inspect
//
// Returns:
//   - bool: false if any element is NaN or ±Inf
func IsFiniteMat4(m mgl32.Mat4) bool {
	for _, v := range m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// IsFiniteVec3 reports whether every component of v is a finite number.
func IsFiniteVec3(v mgl32.Vec3) bool {
	for _, c := range v {
		f := float64(c)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// PutFloat32s writes values into dst as consecutive little-endian float32s.
// dst must hold at least 4*len(values) bytes.
//
// Parameters:
//   - dst: destination byte slice
//   - values: the floats to encode
func PutFloat32s(dst []byte, values ...float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}

// Float32sFromBytes decodes consecutive little-endian float32s from src.
// Trailing bytes that do not form a whole float are ignored.
//
// Parameters:
//   - src: source byte slice
//
// Returns:
//   - []float32: the decoded values
func Float32sFromBytes(src []byte) []float32 {
	out := make([]float32, len(src)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[i*4:]))
	}
	return out
}

// Mat4Bytes serializes a column-major 4x4 matrix into 64 little-endian bytes.
//
// Parameters:
//   - m: the matrix to serialize
//
// Returns:
//   - []byte: 64-byte buffer ready for GPU upload
func Mat4Bytes(m mgl32.Mat4) []byte {
	buf := make([]byte, 64)
	PutFloat32s(buf, m[:]...)
	return buf
}
