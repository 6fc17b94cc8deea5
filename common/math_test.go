package common

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestClipCorrectionMapsDepthRange(t *testing.T) {
	near := ClipCorrection.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := ClipCorrection.Mul4x1(mgl32.Vec4{0, 0, 1, 1})

	assert.InDelta(t, 0, near.Z(), 1e-7)
	assert.InDelta(t, 1, far.Z(), 1e-7)

	xy := ClipCorrection.Mul4x1(mgl32.Vec4{0.3, -0.7, 0, 1})
	assert.Equal(t, float32(0.3), xy.X())
	assert.Equal(t, float32(-0.7), xy.Y())
}

func TestIsFiniteMat4(t *testing.T) {
	assert.True(t, IsFiniteMat4(mgl32.Ident4()))

	m := mgl32.Ident4()
	m[7] = float32(math.NaN())
	assert.False(t, IsFiniteMat4(m))

	m = mgl32.Ident4()
	m[0] = float32(math.Inf(-1))
	assert.False(t, IsFiniteMat4(m))
}

func TestMat4BytesLayout(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3)
	buf := Mat4Bytes(m)

	assert.Len(t, buf, 64)
	vals := Float32sFromBytes(buf)
	assert.Equal(t, m[:], vals)
	// column-major: translation lives in elements 12..14
	assert.Equal(t, []float32{1, 2, 3}, vals[12:15])
}
