package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildViewProjectionGolden(t *testing.T) {
	cam := NewCamera(WithAspect(1))

	vp, err := cam.BuildViewProjection()
	require.NoError(t, err)

	want := [16]float32{
		2.4142136, 0, 0, 0,
		0, 2.1593383, -0.4476613, -0.4472136,
		0, -1.0796691, -0.8953225, -0.8944272,
		0, 0, 2.1382062, 2.2360680,
	}
	for i := range want {
		assert.InDelta(t, want[i], vp[i], 1e-5, "element %d", i)
	}
}

func TestBuildViewProjectionMapsTargetIntoDepthRange(t *testing.T) {
	cam := NewCamera(WithAspect(16.0 / 9.0))
	vp, err := cam.BuildViewProjection()
	require.NoError(t, err)

	clip := vp.Mul4x1(cam.Target.Vec4(1))
	ndcZ := clip.Z() / clip.W()
	assert.Greater(t, ndcZ, float32(0))
	assert.Less(t, ndcZ, float32(1))
	assert.InDelta(t, 0, clip.X()/clip.W(), 1e-6)
	assert.InDelta(t, 0, clip.Y()/clip.W(), 1e-6)
}

func TestBuildViewProjectionDegenerate(t *testing.T) {
	tests := []struct {
		name string
		cam  Camera
	}{
		{"eye equals target", NewCamera(WithEye(1, 2, 3), WithTarget(1, 2, 3))},
		{"up parallel to view", NewCamera(WithEye(0, 5, 0), WithTarget(0, 0, 0))},
		{"zero up", NewCamera(WithUp(0, 0, 0))},
		{"nan eye", NewCamera(WithEye(float32(math.NaN()), 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vp, err := tt.cam.BuildViewProjection()
			require.ErrorIs(t, err, ErrDegenerateCamera)
			for _, v := range vp {
				assert.False(t, math.IsNaN(float64(v)))
			}
		})
	}
}

func TestValidateProjection(t *testing.T) {
	tests := []struct {
		name string
		cam  Camera
	}{
		{"zero aspect", NewCamera(WithAspect(0))},
		{"negative near", NewCamera(WithNearFar(-1, 10))},
		{"far before near", NewCamera(WithNearFar(10, 1))},
		{"fov too wide", NewCamera(WithFovY(180))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cam.Validate(), ErrInvalidProjection)
		})
	}
}

func TestUpdateAspectRatioOnlyChangesAspect(t *testing.T) {
	cam := NewCamera()
	require.NoError(t, cam.UpdateAspectRatio(800, 600))
	eye, target, up := cam.Eye, cam.Target, cam.Up

	require.NoError(t, cam.UpdateAspectRatio(1024, 768))

	assert.Equal(t, float32(1024)/float32(768), cam.Aspect)
	assert.Equal(t, eye, cam.Eye)
	assert.Equal(t, target, cam.Target)
	assert.Equal(t, up, cam.Up)
}

func TestUpdateAspectRatioRejectsZero(t *testing.T) {
	cam := NewCamera(WithAspect(2))
	assert.ErrorIs(t, cam.UpdateAspectRatio(800, 0), ErrInvalidViewport)
	assert.ErrorIs(t, cam.UpdateAspectRatio(0, 600), ErrInvalidViewport)
	assert.Equal(t, float32(2), cam.Aspect)
}

func TestWithUpNormalizes(t *testing.T) {
	cam := NewCamera(WithUp(0, 3, 0))
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, cam.Up)
}

func TestGPUCameraUniformMarshal(t *testing.T) {
	var u GPUCameraUniform
	u.ViewProj = mgl32.Ident4()
	assert.Equal(t, 64, u.Size())

	buf := u.Marshal()
	require.Len(t, buf, 64)
	// column 0 row 0 is 1.0f = 0x3f800000 little-endian
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[0:4])
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[4:8])
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3f}, buf[60:64])
	assert.Contains(t, GPUCameraUniformSource, "view_proj: mat4x4<f32>")
}

func TestDistanceOnValue(t *testing.T) {
	assert.InDelta(t, 5.0, NewCamera(WithEye(0, 3, 4), WithTarget(0, 0, 0)).Distance(), 1e-6)
}
