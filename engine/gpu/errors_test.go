package gpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFrameError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want FrameErrorKind
	}{
		{"nil", nil, FrameOK},
		{"timeout", ErrSurfaceTimeout, FrameTransient},
		{"outdated wrapped", fmt.Errorf("acquire: %w", ErrSurfaceOutdated), FrameTransient},
		{"lost", ErrSurfaceLost, FrameRecoverable},
		{"lost wrapped", fmt.Errorf("acquire: %w", ErrSurfaceLost), FrameRecoverable},
		{"out of memory", ErrSurfaceOutOfMemory, FrameFatal},
		{"unknown", errors.New("device exploded"), FrameFatal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyFrameError(tc.err))
		})
	}
}

func TestBufferUsageHas(t *testing.T) {
	u := BufferUsageUniform | BufferUsageCopyDst
	assert.True(t, u.Has(BufferUsageUniform))
	assert.True(t, u.Has(BufferUsageUniform|BufferUsageCopyDst))
	assert.False(t, u.Has(BufferUsageVertex))
}

func TestVertexFormatSize(t *testing.T) {
	assert.Equal(t, uint64(8), VertexFormatFloat32x2.Size())
	assert.Equal(t, uint64(12), VertexFormatFloat32x3.Size())
	assert.Equal(t, uint64(16), VertexFormatFloat32x4.Size())
}

func TestErrorFromSurfaceStatus(t *testing.T) {
	cases := map[string]FrameErrorKind{
		"Timeout":                 FrameTransient,
		"Outdated":                FrameTransient,
		"Lost":                    FrameRecoverable,
		"OutOfMemory":             FrameFatal,
		"DeviceLost":              FrameFatal,
		"wgpu: surface status 99": FrameFatal,
	}
	for status, want := range cases {
		err := ErrorFromSurfaceStatus(status)
		assert.Error(t, err, status)
		assert.Equal(t, want, ClassifyFrameError(err), status)
	}

	assert.ErrorIs(t, ErrorFromSurfaceStatus("OutOfMemory"), ErrSurfaceOutOfMemory)
	assert.NotErrorIs(t, ErrorFromSurfaceStatus("DeviceLost"), ErrSurfaceLost)
}
