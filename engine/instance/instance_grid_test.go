package instance

import (
	"math"
	"runtime"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu/gputest"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstanceGridPositions(t *testing.T) {
	rec := gputest.NewRecorder()
	grid, err := NewInstanceGrid(rec.Context(), 10, 10, WithLabel("Instances"), WithWorkers(3))
	require.NoError(t, err)
	t.Cleanup(grid.Release)

	require.Equal(t, uint32(100), grid.NumInstances())
	instances := grid.Instances()
	require.Len(t, instances, 100)

	for z := range 10 {
		for x := range 10 {
			got := instances[z*10+x].Position
			assert.Equal(t, mgl32.Vec3{float32(x) - 5, 0, float32(z) - 5}, got, "cell %d,%d", x, z)
		}
	}
}

func TestNewInstanceGridRotation(t *testing.T) {
	rec := gputest.NewRecorder()
	grid, err := NewInstanceGrid(rec.Context(), 10, 10)
	require.NoError(t, err)

	for _, inst := range grid.Instances() {
		if inst.Position.Len() == 0 {
			assert.True(t, inst.Rotation.ApproxEqual(mgl32.QuatIdent()), "origin must not rotate")
			continue
		}
		axis := inst.Position.Normalize()
		// rotating about its own axis leaves the axis fixed
		assert.Less(t, inst.Rotation.Rotate(axis).Sub(axis).Len(), float32(1e-5))
		angle := 2 * math.Acos(float64(inst.Rotation.W))
		assert.InDelta(t, math.Pi/4, angle, 1e-5)
	}
}

func TestNewInstanceGridDoesNotGrowGoroutines(t *testing.T) {
	rec := gputest.NewRecorder()

	first, err := NewInstanceGrid(rec.Context(), 16, 16, WithWorkers(4))
	require.NoError(t, err)
	first.Release()
	before := runtime.NumGoroutine()

	for range 20 {
		grid, err := NewInstanceGrid(rec.Context(), 16, 16, WithWorkers(4))
		require.NoError(t, err)
		grid.Release()
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, time.Second, 10*time.Millisecond, "grid builds leave worker goroutines behind")
}

func TestNewInstanceGridSpacing(t *testing.T) {
	rec := gputest.NewRecorder()
	grid, err := NewInstanceGrid(rec.Context(), 4, 2, WithSpacing(2))
	require.NoError(t, err)

	instances := grid.Instances()
	assert.Equal(t, mgl32.Vec3{-4, 0, -2}, instances[0].Position)
	assert.Equal(t, mgl32.Vec3{2, 0, 0}, instances[7].Position)
}

func TestNewInstanceGridUpload(t *testing.T) {
	rec := gputest.NewRecorder()
	grid, err := NewInstanceGrid(rec.Context(), 10, 10, WithLabel("Instances"))
	require.NoError(t, err)

	assert.Equal(t, []string{"create_buffer Instances Buffer 6400"}, rec.Ops())
	buf := rec.Device.BufferByLabel("Instances Buffer")
	require.NotNil(t, buf)
	assert.Same(t, buf, grid.Buffer())
	assert.Equal(t, gpu.BufferUsageVertex, buf.Usage)

	for i, inst := range grid.Instances() {
		chunk := buf.Data[i*64 : (i+1)*64]
		m := mgl32.Mat4(common.Float32sFromBytes(chunk))
		want := inst.ToRaw()
		assert.Equal(t, want.Model, [16]float32(m))

		// translation column carries the position
		assert.InDelta(t, inst.Position.X(), m[12], 1e-5)
		assert.InDelta(t, inst.Position.Y(), m[13], 1e-5)
		assert.InDelta(t, inst.Position.Z(), m[14], 1e-5)
		assert.Equal(t, float32(1), m[15])
	}
}

func TestNewInstanceGridSingleCell(t *testing.T) {
	rec := gputest.NewRecorder()
	grid, err := NewInstanceGrid(rec.Context(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, uint32(1), grid.NumInstances())
	assert.Equal(t, mgl32.Vec3{-0.5, 0, -0.5}, grid.Instances()[0].Position)
}

func TestNewInstanceGridErrors(t *testing.T) {
	tests := []struct {
		name         string
		rowsX, rowsZ int
		options      []InstanceGridOption
	}{
		{name: "zero rows", rowsX: 0, rowsZ: 10},
		{name: "negative rows", rowsX: 10, rowsZ: -1},
		{name: "zero spacing", rowsX: 2, rowsZ: 2, options: []InstanceGridOption{WithSpacing(0)}},
		{name: "nan spacing", rowsX: 2, rowsZ: 2, options: []InstanceGridOption{WithSpacing(float32(math.NaN()))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := gputest.NewRecorder()
			_, err := NewInstanceGrid(rec.Context(), tt.rowsX, tt.rowsZ, tt.options...)
			require.ErrorIs(t, err, ErrInvalidGrid)
			assert.Empty(t, rec.Ops())
		})
	}

	t.Run("buffer creation", func(t *testing.T) {
		rec := gputest.NewRecorder()
		rec.Device.Fail["CreateBufferWithData"] = nil
		_, err := NewInstanceGrid(rec.Context(), 2, 2)
		require.ErrorIs(t, err, gputest.ErrInjected)
	})
}

func TestInstanceGridRelease(t *testing.T) {
	rec := gputest.NewRecorder()
	grid, err := NewInstanceGrid(rec.Context(), 2, 2)
	require.NoError(t, err)

	grid.Release()
	assert.True(t, rec.Device.Buffers[0].Released)
	assert.Nil(t, grid.Buffer())
	grid.Release()
}

func TestVertexBufferLayout(t *testing.T) {
	layout := VertexBufferLayout()
	assert.Equal(t, uint64(64), layout.ArrayStride)
	assert.Equal(t, gpu.VertexStepModeInstance, layout.StepMode)
	require.Len(t, layout.Attributes, 4)
	for i, attr := range layout.Attributes {
		assert.Equal(t, gpu.VertexFormatFloat32x4, attr.Format)
		assert.Equal(t, uint64(i*16), attr.Offset)
		assert.Equal(t, uint32(5+i), attr.ShaderLocation)
	}
	assert.Contains(t, GPUInstanceInputSource, "@location(8) model_matrix_3")
}
