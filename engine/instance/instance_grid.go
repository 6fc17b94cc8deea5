package instance

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/google/uuid"
)

// ErrInvalidGrid is returned for non-positive row counts or spacing.
var ErrInvalidGrid = errors.New("instance: invalid grid dimensions")

type instanceGridImpl struct {
	rowsX, rowsZ int
	spacing      float32
	workers      int
	label        string

	instances []Instance
	buffer    gpu.Buffer
}

// InstanceGrid is a fixed rowsX * rowsZ set of instance transforms uploaded once to a
// vertex buffer. It cannot be modified after construction.
type InstanceGrid interface {
	// Buffer returns the instance vertex buffer for slot 1.
	//
	// Returns:
	//   - gpu.Buffer: the buffer
	Buffer() gpu.Buffer

	// NumInstances returns the instance count to draw.
	//
	// Returns:
	//   - uint32: rowsX * rowsZ
	NumInstances() uint32

	// Instances returns a copy of the generated instances in upload order (z outer, x inner).
	//
	// Returns:
	//   - []Instance: the instances
	Instances() []Instance

	// Label returns the debug label.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Release frees the instance buffer.
	Release()
}

var _ InstanceGrid = &instanceGridImpl{}

// NewInstanceGrid generates rowsX * rowsZ instances centered on the origin and uploads
// their model matrices to one vertex buffer. Cell (x, z) sits at
// (x*s, 0, z*s) - (rowsX*s/2, 0, rowsZ*s/2). Rows are packed in parallel on a worker pool.
//
// Parameters:
//   - ctx: the device used to create the buffer
//   - rowsX, rowsZ: the grid dimensions
//   - options: functional options to configure the grid
//
// Returns:
//   - InstanceGrid: the uploaded grid
//   - error: ErrInvalidGrid or a buffer creation error
func NewInstanceGrid(ctx gpu.Context, rowsX, rowsZ int, options ...InstanceGridOption) (InstanceGrid, error) {
	g := &instanceGridImpl{
		rowsX:   rowsX,
		rowsZ:   rowsZ,
		spacing: 1.0,
		workers: max(runtime.NumCPU()-1, 1),
		label:   "Instances " + uuid.NewString()[:8],
	}
	for _, option := range options {
		option(g)
	}

	if rowsX <= 0 || rowsZ <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, rowsX, rowsZ)
	}
	if !(g.spacing > 0) || math.IsInf(float64(g.spacing), 0) {
		return nil, fmt.Errorf("%w: spacing %v", ErrInvalidGrid, g.spacing)
	}
	if rowsX*rowsZ > math.MaxUint32/64 {
		return nil, fmt.Errorf("%w: %d instances", ErrInvalidGrid, rowsX*rowsZ)
	}

	data := g.build()

	buf, err := ctx.Device.CreateBufferWithData(g.label+" Buffer", data, gpu.BufferUsageVertex)
	if err != nil {
		return nil, fmt.Errorf("failed to create instance buffer: %w", err)
	}
	g.buffer = buf

	common.Logger().Info("instance grid built",
		"label", g.label,
		"rows_x", rowsX,
		"rows_z", rowsZ,
		"spacing", g.spacing,
		"instances", len(g.instances),
	)
	return g, nil
}

var (
	buildPoolOnce sync.Once
	buildPool     worker.DynamicWorkerPool
)

// sharedBuildPool returns the process-wide pool that packs grid rows. Its workers
// live for the whole process, so building grids never adds goroutines.
func sharedBuildPool() worker.DynamicWorkerPool {
	buildPoolOnce.Do(func() {
		buildPool = worker.NewDynamicWorkerPool(max(runtime.NumCPU(), 1), 256, 1*time.Second)
	})
	return buildPool
}

// build generates every instance and its packed raw matrix. Rows are split into at
// most g.workers stripes, one task each; stripes write disjoint ranges so output
// order is fixed by index.
func (g *instanceGridImpl) build() []byte {
	var raw InstanceRaw
	stride := raw.Size()
	count := g.rowsX * g.rowsZ

	g.instances = make([]Instance, count)
	data := make([]byte, count*stride)

	pool := sharedBuildPool()
	stripes := min(g.workers, g.rowsZ)

	var wg sync.WaitGroup
	for s := range stripes {
		wg.Add(1)
		stripe := s
		pool.SubmitTask(worker.Task{
			ID: stripe,
			Do: func() (any, error) {
				defer wg.Done()
				for row := stripe; row < g.rowsZ; row += stripes {
					for x := range g.rowsX {
						i := row*g.rowsX + x
						pos := cellPosition(x, row, g.rowsX, g.rowsZ, g.spacing)
						inst := Instance{Position: pos, Rotation: gridRotation(pos)}
						g.instances[i] = inst
						r := inst.ToRaw()
						r.MarshalTo(data[i*stride:])
					}
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return data
}

func (g *instanceGridImpl) Buffer() gpu.Buffer {
	return g.buffer
}

func (g *instanceGridImpl) NumInstances() uint32 {
	return uint32(len(g.instances))
}

func (g *instanceGridImpl) Instances() []Instance {
	out := make([]Instance, len(g.instances))
	copy(out, g.instances)
	return out
}

func (g *instanceGridImpl) Label() string {
	return g.label
}

func (g *instanceGridImpl) Release() {
	if g.buffer != nil {
		g.buffer.Release()
		g.buffer = nil
	}
}
