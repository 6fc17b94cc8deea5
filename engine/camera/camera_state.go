package camera

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/Carmen-Shannon/oxy-instanced/engine/renderer/bind_group_provider"
	"github.com/google/uuid"
)

// CameraBinding is the binding index of the camera uniform inside its bind group.
const CameraBinding = 0

type cameraStateImpl struct {
	mu *sync.Mutex

	queue gpu.Queue

	camera     Camera
	controller CameraController
	uniform    GPUCameraUniform

	label    string
	provider bind_group_provider.BindGroupProvider
}

// CameraState owns a Camera, its CameraController and the GPU uniform buffer and
// bind group the vertex stage reads the view-projection matrix from.
// Every call that changes the camera ends with a full 64-byte uniform upload, and
// the new camera is kept only if that upload succeeds.
type CameraState interface {
	// OnUpdate runs one controller tick, recomputes the view-projection matrix and
	// rewrites the uniform buffer.
	//
	// Returns:
	//   - error: ErrDegenerateCamera (no write is issued) or a queue error
	OnUpdate() error

	// OnResize updates the aspect ratio and rewrites the uniform buffer.
	// Eye, target and up are untouched.
	//
	// Parameters:
	//   - width, height: the new viewport size in pixels
	//
	// Returns:
	//   - error: ErrInvalidViewport (camera unchanged) or a queue error
	OnResize(width, height int) error

	// OnInput forwards a key event to the controller.
	//
	// Parameters:
	//   - ev: the key event
	//
	// Returns:
	//   - bool: true if the key is a movement key
	OnInput(ev common.KeyEvent) bool

	// Camera returns a copy of the current camera.
	//
	// Returns:
	//   - Camera: the camera value
	Camera() Camera

	// Controller returns the attached controller.
	//
	// Returns:
	//   - CameraController: the controller
	Controller() CameraController

	// Uniform returns the last uniform written to the GPU.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform value
	Uniform() GPUCameraUniform

	// BindGroupLayout returns the layout with one vertex-visible uniform at binding 0.
	//
	// Returns:
	//   - gpu.BindGroupLayout: the layout
	BindGroupLayout() gpu.BindGroupLayout

	// BindGroup returns the bind group holding the uniform buffer.
	//
	// Returns:
	//   - gpu.BindGroup: the bind group
	BindGroup() gpu.BindGroup

	// LayoutEntries returns the entries the bind group layout was created from.
	//
	// Returns:
	//   - []gpu.BindGroupLayoutEntry: the layout entries
	LayoutEntries() []gpu.BindGroupLayoutEntry

	// Label returns the debug label shared by the state's GPU resources.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Release frees the uniform buffer, bind group and layout.
	Release()
}

var _ CameraState = &cameraStateImpl{}

// NewCameraState builds the camera and controller, computes the first uniform and
// creates the uniform buffer, bind group layout and bind group.
//
// Parameters:
//   - ctx: the device and queue used for resource creation and writes
//   - width, height: the initial viewport size, used for the aspect ratio
//   - options: functional options to configure the state
//
// Returns:
//   - CameraState: the ready camera state
//   - error: error if the camera is invalid or any GPU resource cannot be created
func NewCameraState(ctx gpu.Context, width, height int, options ...CameraStateOption) (CameraState, error) {
	s := &cameraStateImpl{
		mu:    &sync.Mutex{},
		queue: ctx.Queue,
		label: "Camera " + uuid.NewString()[:8],
	}
	for _, option := range options {
		option(s)
	}
	if s.controller == nil {
		s.controller = NewCameraController()
	}
	if s.camera == (Camera{}) {
		s.camera = NewCamera()
	}

	if err := s.camera.UpdateAspectRatio(width, height); err != nil {
		return nil, err
	}
	vp, err := s.camera.BuildViewProjection()
	if err != nil {
		return nil, err
	}
	s.uniform.ViewProj = vp

	buf, err := ctx.Device.CreateBufferWithData(s.label+" Buffer", s.uniform.Marshal(), gpu.BufferUsageUniform|gpu.BufferUsageCopyDst)
	if err != nil {
		return nil, fmt.Errorf("failed to create camera buffer: %w", err)
	}
	s.provider = bind_group_provider.NewBindGroupProvider(s.label,
		bind_group_provider.WithLayoutEntry(gpu.BindGroupLayoutEntry{
			Binding:    CameraBinding,
			Visibility: gpu.ShaderStageVertex,
			Type:       gpu.BindingTypeUniformBuffer,
		}),
		bind_group_provider.WithBuffer(CameraBinding, buf),
	)
	if err := s.provider.Init(ctx.Device); err != nil {
		s.provider.Release()
		return nil, err
	}

	common.Logger().Debug("camera state created", "label", s.label, "eye", s.camera.Eye, "aspect", s.camera.Aspect)
	return s, nil
}

func (s *cameraStateImpl) OnUpdate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.camera
	if err := s.controller.Update(&next); err != nil {
		return err
	}
	return s.commit(next)
}

func (s *cameraStateImpl) OnResize(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.camera
	if err := next.UpdateAspectRatio(width, height); err != nil {
		return err
	}
	return s.commit(next)
}

func (s *cameraStateImpl) OnInput(ev common.KeyEvent) bool {
	return s.controller.ProcessInput(ev)
}

func (s *cameraStateImpl) Camera() Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *cameraStateImpl) Controller() CameraController {
	return s.controller
}

func (s *cameraStateImpl) Uniform() GPUCameraUniform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uniform
}

func (s *cameraStateImpl) BindGroupLayout() gpu.BindGroupLayout {
	return s.provider.BindGroupLayout()
}

func (s *cameraStateImpl) BindGroup() gpu.BindGroup {
	return s.provider.BindGroup()
}

func (s *cameraStateImpl) LayoutEntries() []gpu.BindGroupLayoutEntry {
	return s.provider.LayoutEntries()
}

func (s *cameraStateImpl) Label() string {
	return s.label
}

func (s *cameraStateImpl) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.provider != nil {
		s.provider.Release()
	}
}

// commit uploads the full uniform for next and adopts next only once the write
// succeeds. Caller must hold the mutex.
func (s *cameraStateImpl) commit(next Camera) error {
	vp, err := next.BuildViewProjection()
	if err != nil {
		return err
	}
	u := s.uniform
	u.ViewProj = vp
	if err := bind_group_provider.WriteBuffers(s.queue, bind_group_provider.BufferWrite{
		Provider: s.provider,
		Binding:  CameraBinding,
		Offset:   0,
		Data:     u.Marshal(),
	}); err != nil {
		return err
	}
	s.camera = next
	s.uniform = u
	return nil
}
