// Package wgpu_backend implements the gpu interfaces on cogentcore/webgpu.
package wgpu_backend

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-instanced/common"
	"github.com/Carmen-Shannon/oxy-instanced/engine/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing. This is the default.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

type backendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	alphaMode     wgpu.CompositeAlphaMode
	presentMode   wgpu.PresentMode

	forceFallbackAdapter bool
	deviceLabel          string

	width, height int
}

// Backend owns the WebGPU instance, adapter, device, queue and window surface.
// It hands out the device/queue pair as a gpu.Context and the surface as a gpu.Surface.
type Backend interface {
	// Context returns the device and queue for resource creation and writes.
	//
	// Returns:
	//   - gpu.Context: the device/queue pair
	Context() gpu.Context

	// Surface returns the presentation surface.
	//
	// Returns:
	//   - gpu.Surface: the configured window surface
	Surface() gpu.Surface

	// Release frees the surface, device, adapter and instance.
	Release()
}

var _ Backend = &backendImpl{}

// NewBackend creates the WebGPU instance, surface, adapter, device and queue, then
// configures the surface at the given size. Any failure is returned; nothing is retried.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor produced by the window
//   - width, height: initial framebuffer size in pixels
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the ready backend
//   - error: error if any acquisition step fails
func NewBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...BackendBuilderOption) (Backend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("surface descriptor is nil")
	}
	runtime.LockOSThread()

	b := &backendImpl{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
		deviceLabel: "Main Device",
	}
	for _, opt := range options {
		opt(b)
	}

	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: b.deviceLabel,
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 || len(capabilities.AlphaModes) == 0 {
		b.Release()
		return nil, errors.New("surface is not compatible with the selected adapter")
	}
	b.surfaceFormat = capabilities.Formats[0]
	b.alphaMode = capabilities.AlphaModes[0]

	if err := b.configure(width, height); err != nil {
		b.Release()
		return nil, err
	}

	common.Logger().Info("gpu backend ready",
		"format", b.surfaceFormat,
		"width", width,
		"height", height,
	)

	return b, nil
}

func (b *backendImpl) Context() gpu.Context {
	return gpu.Context{
		Device: &device{b: b},
		Queue:  &queue{q: b.queue},
	}
}

func (b *backendImpl) Surface() gpu.Surface {
	return &surface{b: b}
}

// configure applies the surface configuration at the given size.
func (b *backendImpl) configure(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid surface size %dx%d", width, height)
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   b.alphaMode,
	})
	b.width, b.height = width, height
	return nil
}

func (b *backendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// surface implements gpu.Surface on the backend's window surface.
type surface struct {
	b *backendImpl
}

var _ gpu.Surface = &surface{}

func (s *surface) AcquireNextFrame() (gpu.FrameTarget, error) {
	tex, err := s.b.surface.GetCurrentTexture()
	if err != nil {
		return nil, gpu.ErrorFromSurfaceStatus(err.Error())
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("failed to create frame view: %w", err)
	}
	return &frame{surface: s.b.surface, texture: tex, view: &textureView{view: view}}, nil
}

func (s *surface) Rebuild(width, height int) error {
	return s.b.configure(width, height)
}

// frame is one acquired swapchain texture.
type frame struct {
	surface *wgpu.Surface
	texture *wgpu.Texture
	view    *textureView
}

func (f *frame) View() gpu.TextureView {
	return f.view
}

func (f *frame) Present() {
	f.surface.Present()
	f.Release()
}

func (f *frame) Release() {
	if f.view != nil {
		f.view.Release()
		f.view = nil
	}
	if f.texture != nil {
		f.texture.Release()
		f.texture = nil
	}
}
