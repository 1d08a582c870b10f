package wgpukit

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/cogentcore/webgpu/wgpu"
)

// SwapChain extends the abstract gfx.SwapChain with surface acquisition and
// presentation, which only the backend and window layers touch.
type SwapChain interface {
	gfx.SwapChain

	// Configure reconfigures the surface after a resize.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Configure(width, height int)

	// Acquire obtains the next backbuffer image. Must be balanced by a
	// Present call before the next Acquire.
	//
	// Returns:
	//   - error: an error if the image could not be acquired or is still held
	Acquire() error

	// Present presents the acquired backbuffer and releases it.
	Present()

	// BackbufferView returns the view of the currently acquired backbuffer,
	// or nil outside an Acquire/Present pair.
	//
	// Returns:
	//   - *wgpu.TextureView: the backbuffer view
	BackbufferView() *wgpu.TextureView

	// BackbufferDescriptorIndex returns the render-target descriptor slot
	// registered for the backbuffer of the current frame. Slots are
	// allocated once per logical backbuffer when the swap chain is created
	// and rotate with Present.
	//
	// Returns:
	//   - int: the descriptor slot index
	BackbufferDescriptorIndex() int
}

type swapChainImpl struct {
	mu *sync.Mutex

	surface *wgpu.Surface
	adapter *wgpu.Adapter
	device  *wgpu.Device

	numBuffers int
	format     wgpu.TextureFormat
	rtvIndices []int
	frame      int

	current     *wgpu.Texture
	currentView *wgpu.TextureView
}

var _ SwapChain = &swapChainImpl{}

func (s *swapChainImpl) NumBuffers() int {
	return s.numBuffers
}

func (s *swapChainImpl) WaitForLastFrame() {
	// Blocks until all submitted work has completed on the device timeline.
	s.device.Poll(true, nil)
}

func (s *swapChainImpl) Configure(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	capabilities := s.surface.GetCapabilities(s.adapter)
	s.format = capabilities.Formats[0]

	s.surface.Configure(s.adapter, s.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      s.format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   capabilities.AlphaModes[0],
	})
}

func (s *swapChainImpl) Acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return fmt.Errorf("wgpukit: previous backbuffer not yet presented")
	}

	surfaceTexture, err := s.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	s.current = surfaceTexture
	s.currentView = view
	return nil
}

func (s *swapChainImpl) Present() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return
	}

	s.surface.Present()

	if s.currentView != nil {
		s.currentView.Release()
		s.currentView = nil
	}
	s.current.Release()
	s.current = nil
	s.frame++
}

func (s *swapChainImpl) BackbufferView() *wgpu.TextureView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentView
}

func (s *swapChainImpl) BackbufferDescriptorIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rtvIndices[s.frame%s.numBuffers]
}
