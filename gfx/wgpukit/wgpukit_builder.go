package wgpukit

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Synthetic descriptor heap addressing. WebGPU has no application-visible
// descriptor heaps, so the backend assigns slot indices from disjoint
// address ranges to keep texture bookkeeping index-based.
const (
	heapIncrement  = 32
	shaderHeapBase = 0x1000_0000
	targetHeapBase = 0x2000_0000
	depthHeapBase  = 0x3000_0000
)

type deviceBuilderOptions struct {
	surfaceDescriptor    *wgpu.SurfaceDescriptor
	forceFallbackAdapter bool
	numShaderDescriptors int
	numTargetDescriptors int
	numDepthDescriptors  int
}

// DeviceBuilderOption mutates the device builder options.
type DeviceBuilderOption func(*deviceBuilderOptions)

func defaultDeviceBuilderOptions() *deviceBuilderOptions {
	return &deviceBuilderOptions{
		numShaderDescriptors: 1024,
		numTargetDescriptors: 64,
		numDepthDescriptors:  64,
	}
}

// WithSurfaceDescriptor binds the device to a presentation surface. Without
// this option the device is headless and CreateSwapChain fails.
//
// Parameters:
//   - sd: the native surface descriptor, typically from the window layer
//
// Returns:
//   - DeviceBuilderOption: the option to apply
func WithSurfaceDescriptor(sd *wgpu.SurfaceDescriptor) DeviceBuilderOption {
	return func(o *deviceBuilderOptions) {
		o.surfaceDescriptor = sd
	}
}

// WithForceFallbackAdapter forces selection of a software fallback adapter,
// useful on machines without a usable GPU.
//
// Returns:
//   - DeviceBuilderOption: the option to apply
func WithForceFallbackAdapter() DeviceBuilderOption {
	return func(o *deviceBuilderOptions) {
		o.forceFallbackAdapter = true
	}
}

// WithHeapSizes overrides the descriptor heap slot capacities. Heaps do not
// grow; exhausting one panics.
//
// Parameters:
//   - shader: shader-visible (sampled/storage) slot count
//   - target: render target slot count
//   - depth: depth-stencil slot count
//
// Returns:
//   - DeviceBuilderOption: the option to apply
func WithHeapSizes(shader, target, depth int) DeviceBuilderOption {
	return func(o *deviceBuilderOptions) {
		o.numShaderDescriptors = shader
		o.numTargetDescriptors = target
		o.numDepthDescriptors = depth
	}
}
