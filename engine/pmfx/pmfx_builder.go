package pmfx

import (
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/engine/profiler"
	"github.com/Carmen-Shannon/pmfx-go/engine/reloader"
	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

type pmfxBuilderOptions struct {
	reloader reloader.Reloader
	prof     *profiler.Profiler
}

// PmfxBuilderOption mutates the pmfx builder options.
type PmfxBuilderOption func(*pmfxBuilderOptions)

// WithReloader attaches a file watcher; NewFrame applies reloads the
// watcher flags as available.
//
// Parameters:
//   - r: the reloader, already watching the loaded document folders
//
// Returns:
//   - PmfxBuilderOption: the option to apply
func WithReloader(r reloader.Reloader) PmfxBuilderOption {
	return func(o *pmfxBuilderOptions) {
		o.reloader = r
	}
}

// WithProfiler attaches a profiler ticked once per NewFrame, which also
// receives reload durations.
//
// Parameters:
//   - prof: the profiler
//
// Returns:
//   - PmfxBuilderOption: the option to apply
func WithProfiler(prof *profiler.Profiler) PmfxBuilderOption {
	return func(o *pmfxBuilderOptions) {
		o.prof = prof
	}
}

// NewPmfx creates an empty pmfx engine bound to a device. Load documents,
// then compile a render graph to begin executing.
//
// Parameters:
//   - device: the graphics device all resources are created on
//   - optionBuilders: optional configuration, see PmfxBuilderOption
//
// Returns:
//   - Pmfx: the engine
func NewPmfx(device gfx.Device, optionBuilders ...PmfxBuilderOption) Pmfx {
	options := &pmfxBuilderOptions{}
	for _, ob := range optionBuilders {
		ob(options)
	}

	return &pmfxImpl{
		mu:               &sync.Mutex{},
		device:           device,
		reloader:         options.reloader,
		prof:             options.prof,
		pmfxFolders:      map[string]string{},
		trackedTextures:  map[string]*trackedTexture{},
		windowSizes:      map[string][2]uint32{},
		views:            map[string]*View{},
		viewTextureRefs:  map[string]map[string]struct{}{},
		barriers:         map[string]gfx.CmdBuf{},
		renderPipelines:  map[uint64]map[string]map[uint32]renderPipelineEntry{},
		computePipelines: map[string]computePipelineEntry{},
		shaders:          map[string]gfx.Shader{},
		shaderVersions:   map[string]Version{},
		cameras:          map[string]CameraConstants{},
		viewErrors:       map[string][]string{},
	}
}
