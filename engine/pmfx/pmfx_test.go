package pmfx

import (
	"testing"

	"github.com/Carmen-Shannon/pmfx-go/common"
	"github.com/Carmen-Shannon/pmfx-go/engine/profiler"
	"github.com/Carmen-Shannon/pmfx-go/engine/reloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubReloader drives the NewFrame reload hand-off without a filesystem
// watcher behind it.
type stubReloader struct {
	state     reloader.ReloadState
	begins    int
	completes int
}

func (s *stubReloader) Watch(path string) error { return nil }
func (s *stubReloader) Start() error            { return nil }
func (s *stubReloader) Stop()                   {}

func (s *stubReloader) State() reloader.ReloadState { return s.state }

func (s *stubReloader) Begin() bool {
	if s.state != reloader.StateAvailable {
		return false
	}
	s.state = reloader.StateReloading
	s.begins++
	return true
}

func (s *stubReloader) Complete() {
	s.state = reloader.StateUnchanged
	s.completes++
}

var _ reloader.Reloader = &stubReloader{}

func TestUpdateCameraConstants(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())

	_, ok := p.GetCameraConstants("main")
	assert.False(t, ok)

	var constants CameraConstants
	common.Identity(constants.View[:])
	common.Perspective(constants.Projection[:], 1.0, 16.0/9.0, 0.1, 100)
	common.Mul4(constants.ViewProjection[:], constants.Projection[:], constants.View[:])
	p.UpdateCameraConstants("main", constants)

	got, ok := p.GetCameraConstants("main")
	require.True(t, ok)
	assert.Equal(t, constants, got)
}

func TestLogErrorDeduplicatesAndDrains(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())

	p.LogError("geometry", "missing pipeline")
	p.LogError("geometry", "missing pipeline")
	p.LogError("geometry", "missing camera")
	p.LogError("", "engine level")

	errs := p.Errors()
	assert.Equal(t, []string{"missing pipeline", "missing camera"}, errs["geometry"])
	assert.Equal(t, []string{"engine level"}, errs[""])

	// Draining resets accumulation, including duplicate suppression.
	assert.Empty(t, p.Errors())
	p.LogError("geometry", "missing pipeline")
	assert.Equal(t, []string{"missing pipeline"}, p.Errors()["geometry"])
}

func TestNewFrameAppliesAvailableReload(t *testing.T) {
	doc := basicDoc()
	folder := t.TempDir()
	writeDoc(t, folder, doc)
	writeShader(t, folder, "mesh_vs.wgsl")
	writeShader(t, folder, "mesh_ps.wgsl")

	device := newMockDevice()
	stub := &stubReloader{}
	p := NewPmfx(device, WithReloader(stub), WithProfiler(profiler.NewProfiler()))
	require.NoError(t, p.Load(folder))
	require.NoError(t, p.CreateRenderGraph("forward"))

	// Change the document on disk, then flag the reload available.
	info := doc.Textures["gbuffer"]
	info.Width = 256
	info.Height = 256
	doc.Textures["gbuffer"] = info
	writeDoc(t, folder, doc)
	stub.state = reloader.StateAvailable

	sc := &mockSwapChain{numBuffers: 2}
	p.NewFrame(sc)

	// The GPU was idled before the rebuild, the reload ran to completion,
	// and frame upkeep still happened.
	assert.GreaterOrEqual(t, sc.waits, 1)
	assert.Equal(t, 1, stub.begins)
	assert.Equal(t, 1, stub.completes)
	assert.Equal(t, 1, device.cleanUps)

	w, _, ok := p.GetTexture2DSize("gbuffer")
	require.True(t, ok)
	assert.Equal(t, uint64(256), w)
}

func TestNewFrameWithoutReloadSkipsWait(t *testing.T) {
	doc := basicDoc()
	folder := t.TempDir()
	writeDoc(t, folder, doc)
	writeShader(t, folder, "mesh_vs.wgsl")
	writeShader(t, folder, "mesh_ps.wgsl")

	device := newMockDevice()
	stub := &stubReloader{}
	p := NewPmfx(device, WithReloader(stub))
	require.NoError(t, p.Load(folder))
	require.NoError(t, p.CreateRenderGraph("forward"))

	sc := &mockSwapChain{numBuffers: 2}
	p.NewFrame(sc)

	assert.Zero(t, sc.waits)
	assert.Zero(t, stub.begins)
	assert.Equal(t, 1, device.cleanUps)

	// Views were re-opened for recording.
	impl := p.(*pmfxImpl)
	assert.Equal(t, 1, impl.views["geometry"].CmdBuf.(*mockCmdBuf).resets)
}
