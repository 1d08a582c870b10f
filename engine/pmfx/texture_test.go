package pmfx

import (
	"testing"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTextureIdempotent(t *testing.T) {
	p, device, _ := newTestPmfx(t, basicDoc())

	require.NoError(t, p.CreateTexture("gbuffer"))
	require.NoError(t, p.CreateTexture("gbuffer"))
	assert.Len(t, device.created, 1)

	tex, ok := p.GetTexture("gbuffer")
	assert.True(t, ok)
	assert.NotNil(t, tex)

	w, h, ok := p.GetTexture2DSize("gbuffer")
	assert.True(t, ok)
	assert.Equal(t, uint64(128), w)
	assert.Equal(t, uint64(128), h)
}

func TestCreateTextureUndeclared(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())
	assert.ErrorIs(t, p.CreateTexture("nope"), gfx.ErrNotFound)

	_, ok := p.GetTexture("nope")
	assert.False(t, ok)
}

func ratioDoc() *DocFile {
	doc := basicDoc()
	doc.Textures["gbuffer"] = TextureInfo{
		Ratio:  &TextureSizeRatio{Window: "main_window", Scale: 0.5},
		Format: gfx.FormatRGBA8n,
		Usage:  gfx.TextureUsageShaderResource | gfx.TextureUsageRenderTarget,
	}
	return doc
}

func TestRatioTextureFollowsWindowSize(t *testing.T) {
	p, _, _ := newTestPmfx(t, ratioDoc())

	p.UpdateWindow("main_window", 100, 80)
	require.NoError(t, p.CreateTexture("gbuffer"))

	w, h, ok := p.GetTexture2DSize("gbuffer")
	require.True(t, ok)
	assert.Equal(t, uint64(50), w)
	assert.Equal(t, uint64(40), h)
}

func TestUpdateWindowRecreatesRatioTextures(t *testing.T) {
	p, device, _ := newTestPmfx(t, ratioDoc())

	p.UpdateWindow("main_window", 100, 80)
	require.NoError(t, p.CreateRenderGraph("forward"))
	require.NotEmpty(t, p.ExecuteOrder())

	p.UpdateWindow("main_window", 200, 160)

	assert.Equal(t, 1, device.destroyed)
	w, h, ok := p.GetTexture2DSize("gbuffer")
	require.True(t, ok)
	assert.Equal(t, uint64(100), w)
	assert.Equal(t, uint64(80), h)

	// The view into the resized texture was dropped and the active graph
	// recompiled against the new resource.
	assert.Contains(t, p.ExecuteOrder(), "geometry")
	assert.Empty(t, p.ExcludedNodes())
}

func TestUpdateWindowSameSizeNoOp(t *testing.T) {
	p, device, _ := newTestPmfx(t, ratioDoc())

	p.UpdateWindow("main_window", 100, 80)
	require.NoError(t, p.CreateTexture("gbuffer"))

	p.UpdateWindow("main_window", 100, 80)
	assert.Zero(t, device.destroyed)
	assert.Len(t, device.created, 1)
}

func TestRatioTextureClampsToSampleCount(t *testing.T) {
	doc := ratioDoc()
	info := doc.Textures["gbuffer"]
	info.Samples = 4
	doc.Textures["gbuffer"] = info
	p, _, _ := newTestPmfx(t, doc)

	p.UpdateWindow("main_window", 2, 2)
	require.NoError(t, p.CreateTexture("gbuffer"))

	w, h, ok := p.GetTexture2DSize("gbuffer")
	require.True(t, ok)
	assert.Equal(t, uint64(4), w)
	assert.Equal(t, uint64(4), h)
}

func TestGetWindowSizeAndAspect(t *testing.T) {
	p, _, _ := newTestPmfx(t, basicDoc())

	_, _, ok := p.GetWindowSize("main_window")
	assert.False(t, ok)
	assert.Zero(t, p.GetWindowAspect("main_window"))

	p.UpdateWindow("main_window", 1280, 720)
	w, h, ok := p.GetWindowSize("main_window")
	require.True(t, ok)
	assert.Equal(t, uint32(1280), w)
	assert.Equal(t, uint32(720), h)
	assert.InDelta(t, 1280.0/720.0, p.GetWindowAspect("main_window"), 1e-6)
}
