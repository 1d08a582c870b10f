package pmfx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, folder string, doc *DocFile) {
	t.Helper()
	raw, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(folder, docFileName), raw, 0o644))
}

func writeShader(t *testing.T, folder, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(folder, name), []byte("// "+name), 0o644))
}

func strPtr(s string) *string   { return &s }
func f32Ptr(f float32) *float32 { return &f }

// basicDoc declares a two-node forward graph: "geometry" renders meshes
// into a sampleable colour target, "resolve_post" runs after it into the
// output target.
func basicDoc() *DocFile {
	return &DocFile{
		Shaders: map[string]Version{
			"mesh_vs.wgsl": 1,
			"mesh_ps.wgsl": 1,
		},
		Pipelines: map[string]map[string]Pipeline{
			"mesh": {
				"0": {
					VS: strPtr("mesh_vs.wgsl"),
					PS: strPtr("mesh_ps.wgsl"),
					DescriptorLayout: gfx.DescriptorLayout{
						Bindings: []gfx.DescriptorBinding{
							{Slot: 0, Count: 1, BindType: gfx.DescriptorTypeConstantBuffer},
						},
					},
				},
			},
		},
		Textures: map[string]TextureInfo{
			"gbuffer": {
				Width:  128,
				Height: 128,
				Format: gfx.FormatRGBA8n,
				Usage:  gfx.TextureUsageShaderResource | gfx.TextureUsageRenderTarget,
			},
			"output": {
				Width:  128,
				Height: 128,
				Format: gfx.FormatRGBA8n,
				Usage:  gfx.TextureUsageShaderResource | gfx.TextureUsageRenderTarget,
			},
		},
		Views: map[string]ViewInfo{
			"main_view": {
				RenderTarget: []string{"gbuffer"},
				ClearColor:   &gfx.ClearColor{R: 0.1, G: 0.1, B: 0.1, A: 1},
				Camera:       "main",
			},
			"post_view": {
				RenderTarget: []string{"output"},
			},
		},
		RenderGraphs: map[string]map[string]GraphViewInfo{
			"forward": {
				"geometry": {
					View:      "main_view",
					Pipelines: []string{"mesh"},
					Function:  "render_meshes",
				},
				"resolve_post": {
					View:      "post_view",
					Function:  "render_post",
					DependsOn: []string{"geometry"},
				},
			},
		},
	}
}

// newTestPmfx writes doc (and the basic shader sources) into a temp folder
// and loads it into a fresh engine over a mock device.
func newTestPmfx(t *testing.T, doc *DocFile) (Pmfx, *mockDevice, string) {
	t.Helper()

	folder := t.TempDir()
	writeDoc(t, folder, doc)
	writeShader(t, folder, "mesh_vs.wgsl")
	writeShader(t, folder, "mesh_ps.wgsl")

	device := newMockDevice()
	p := NewPmfx(device)
	require.NoError(t, p.Load(folder))
	return p, device, folder
}
