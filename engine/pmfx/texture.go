package pmfx

import (
	"log"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

// trackedTexture pairs a device texture with the declaration it was built
// from and its current resolved size, so ratio textures can be diffed and
// recreated on window resize.
type trackedTexture struct {
	texture  gfx.Texture
	info     TextureInfo
	size     [2]uint64
	ratio    *TextureSizeRatio
	declHash Version
}

func (p *pmfxImpl) Load(folder string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	doc, err := loadDocFile(folder)
	if err != nil {
		return err
	}

	for name := range doc.Pipelines {
		p.pmfxFolders[name] = folder
	}

	alreadyLoaded := false
	for _, loaded := range p.loadedFolders {
		if loaded == folder {
			alreadyLoaded = true
			break
		}
	}
	if !alreadyLoaded {
		p.loadedFolders = append(p.loadedFolders, folder)
	}

	p.merged.merge(doc)
	return nil
}

func (p *pmfxImpl) CreateTexture(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, err := p.createTextureLocked(name)
	return err
}

// createTextureLocked instantiates a declared texture, returning the
// existing instance when one is already tracked.
func (p *pmfxImpl) createTextureLocked(name string) (*trackedTexture, error) {
	if tracked, ok := p.trackedTextures[name]; ok {
		return tracked, nil
	}

	info, ok := p.merged.Textures[name]
	if !ok {
		return nil, errNotFound("texture", name)
	}

	deviceInfo := info.deviceTextureInfo(p.windowSizes)
	tex, err := p.device.CreateTexture(&deviceInfo, nil)
	if err != nil {
		return nil, err
	}

	tracked := &trackedTexture{
		texture:  tex,
		info:     info,
		size:     [2]uint64{deviceInfo.Width, deviceInfo.Height},
		ratio:    info.Ratio,
		declHash: info.Hash,
	}
	p.trackedTextures[name] = tracked
	return tracked, nil
}

// recreateTextureLocked destroys and re-instantiates a tracked texture from
// its (possibly updated) declaration, then removes every view rendering
// into it so the graph rebuild reinstantiates them against the new
// resource. Returns the names of the removed views.
func (p *pmfxImpl) recreateTextureLocked(name string, info TextureInfo) []string {
	tracked, ok := p.trackedTextures[name]
	if ok {
		p.device.DestroyTexture(tracked.texture)
		delete(p.trackedTextures, name)
	}

	removed := []string{}
	for viewName := range p.viewTextureRefs[name] {
		if _, live := p.views[viewName]; live {
			removed = append(removed, viewName)
			delete(p.views, viewName)
		}
	}
	delete(p.viewTextureRefs, name)

	p.merged.Textures[name] = info
	if _, err := p.createTextureLocked(name); err != nil {
		log.Printf("[pmfx] failed to recreate texture %s: %v", name, err)
		p.logErrorLocked("", "failed to recreate texture "+name+": "+err.Error())
	}
	return removed
}

func (p *pmfxImpl) UpdateWindow(name string, width, height uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.windowSizes[name] = [2]uint32{width, height}

	viewsRemoved := false
	for texName, tracked := range p.trackedTextures {
		if tracked.ratio == nil || tracked.ratio.Window != name {
			continue
		}
		deviceInfo := tracked.info.deviceTextureInfo(p.windowSizes)
		if deviceInfo.Width == tracked.size[0] && deviceInfo.Height == tracked.size[1] {
			continue
		}
		if len(p.recreateTextureLocked(texName, tracked.info)) > 0 {
			viewsRemoved = true
		}
	}

	if viewsRemoved && p.activeGraph != "" {
		if err := p.createRenderGraphLocked(p.activeGraph); err != nil {
			log.Printf("[pmfx] failed to recompile render graph %s after resize: %v", p.activeGraph, err)
		}
	}
}
