package pmfx

import (
	"log"

	"github.com/Carmen-Shannon/pmfx-go/gfx"
)

func (p *pmfxImpl) Reload() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloadLocked()
}

// reloadLocked re-reads every loaded document and converges live GPU state
// onto the fresh declarations. Artifacts are diffed by content-hash
// version: changed textures are recreated (dropping dependent views),
// changed or orphaned views are dropped, changed shaders are evicted, and
// dirty pipeline permutations are rebuilt against a live view whose pass
// formats match.
func (p *pmfxImpl) reloadLocked() error {
	fresh := DocFile{}
	folders := map[string]string{}
	for _, folder := range p.loadedFolders {
		doc, err := loadDocFile(folder)
		if err != nil {
			return err
		}
		for name := range doc.Pipelines {
			folders[name] = folder
		}
		fresh.merge(doc)
	}
	p.merged = fresh
	p.pmfxFolders = folders

	viewsRemoved := false

	trackedNames := make([]string, 0, len(p.trackedTextures))
	for name := range p.trackedTextures {
		trackedNames = append(trackedNames, name)
	}
	for _, name := range trackedNames {
		tracked := p.trackedTextures[name]
		info, declared := fresh.Textures[name]
		if !declared {
			for viewName := range p.viewTextureRefs[name] {
				if _, live := p.views[viewName]; live {
					delete(p.views, viewName)
					viewsRemoved = true
				}
			}
			delete(p.viewTextureRefs, name)
			p.device.DestroyTexture(tracked.texture)
			delete(p.trackedTextures, name)
			continue
		}
		if info.Hash != tracked.declHash {
			if len(p.recreateTextureLocked(name, info)) > 0 {
				viewsRemoved = true
			}
		}
	}

	for name, view := range p.views {
		info, declared := fresh.Views[view.source]
		if !declared || info.Hash != view.sourceHash {
			delete(p.views, name)
			viewsRemoved = true
		}
	}

	evicted := map[string]struct{}{}
	for filename, version := range p.shaderVersions {
		if fresh.Shaders[filename] != version {
			delete(p.shaders, filename)
			delete(p.shaderVersions, filename)
			evicted[filename] = struct{}{}
		}
	}

	p.rebuildDirtyPipelinesLocked(evicted)

	if viewsRemoved && p.activeGraph != "" {
		if err := p.createRenderGraphLocked(p.activeGraph); err != nil {
			return err
		}
	}
	return nil
}

// rebuildDirtyPipelinesLocked rebuilds pipeline permutations whose
// declaration version changed or whose shaders were evicted. Render
// permutations need a live view with the same pass format combination to
// rebuild against; without one the rebuild is deferred until the next graph
// compile instantiates such a view.
func (p *pmfxImpl) rebuildDirtyPipelinesLocked(evicted map[string]struct{}) {
	for name, permutations := range p.merged.Pipelines {
		for maskKey, decl := range permutations {
			mask, err := parsePermutationMask(maskKey)
			if err != nil {
				continue
			}

			if decl.CS != nil {
				existing, built := p.computePipelines[name]
				if !built {
					continue
				}
				if existing.hash == decl.Hash && !shaderEvicted(evicted, decl.CS) {
					continue
				}
				delete(p.computePipelines, name)
				if cErr := p.createPipelineLocked(name, nil); cErr != nil {
					log.Printf("[pmfx] failed to rebuild compute pipeline %s: %v", name, cErr)
					p.logErrorLocked("", cErr.Error())
				}
				continue
			}

			for formatHash, byName := range p.renderPipelines {
				entry, built := byName[name][mask]
				if !built {
					continue
				}
				if entry.hash == decl.Hash && !shaderEvicted(evicted, decl.VS) && !shaderEvicted(evicted, decl.PS) {
					continue
				}
				delete(byName[name], mask)

				pass := p.findPassLocked(formatHash)
				if pass == nil {
					log.Printf("[pmfx] pipeline %s: no live view matches format hash %x, rebuild deferred", name, formatHash)
					continue
				}
				if cErr := p.createPipelineLocked(name, pass); cErr != nil {
					log.Printf("[pmfx] failed to rebuild render pipeline %s: %v", name, cErr)
					p.logErrorLocked("", cErr.Error())
				}
			}
		}
	}
}

// shaderEvicted reports whether a declared shader reference points at a
// source evicted from the cache by a version change this reload.
func shaderEvicted(evicted map[string]struct{}, filename *string) bool {
	if filename == nil {
		return false
	}
	_, ok := evicted[*filename]
	return ok
}

// findPassLocked returns the pass of any live view whose attachment format
// combination matches formatHash.
func (p *pmfxImpl) findPassLocked(formatHash uint64) gfx.RenderPass {
	for _, view := range p.views {
		if view.Pass.FormatHash() == formatHash {
			return view.Pass
		}
	}
	return nil
}
