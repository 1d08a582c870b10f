package pmfx

func (p *pmfxImpl) UpdateCameraConstants(name string, constants CameraConstants) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cameras[name] = constants
}

func (p *pmfxImpl) GetCameraConstants(name string) (CameraConstants, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	constants, ok := p.cameras[name]
	return constants, ok
}
