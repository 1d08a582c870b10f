// Package camera computes view and projection matrices for named render
// cameras. Cameras orbit a target point using spherical coordinates and
// publish their matrices as pmfx camera constants, which render functions
// fetch by name when recording views.
package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/pmfx-go/common"
	"github.com/Carmen-Shannon/pmfx-go/engine/pmfx"
)

// Camera holds perspective settings and an orbit position around a target,
// and produces the matrices render functions push to shaders.
type Camera interface {
	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio and recomputes matrices. Called when
	// the window the camera renders into resizes.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float32)

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// SetTarget sets the orbit pivot and recomputes position and matrices.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// Orbit rotates the camera around the target. Elevation is clamped just
	// short of the poles so the up vector stays valid.
	//
	// Parameters:
	//   - dAzimuth: horizontal angle delta in radians
	//   - dElevation: vertical angle delta in radians
	Orbit(dAzimuth, dElevation float32)

	// Zoom adjusts the orbit radius. Positive delta moves toward the
	// target; the radius is clamped to stay positive.
	//
	// Parameters:
	//   - delta: distance change scaled by the zoom speed
	Zoom(delta float32)

	// Constants returns the camera's current matrices as pmfx camera
	// constants, ready to publish under the camera's declared name.
	//
	// Returns:
	//   - pmfx.CameraConstants: view, projection and view-projection
	Constants() pmfx.CameraConstants
}

type cameraImpl struct {
	mu *sync.Mutex

	up [3]float32

	fov    float32
	aspect float32
	near   float32
	far    float32

	target    [3]float32
	position  [3]float32
	radius    float32
	azimuth   float32
	elevation float32
	zoomSpeed float32

	constants pmfx.CameraConstants
}

var _ Camera = &cameraImpl{}

// NewCamera creates a camera with default perspective settings orbiting the
// origin.
//
// Parameters:
//   - optionBuilders: optional configuration, see CameraBuilderOption
//
// Returns:
//   - Camera: the camera
func NewCamera(optionBuilders ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:        &sync.Mutex{},
		up:        [3]float32{0, 1, 0},
		fov:       45.0 * (math.Pi / 180.0),
		aspect:    1.0,
		near:      0.1,
		far:       1000.0,
		radius:    25.0,
		elevation: float32(math.Pi / 6),
		zoomSpeed: 2.0,
	}
	for _, ob := range optionBuilders {
		ob(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Position() (x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1], c.position[2]
}

func (c *cameraImpl) SetTarget(x, y, z float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = [3]float32{x, y, z}
	c.updateMatrices()
}

func (c *cameraImpl) Orbit(dAzimuth, dElevation float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.azimuth += dAzimuth
	c.elevation += dElevation
	limit := float32(math.Pi/2 - 0.05)
	if c.elevation > limit {
		c.elevation = limit
	}
	if c.elevation < -limit {
		c.elevation = -limit
	}
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.radius -= delta * c.zoomSpeed
	if c.radius < c.near {
		c.radius = c.near
	}
	c.updateMatrices()
}

func (c *cameraImpl) Constants() pmfx.CameraConstants {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.constants
}

// updateMatrices recomputes the orbit position from spherical coordinates
// and rebuilds the published matrices. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	cosElev := float32(math.Cos(float64(c.elevation)))
	sinElev := float32(math.Sin(float64(c.elevation)))
	cosAzim := float32(math.Cos(float64(c.azimuth)))
	sinAzim := float32(math.Sin(float64(c.azimuth)))

	c.position[0] = c.target[0] + c.radius*cosElev*sinAzim
	c.position[1] = c.target[1] + c.radius*sinElev
	c.position[2] = c.target[2] + c.radius*cosElev*cosAzim

	common.LookAt(c.constants.View[:],
		c.position[0], c.position[1], c.position[2],
		c.target[0], c.target[1], c.target[2],
		c.up[0], c.up[1], c.up[2],
	)
	common.Perspective(c.constants.Projection[:], c.fov, c.aspect, c.near, c.far)
	common.Mul4(c.constants.ViewProjection[:], c.constants.Projection[:], c.constants.View[:])
}
