package camera

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrbitPosition(t *testing.T) {
	c := NewCamera(
		WithTarget(0, 0, 0),
		WithOrbit(10, 0, 0),
	)

	// Azimuth 0, elevation 0 places the camera on the +Z axis.
	x, y, z := c.Position()
	assert.InDelta(t, 0, x, 1e-5)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 10, z, 1e-5)

	// A quarter turn moves it to the +X axis.
	c.Orbit(float32(math.Pi/2), 0)
	x, y, z = c.Position()
	assert.InDelta(t, 10, x, 1e-4)
	assert.InDelta(t, 0, y, 1e-5)
	assert.InDelta(t, 0, z, 1e-4)
}

func TestOrbitClampsElevation(t *testing.T) {
	c := NewCamera(WithOrbit(10, 0, 0))

	c.Orbit(0, 10) // way past the pole
	_, y, _ := c.Position()
	assert.Less(t, y, float32(10)) // never fully vertical
}

func TestZoomClampsRadius(t *testing.T) {
	c := NewCamera(
		WithOrbit(5, 0, 0),
		WithClipPlanes(0.1, 100),
		WithZoomSpeed(1),
	)

	c.Zoom(1000)
	x, y, z := c.Position()
	dist := math.Sqrt(float64(x*x + y*y + z*z))
	assert.InDelta(t, 0.1, dist, 1e-4)
}

func TestSetAspectUpdatesProjection(t *testing.T) {
	c := NewCamera(WithAspect(1))
	before := c.Constants().Projection

	c.SetAspect(2)
	after := c.Constants().Projection
	assert.InDelta(t, before[0]/2, after[0], 1e-5)
	assert.Equal(t, before[5], after[5])

	// Degenerate aspect is ignored.
	c.SetAspect(0)
	assert.Equal(t, after, c.Constants().Projection)
}
