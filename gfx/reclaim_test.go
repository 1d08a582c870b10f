package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReclaimQueueDelaysRelease(t *testing.T) {
	var q ReclaimQueue
	released := false
	q.Retire(func() { released = true })

	const numBuffers = 2

	// Not freed until the wait counter exceeds the buffer count: with 2
	// frames in flight the 3rd CleanUp call is the first that may release.
	for i := 0; i < numBuffers; i++ {
		assert.Zero(t, q.CleanUp(numBuffers))
		assert.False(t, released, "released after %d clean-up calls", i+1)
	}
	assert.Equal(t, 1, q.CleanUp(numBuffers))
	assert.True(t, released)
	assert.Zero(t, q.Len())
}

func TestReclaimQueueIndependentCounters(t *testing.T) {
	var q ReclaimQueue
	order := []string{}

	q.Retire(func() { order = append(order, "first") })
	q.CleanUp(1) // first has now waited 1 frame
	q.Retire(func() { order = append(order, "second") })

	q.CleanUp(1) // first waited 2 > 1: released; second waited 1: kept
	assert.Equal(t, []string{"first"}, order)

	q.CleanUp(1)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestReclaimQueueReleasesDescriptorSlots(t *testing.T) {
	// Retiring a texture releases its descriptor slots back to the heap's
	// free list, making them reusable by subsequent allocations.
	heap := NewDescriptorHeap(0, 32, 2)
	srv := heap.Allocate()
	index := heap.HandleIndex(srv)

	var q ReclaimQueue
	q.Retire(func() { heap.Deallocate(index) })

	heap.Allocate() // heap now full
	q.CleanUp(0)

	assert.Equal(t, index, heap.HandleIndex(heap.Allocate()))
}
