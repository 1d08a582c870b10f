package gfx

import (
	"sync"
)

// RetiredResource is one entry in a ReclaimQueue: a release callback paired
// with the number of CleanUp calls it has waited through.
type RetiredResource struct {
	framesWaited int
	release      func()
}

// ReclaimQueue delays destruction of GPU resources until all frames in
// flight that might still reference them have retired. GPU completion, not
// CPU liveness, determines safe-to-free, so this is a frame-counted queue
// rather than reference counting. Backends retire resources into the queue
// from DestroyTexture and drain it once per frame from CleanUpResources.
type ReclaimQueue struct {
	mu      sync.Mutex
	pending []RetiredResource
}

// Retire enqueues a release callback to run once enough frames have retired.
// The callback typically frees native memory and returns descriptor slots to
// their heap free lists.
//
// Parameters:
//   - release: invoked exactly once when the resource is safe to free
func (q *ReclaimQueue) Retire(release func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, RetiredResource{release: release})
}

// CleanUp increments the wait counter of every queued entry and releases
// entries whose counter exceeds numBuffers. A resource retired while N
// frames are in flight is therefore freed on the N+1th CleanUp call at the
// earliest.
//
// Parameters:
//   - numBuffers: the swap chain buffer count bounding frames in flight
//
// Returns:
//   - int: the number of resources released this call
func (q *ReclaimQueue) CleanUp(numBuffers int) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	released := 0
	kept := q.pending[:0]
	for _, r := range q.pending {
		r.framesWaited++
		if r.framesWaited > numBuffers {
			r.release()
			released++
			continue
		}
		kept = append(kept, r)
	}
	q.pending = kept
	return released
}

// Len returns the number of resources still waiting to be released.
//
// Returns:
//   - int: pending entry count
func (q *ReclaimQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
