package gfx

import (
	"fmt"
)

// DescriptorHandle addresses one GPU-visible descriptor slot inside a
// DescriptorHeap. Handles are plain addresses so they can be converted to a
// flat slot index for storage in lightweight index fields instead of raw
// native handles.
type DescriptorHandle struct {
	Ptr uint64
}

// DescriptorHeap is a fixed-capacity slab allocator for GPU-visible
// descriptor slots with LIFO free-list reuse. Descriptor heaps are
// contiguous and must not be reallocated mid-frame, so the slab bumps a
// monotonic offset for fresh slots and recycles returned slots through the
// free list across texture recreate cycles.
//
// The zero value is not usable; construct with NewDescriptorHeap.
type DescriptorHeap struct {
	baseAddress   uint64
	incrementSize uint64
	capacity      uint64 // in bytes, numDescriptors * incrementSize
	offset        uint64
	freeList      []uint64
}

// NewDescriptorHeap creates a descriptor heap slab over a contiguous range
// of descriptor slots owned by the backing native heap.
//
// Parameters:
//   - baseAddress: address of the first descriptor slot
//   - incrementSize: byte stride between consecutive slots
//   - numDescriptors: slot capacity of the heap
//
// Returns:
//   - *DescriptorHeap: the allocator, with an empty free list
func NewDescriptorHeap(baseAddress, incrementSize uint64, numDescriptors int) *DescriptorHeap {
	return &DescriptorHeap{
		baseAddress:   baseAddress,
		incrementSize: incrementSize,
		capacity:      uint64(numDescriptors) * incrementSize,
	}
}

// Allocate returns a descriptor slot, reusing the most recently freed slot
// if the free list is non-empty, otherwise bumping the monotonic offset.
// Exhausting the heap is fatal: descriptor heaps cannot grow mid-frame, so
// running out is an unrecoverable configuration error.
//
// Returns:
//   - DescriptorHandle: the allocated slot
func (h *DescriptorHeap) Allocate() DescriptorHandle {
	if n := len(h.freeList); n > 0 {
		ptr := h.freeList[n-1]
		h.freeList = h.freeList[:n-1]
		return DescriptorHandle{Ptr: ptr}
	}
	if h.offset >= h.capacity {
		panic(fmt.Sprintf("gfx: descriptor heap is full (capacity %d)", h.capacity/h.incrementSize))
	}
	ptr := h.baseAddress + h.offset
	h.offset += h.incrementSize
	return DescriptorHandle{Ptr: ptr}
}

// HandleIndex computes the flat slot index of a handle within the heap via
// (address - base) / increment. Indices are the unit of exchange across the
// pmfx boundary; raw handles never leave the backend.
//
// Parameters:
//   - handle: a handle previously returned by Allocate
//
// Returns:
//   - int: the slot index
func (h *DescriptorHeap) HandleIndex(handle DescriptorHandle) int {
	return int((handle.Ptr - h.baseAddress) / h.incrementSize)
}

// Deallocate returns the slot at the given index to the free list.
//
// Parameters:
//   - index: a slot index previously derived via HandleIndex
func (h *DescriptorHeap) Deallocate(index int) {
	h.DeallocateHandle(DescriptorHandle{Ptr: h.baseAddress + h.incrementSize*uint64(index)})
}

// DeallocateHandle returns a slot to the free list by handle.
//
// Parameters:
//   - handle: a handle previously returned by Allocate
func (h *DescriptorHeap) DeallocateHandle(handle DescriptorHandle) {
	h.freeList = append(h.freeList, handle.Ptr)
}
