package gfx

import (
	"errors"
	"fmt"
)

// Sentinel errors for the device layer's failure taxonomy. Backend-specific
// failures (allocation, malformed layouts) are returned as wrapped errors
// carrying the backend's message.
var (
	// ErrDataSize indicates initialisation data whose length does not match
	// the expected resource byte size. Rejected before any backend allocation.
	ErrDataSize = errors.New("gfx: data size does not match expected resource size")

	// ErrNotFound indicates a referenced resource, pipeline, view, camera or
	// window name is absent. Returned to the caller, never fatal.
	ErrNotFound = errors.New("gfx: not found")

	// ErrResolveIncompatible indicates an MSAA resolve was requested on a
	// texture with no resolve-capable secondary resource.
	ErrResolveIncompatible = errors.New("gfx: texture is not resolvable")
)

// ValidateDataSize checks that optional initialisation data matches the
// expected byte size of a resource. Nil data always validates.
//
// Parameters:
//   - sizeBytes: the expected resource size in bytes
//   - data: the supplied initialisation data, or nil
//
// Returns:
//   - error: ErrDataSize (wrapped with both sizes) on mismatch, nil otherwise
func ValidateDataSize(sizeBytes int, data []byte) error {
	if data == nil {
		return nil
	}
	if len(data) != sizeBytes {
		return fmt.Errorf("%w: data size (%d) bytes, expected (%d) bytes", ErrDataSize, len(data), sizeBytes)
	}
	return nil
}
