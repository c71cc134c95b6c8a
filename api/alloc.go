// Package api holds interface specifications to access the allocator,
// for applications that inject an allocator value instead of binding to
// package functions.
package api

import "unsafe"

// Allocator interface for concurrent memory management.
type Allocator interface {
	// Alloc allocate a block of `n` bytes. Allocated memory is always
	// 64-bit aligned, page aligned above the small-object limit.
	Alloc(n int64) unsafe.Pointer

	// AllocN allocate a block for n elements of elemsize bytes,
	// guarding the product against overflow.
	AllocN(n, elemsize int64) unsafe.Pointer

	// Free a block, deriving its size from allocator metadata.
	Free(ptr unsafe.Pointer)

	// FreeSized free a block whose request size the caller knows,
	// skipping the metadata lookup.
	FreeSized(ptr unsafe.Pointer, n int64)

	// Realloc resize a block, copying its contents when it must move.
	Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer

	// ReallocSized resize a block whose request size the caller knows.
	ReallocSized(ptr unsafe.Pointer, oldn, newn int64) unsafe.Pointer

	// Chunklen return the usable length of an allocated block.
	Chunklen(ptr unsafe.Pointer) int64

	// Drain return cached free blocks to the allocator's slower tiers,
	// called when a worker pool winds down or at idle points.
	Drain()

	// Stats of memory accounting for this allocator.
	Stats() map[string]interface{}
}
