package kzalloc

import "unsafe"

import "github.com/Exfdr/KzAlloc/osmem"

// objectPool is the bootstrap metadata allocator: fixed-size objects
// carved from 128KB osmem chunks, recycled through an intrusive free
// list. It never touches the core allocator nor the Go heap, so span
// metadata and list sentinels can grow while the allocator's own locks
// are held. Objects handed out are zeroed.
type objectPool struct {
	mu      spinMutex
	objsize int64

	free   unsafe.Pointer // recycled objects, intrusive list
	chunks unsafe.Pointer // chunk list head, first word links chunks
	cursor uintptr        // bump pointer inside the newest chunk
	left   int64          // bytes left after cursor
}

func newObjectPool(objsize int64) *objectPool {
	if objsize < int64(unsafe.Sizeof(uintptr(0))) {
		panicerr("objectPool: objsize %v below pointer size", objsize)
	}
	return &objectPool{objsize: objsize}
}

// allocptr returns one zeroed object.
func (pool *objectPool) allocptr() unsafe.Pointer {
	pool.mu.lock()

	if pool.free != nil {
		ptr := pool.free
		pool.free = nextblock(ptr)
		pool.mu.unlock()
		memclr(ptr, pool.objsize)
		return ptr
	}

	if pool.left < pool.objsize {
		chunk := osmem.Alloc(poolChunkSize >> pageShift)
		if chunk == nil {
			pool.mu.unlock()
			panic(ErrorOutofMemory)
		}
		setnextblock(chunk, pool.chunks)
		pool.chunks = chunk
		pool.cursor = uintptr(chunk) + unsafe.Sizeof(uintptr(0))
		pool.left = poolChunkSize - int64(unsafe.Sizeof(uintptr(0)))
	}

	ptr := unsafe.Pointer(pool.cursor)
	pool.cursor += uintptr(pool.objsize)
	pool.left -= pool.objsize
	pool.mu.unlock()
	// chunk memory arrives zero-filled from the OS, no memclr needed on
	// the bump path.
	return ptr
}

// freeptr recycles an object onto the intrusive free list.
func (pool *objectPool) freeptr(ptr unsafe.Pointer) {
	if ptr == nil {
		panicerr("objectPool.freeptr: nil pointer")
	}
	pool.mu.lock()
	setnextblock(ptr, pool.free)
	pool.free = ptr
	pool.mu.unlock()
}

// release returns every chunk to the OS. Outstanding objects become
// dangling, callers release only at teardown.
func (pool *objectPool) release() {
	pool.mu.lock()
	chunk := pool.chunks
	for chunk != nil {
		next := nextblock(chunk)
		osmem.Free(chunk, poolChunkSize>>pageShift)
		chunk = next
	}
	pool.chunks, pool.free = nil, nil
	pool.cursor, pool.left = 0, 0
	pool.mu.unlock()
}
