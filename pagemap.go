package kzalloc

import "sync"
import "sync/atomic"
import "unsafe"

import "github.com/Exfdr/KzAlloc/osmem"

const lenRoot = 1 << bitsRoot
const lenInterior = 1 << bitsInterior
const lenLeaf = 1 << bitsLeaf

const ptrsize = unsafe.Sizeof(uintptr(0))

// pageMap is the radix tree resolving page id -> span. Reads are
// lock-free: acquire loads walk the levels, a nil at any level means the
// page was never mapped. Writes grow missing nodes under a single grow
// mutex with double-checked locking; leaf stores are release-ordered
// machine-word writes. Nodes come from osmem (zero-filled) and are never
// returned, the tree only grows.
type pageMap struct {
	root [lenRoot]unsafe.Pointer
	grow sync.Mutex
}

func newPageMap() *pageMap {
	return &pageMap{}
}

// slot returns the address of entry i inside an off-heap pointer-array
// node.
func slot(node unsafe.Pointer, i uint64) *unsafe.Pointer {
	return (*unsafe.Pointer)(unsafe.Pointer(uintptr(node) + uintptr(i)*ptrsize))
}

// get resolves a page id, nil when unmapped. Safe for concurrent use
// without locks.
func (m *pageMap) get(id uint64) *span {
	var ri uint64
	if radixLevels == 3 {
		ri = id >> (bitsInterior + bitsLeaf)
	} else {
		ri = id >> bitsLeaf
	}
	if ri >= lenRoot {
		return nil
	}
	node := atomic.LoadPointer(&m.root[ri])
	if node == nil {
		return nil
	}
	if radixLevels == 3 {
		ii := (id >> bitsLeaf) & (lenInterior - 1)
		node = atomic.LoadPointer(slot(node, ii))
		if node == nil {
			return nil
		}
	}
	li := id & (lenLeaf - 1)
	return (*span)(atomic.LoadPointer(slot(node, li)))
}

// set maps a page id to a span (nil clears). Callers hold their own
// structure locks; the grow mutex only serializes node allocation.
func (m *pageMap) set(id uint64, s *span) {
	var ri uint64
	if radixLevels == 3 {
		ri = id >> (bitsInterior + bitsLeaf)
	} else {
		ri = id >> bitsLeaf
	}
	if ri >= lenRoot {
		panicerr("pageMap.set: page id %v out of range", id)
	}

	node := atomic.LoadPointer(&m.root[ri])
	if node == nil {
		node = m.grownode(&m.root[ri], interiornodepages())
	}
	if radixLevels == 3 {
		ii := (id >> bitsLeaf) & (lenInterior - 1)
		leaf := atomic.LoadPointer(slot(node, ii))
		if leaf == nil {
			leaf = m.grownode(slot(node, ii), leafnodepages())
		}
		node = leaf
	}
	li := id & (lenLeaf - 1)
	atomic.StorePointer(slot(node, li), unsafe.Pointer(s))
}

// grownode installs a zero-filled node at *slotp if still missing,
// double-checked under the grow mutex.
func (m *pageMap) grownode(slotp *unsafe.Pointer, kpages int64) unsafe.Pointer {
	m.grow.Lock()
	node := atomic.LoadPointer(slotp)
	if node == nil {
		node = osmem.Alloc(kpages)
		if node == nil {
			m.grow.Unlock()
			panic(ErrorOutofMemory)
		}
		atomic.StorePointer(slotp, node)
	}
	m.grow.Unlock()
	return node
}

func interiornodepages() int64 {
	if radixLevels == 3 {
		return nodepages(lenInterior)
	}
	return nodepages(lenLeaf)
}

func leafnodepages() int64 {
	return nodepages(lenLeaf)
}

func nodepages(entries int64) int64 {
	bytes := entries * int64(ptrsize)
	return (bytes + pageSize - 1) >> pageShift
}
