package kzalloc

import "unsafe"

// span is a contiguous run of pages managed as one unit. Spans and the
// list sentinels linking them are allocated from an objectPool, never
// from the Go heap: the radix tree stores span pointers in memory the
// garbage collector cannot see.
type span struct {
	prev *span
	next *span

	pageID uint64 // first page of the run
	npages int64  // number of pages

	objSize  int64          // block size when carved, whole size for large spans
	freeList unsafe.Pointer // intrusive list of free blocks inside the span
	useCount int64          // blocks currently handed out

	inUse   bool  // owned by central cache or application
	isCold  bool  // physical backing advised away
	shardID uint8 // origin shard, invariant until fully reclaimed
}

// spansize is the objectPool object size backing spans and sentinels.
var spansize = int64(unsafe.Sizeof(span{}))

// base returns the first byte of the span's page run.
func (s *span) base() unsafe.Pointer {
	return unsafe.Pointer(uintptr(s.pageID) << pageShift)
}

// unlink removes the span from whatever list holds it.
func (s *span) unlink() {
	s.prev.next = s.next
	s.next.prev = s.prev
	s.prev, s.next = nil, nil
}

// spanList is an intrusive doubly-linked list with a pool-allocated
// sentinel. The zero value is unusable until init.
type spanList struct {
	head *span // sentinel
}

func (l *spanList) init(pool *objectPool) {
	s := (*span)(pool.allocptr())
	s.prev, s.next = s, s
	l.head = s
}

func (l *spanList) empty() bool {
	return l.head.next == l.head
}

func (l *spanList) pushFront(s *span) {
	s.prev, s.next = l.head, l.head.next
	l.head.next.prev = s
	l.head.next = s
}

// popFront detaches and returns the first span, nil when empty.
func (l *spanList) popFront() *span {
	s := l.head.next
	if s == l.head {
		return nil
	}
	s.unlink()
	return s
}

// first returns the head span without detaching, nil when empty.
func (l *spanList) first() *span {
	if l.empty() {
		return nil
	}
	return l.head.next
}

// release returns the sentinel to its pool. The list must be empty.
func (l *spanList) release(pool *objectPool) {
	if !l.empty() {
		panicerr("spanList.release: list not empty")
	}
	pool.freeptr(unsafe.Pointer(l.head))
	l.head = nil
}
