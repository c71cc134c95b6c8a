package kzalloc

import "unsafe"

// blockList is the thread-cache free-list primitive: a singly-linked list
// of blocks threaded through their first machine word, with head, tail
// and length tracked for O(1) range splices. maxsize carries the
// slow-start batch threshold, maxnum its per-class ceiling.
type blockList struct {
	head unsafe.Pointer
	tail unsafe.Pointer
	size int64

	maxsize int64 // slow-start threshold, starts at 1 and doubles
	maxnum  int64 // ceiling for maxsize, batchmax of the class
}

func (l *blockList) empty() bool {
	return l.head == nil
}

func (l *blockList) push(ptr unsafe.Pointer) {
	if ptr == nil {
		panicerr("blockList.push: nil block")
	}
	setnextblock(ptr, l.head)
	l.head = ptr
	if l.tail == nil {
		l.tail = ptr
	}
	l.size++
}

func (l *blockList) pop() unsafe.Pointer {
	if l.head == nil {
		panicerr("blockList.pop: empty list")
	}
	ptr := l.head
	l.head = nextblock(ptr)
	if l.head == nil {
		l.tail = nil
	}
	l.size--
	return ptr
}

// pushRange splices a pre-linked chain of n blocks onto the head.
func (l *blockList) pushRange(head, tail unsafe.Pointer, n int64) {
	if head == nil || tail == nil {
		panicerr("blockList.pushRange: nil range")
	}
	setnextblock(tail, l.head)
	l.head = head
	if l.tail == nil {
		l.tail = tail
	}
	l.size += n
}

// popRange detaches the first n blocks and returns the chain's head and
// tail. Walks n-1 links, called only on the release path.
func (l *blockList) popRange(n int64) (head, tail unsafe.Pointer) {
	if n > l.size {
		panicerr("blockList.popRange: %v exceeds size %v", n, l.size)
	}
	head = l.head
	tail = head
	for i := int64(0); i < n-1; i++ {
		tail = nextblock(tail)
	}
	l.head = nextblock(tail)
	setnextblock(tail, nil)
	if l.head == nil {
		l.tail = nil
	}
	l.size -= n
	return head, tail
}
