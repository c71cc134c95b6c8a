package kzalloc

import "testing"
import "unsafe"

// blocks for list tests, carved out of one local buffer.
func testblocks(n int) []unsafe.Pointer {
	buf := make([]byte, n*16)
	ptrs := make([]unsafe.Pointer, n)
	for i := 0; i < n; i++ {
		ptrs[i] = unsafe.Pointer(&buf[i*16])
	}
	return ptrs
}

func TestBlockListPushPop(t *testing.T) {
	var list blockList
	ptrs := testblocks(4)
	for _, ptr := range ptrs {
		list.push(ptr)
	}
	if list.size != 4 {
		t.Errorf("expected %v, got %v", 4, list.size)
	}
	// LIFO order
	for i := 3; i >= 0; i-- {
		if ptr := list.pop(); ptr != ptrs[i] {
			t.Errorf("expected %v, got %v", ptrs[i], ptr)
		}
	}
	if !list.empty() || list.tail != nil {
		t.Errorf("list not empty after draining")
	}
}

func TestBlockListRange(t *testing.T) {
	var list blockList
	ptrs := testblocks(6)

	// pre-link ptrs[0..2] into a chain and splice it in one go.
	setnextblock(ptrs[0], ptrs[1])
	setnextblock(ptrs[1], ptrs[2])
	setnextblock(ptrs[2], nil)
	list.pushRange(ptrs[0], ptrs[2], 3)
	if list.size != 3 {
		t.Errorf("expected %v, got %v", 3, list.size)
	}

	list.push(ptrs[3])
	head, tail := list.popRange(2)
	if head != ptrs[3] || tail != ptrs[0] {
		t.Errorf("unexpected range %v %v", head, tail)
	}
	if nextblock(tail) != nil {
		t.Errorf("detached range not terminated")
	}
	if list.size != 2 {
		t.Errorf("expected %v, got %v", 2, list.size)
	}

	// drain the remainder
	head, tail = list.popRange(2)
	if head != ptrs[1] || tail != ptrs[2] {
		t.Errorf("unexpected range %v %v", head, tail)
	}
	if !list.empty() || list.tail != nil {
		t.Errorf("list not empty after draining")
	}
}

func TestBlockListPopRangeAll(t *testing.T) {
	var list blockList
	ptrs := testblocks(5)
	for _, ptr := range ptrs {
		list.push(ptr)
	}
	head, _ := list.popRange(5)
	count := 0
	for ptr := head; ptr != nil; ptr = nextblock(ptr) {
		count++
	}
	if count != 5 {
		t.Errorf("expected %v, got %v", 5, count)
	}
}
