package kzalloc

import "fmt"
import "unsafe"

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}

// nextpow2 rounds n up to the next power of two, minimum 1.
func nextpow2(n uint64) uint64 {
	x := uint64(1)
	for x < n {
		x <<= 1
	}
	return x
}

// nextblock reads the intrusive next pointer stored in the first machine
// word of a free block.
func nextblock(ptr unsafe.Pointer) unsafe.Pointer {
	return *(*unsafe.Pointer)(ptr)
}

// setnextblock writes the intrusive next pointer of a free block.
func setnextblock(ptr, next unsafe.Pointer) {
	*(*unsafe.Pointer)(ptr) = next
}

// memclr zeroes n bytes starting at ptr.
func memclr(ptr unsafe.Pointer, n int64) {
	buf := unsafe.Slice((*byte)(ptr), n)
	for i := range buf {
		buf[i] = 0
	}
}
