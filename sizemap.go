package kzalloc

import "sync"

// Twin lookup tables, filled once by initsizemap. sizetoclass answers
// request-byte -> class index, classtosize answers class index -> rounded
// block size. Both lookups are O(1) on the hot path.
var sizetoclass [MaxSmallBytes + 1]uint16
var classtosize [MaxClasses]int64

var sizemaponce sync.Once

// nextclasssize returns the block size of the class following one of
// `size` bytes, per the alignment ladder.
func nextclasssize(size int64) int64 {
	switch {
	case size < 128:
		return size + 8
	case size < 1024:
		return size + 16
	case size < 8*1024:
		return size + 128
	case size < 64*1024:
		return size + 512
	default:
		return size + 8*1024
	}
}

// initsizemap builds both tables by walking classes up from the smallest
// block. Idempotent, done exactly once.
func initsizemap() {
	sizemaponce.Do(func() {
		index, blocksize := 0, int64(8)
		for i := int64(1); i <= MaxSmallBytes; i++ {
			if i > blocksize {
				index++
				blocksize = nextclasssize(blocksize)
			}
			sizetoclass[i] = uint16(index)
			if index < MaxClasses {
				classtosize[index] = blocksize
			}
		}
		sizetoclass[0] = 0
	})
}

// classindex maps a request size to its class, valid for raw and rounded
// sizes alike: classindex(raw) == classindex(roundup(raw)).
func classindex(size int64) int {
	if size < 0 || size > MaxSmallBytes {
		panicerr("classindex: size %v out of range", size)
	}
	return int(sizetoclass[size])
}

// roundup returns the allocation size actually served for a request:
// the class block size up to MaxSmallBytes, whole pages above.
func roundup(size int64) int64 {
	if size > MaxSmallBytes {
		return (size + pageSize - 1) &^ (pageSize - 1)
	}
	return classtosize[classindex(size)]
}

// batchmax is the upper bound on blocks of a class moved between a thread
// cache and the central cache in one transfer.
func batchmax(class int) int64 {
	num := MaxSmallBytes / classtosize[class]
	if num < 2 {
		num = 2
	}
	if num > 32768 {
		num = 32768
	}
	return num
}

// spanblocks is the number of blocks carved into a fresh span of a class,
// spanpages the span's page budget.
func spanblocks(size int64) int64 {
	num := MaxSmallBytes / size
	if num < 1 {
		num = 1
	}
	if num > 512 {
		num = 512
	}
	return num
}

func spanpages(size int64) int64 {
	kpages := (spanblocks(size) * size) >> pageShift
	if kpages == 0 {
		kpages = 1
	}
	return kpages
}
