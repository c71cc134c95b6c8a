package kzalloc

import "unsafe"

// New allocates zeroed storage for one T outside the Go heap. T must not
// contain Go pointers: the garbage collector does not scan allocator
// memory and would collect anything referenced only from it.
func New[T any]() *T {
	var zero T
	size := int64(unsafe.Sizeof(zero))
	if size == 0 {
		size = 1
	}
	ptr := Malloc(size)
	memclr(ptr, size)
	return (*T)(ptr)
}

// Delete releases storage obtained from New.
func Delete[T any](obj *T) {
	if obj == nil {
		return
	}
	var zero T
	size := int64(unsafe.Sizeof(zero))
	if size == 0 {
		size = 1
	}
	FreeSized(unsafe.Pointer(obj), size)
}

// NewSlice allocates zeroed storage for n elements of T and returns it
// as a slice. Same no-Go-pointers rule as New; the product n * sizeof(T)
// is guarded against overflow.
func NewSlice[T any](n int64) []T {
	var zero T
	elemsize := int64(unsafe.Sizeof(zero))
	ptr := MallocN(n, elemsize)
	memclr(ptr, n*elemsize)
	return unsafe.Slice((*T)(ptr), n)
}

// DeleteSlice releases storage obtained from NewSlice.
func DeleteSlice[T any](sl []T) {
	if sl == nil {
		return
	}
	var zero T
	elemsize := int64(unsafe.Sizeof(zero))
	FreeSized(unsafe.Pointer(unsafe.SliceData(sl)), int64(cap(sl))*elemsize)
}
