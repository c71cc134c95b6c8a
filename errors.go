package kzalloc

import "errors"

// ErrorOutofMemory is panicked by the allocation paths when the OS
// refuses to supply more memory and no cold span can satisfy the request.
var ErrorOutofMemory = errors.New("kzalloc.outofmemory")

// ErrorOverflow is panicked when an array-allocation request overflows
// n * elemsize.
var ErrorOverflow = errors.New("kzalloc.overflow")
