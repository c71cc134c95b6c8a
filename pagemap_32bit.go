//go:build 386 || arm || mips || mipsle

package kzalloc

// Two-level radix tree on 32-bit targets: 32-bit addresses minus the
// 13-bit page offset leave 19 bits of page id, split root(5) -> leaf(14).
const radixLevels = 2
const bitsRoot = 5
const bitsInterior = 0
const bitsLeaf = 14
