//go:build amd64 || arm64 || ppc64 || ppc64le || riscv64 || s390x || loong64 || mips64 || mips64le

package kzalloc

// Three-level radix tree on 64-bit targets: 48-bit virtual addresses
// minus the 13-bit page offset leave 35 bits of page id, split
// root(12) -> interior(12) -> leaf(11).
const radixLevels = 3
const bitsRoot = 12
const bitsInterior = 12
const bitsLeaf = 11
