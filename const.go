package kzalloc

import "github.com/Exfdr/KzAlloc/osmem"

// pageShift and pageSize mirror the osmem page geometry, a page id is
// address >> pageShift.
const pageShift = osmem.PageShift
const pageSize = osmem.PageSize

// MaxSmallBytes is the largest request served through the size-class
// machinery. Anything bigger rounds up to whole pages.
const MaxSmallBytes = 256 * 1024

// MaxClasses bounds the size-class tables. The alignment ladder
// 8/16/128/512/8192 over (0,128] (128,1K] (1K,8K] (8K,64K] (64K,256K]
// yields 16+56+56+112+24 classes.
const MaxClasses = 264

// npages is one past the largest span page-count kept in array-indexed
// free lists; spans of npages-1 (128) pages and below live in arrays,
// larger spans live in ordered tables.
const npages = 129

// poolChunkSize is the OS chunk size backing metadata object pools.
const poolChunkSize = 128 * 1024

// spinYieldAfter failed acquisition attempts, a spinning locker yields to
// the scheduler.
const spinYieldAfter = 1024

// EnvShardThreshold overrides the computed per-shard release threshold
// (in pages) when set to a positive integer.
const EnvShardThreshold = "KZALLOC_SHARD_THRESHOLD_PAGES"
