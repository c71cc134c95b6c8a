package kzalloc

import s "github.com/bnclabs/gosettings"

// Defaultsettings for the allocator singleton.
//
// "shards" (int64, default: 0)
//		Number of page-heap shards, rounded up to a power of two.
//		Zero picks hardware_concurrency x 2, or x 4 on hosts with 32
//		cores and above.
//
// "shard.threshold.pages" (int64, default: 0)
//		Per-shard hot-page budget above which spans are decommitted.
//		Zero computes the budget from physical memory. The
//		KZALLOC_SHARD_THRESHOLD_PAGES environment variable, when set to
//		a positive integer, overrides both.
func Defaultsettings() s.Settings {
	return s.Settings{
		"shards":                int64(0),
		"shard.threshold.pages": int64(0),
	}
}
