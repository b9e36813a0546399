package client

import "github.com/cespare/xxhash/v2"

// ShardIndex computes shard_index = H(key) mod numWriteShards, the
// deterministic routing rule both `set` and `get` use so that repeated
// operations on the same key always land on the same slot within one
// client process. numWriteShards must be positive.
func ShardIndex(key string, numWriteShards int) int {
	h := xxhash.Sum64String(key)
	return int(h % uint64(numWriteShards))
}
