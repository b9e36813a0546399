// Package info implements the info server role: the directory that write
// and read shards announce themselves to, and that clients query to learn
// which shards exist and where they live.
//
// The registry holds one slot per write shard. A slot starts empty; the
// first AnnounceShard request of role Writer fills its writer half, and
// every AnnounceShard request of role Reader attaches to whichever slot
// currently has the fewest readers (ties broken toward the lowest index).
// GetClientShardInfo only returns a populated view once every slot has both
// a writer and at least one reader; until then it reports zero shards so a
// client never routes to an incomplete shard.
//
// This mirrors the reader/writer block structure of the Rust info server in
// original_source/src/info.rs, adapted to this module's Registry/Handler
// split: Registry holds the slot state and pure assignment logic, Handler
// adapts it to the router.Handler interface.
package info
