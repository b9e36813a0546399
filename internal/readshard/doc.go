// Package readshard implements the read-shard role: a replica that serves
// Read requests from its own copy of the data, and catches up to its
// writer by polling QueryVersion/GetVersion.
//
// State splits its fields behind independent mutexes rather than one big
// lock, mirroring the Rust ReadShard's separate Arc<Mutex<...>> fields for
// writer_id, writer_ip_port, peers, requested_version, current_version, and
// data/history: each background loop below only ever needs one or two of
// those fields at a time, so a single shared lock would serialize work that
// doesn't need to be serialized together.
//
// Three taskloop.Loop instances drive the role:
//   - announce: tell the info server this reader exists (role Reader).
//   - discover: ask the info server (via GetSharedPeers, keyed by the
//     writer slot learned from the announce response) for the current
//     peer set.
//   - catch-up: pick a random peer, QueryVersion it, and if behind, pull
//     the next version with GetVersion, applying it only if it is exactly
//     one past the shard's applied version (strict in-order apply).
package readshard
