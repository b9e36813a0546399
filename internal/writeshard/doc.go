// Package writeshard implements the write-shard role: a single-writer
// key/value store that serves Write requests, accumulates every change in
// an append-only log, and answers QueryVersion/GetVersion so read shards
// can catch up.
//
// State holds the current data (internal/storage.Store) and the
// replication log (internal/kvlog.Log) that read shards pull from. An
// announce loop (internal/taskloop) tells the info server this shard
// exists every few seconds, the same cadence the original write shard used
// for its own announcements via the read shard's background tasks.
package writeshard
