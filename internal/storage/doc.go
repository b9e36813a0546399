// Package storage wraps the plain key/value map used by both shard roles
// behind a small interface, so write shards and read shards share one
// implementation and one set of tests instead of each rolling their own map
// plus mutex.
//
//	Application layer (writeshard.State / readshard.State)
//	        │
//	        ▼
//	     Store interface  (Get / Put / List / Stats)
//	        │
//	        ▼
//	     MemoryStore      (map[string]string + sync.RWMutex)
//
// Deletion and persistence are explicit non-goals of the protocol this
// module implements, so Store has no Delete method, and MemoryStore keeps
// everything in heap memory for the life of the process.
package storage
