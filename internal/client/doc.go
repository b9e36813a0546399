// Package client implements the routing half of the interactive client: a
// periodically refreshed view of the cluster's write/read shard endpoints,
// and a deterministic hash that picks which shard owns a given key.
//
// cmd/client wires this package to a small REPL; keeping the REPL itself
// out of this package matches the spec's explicit note that the
// interactive command-line driver is named but not designed — routing and
// caching are the part worth testing, the prompt loop is not.
package client
