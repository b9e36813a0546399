// Package taskloop provides the one Start/Stop shape reused by every
// periodic background task in this module: the write shard's announce loop,
// and the read shard's announce, peer-discovery, and catch-up loops. It is a
// direct generalization of the teacher's node health monitor — a
// time.Ticker driven by a context.Context, with a sync.WaitGroup so Stop
// blocks until the goroutine has actually exited, letting tests terminate
// background work deterministically (SPEC_FULL §9, "Background loops").
package taskloop
