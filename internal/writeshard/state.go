package writeshard

import (
	"sync"

	"github.com/dreamware/shardkv/internal/kvlog"
	"github.com/dreamware/shardkv/internal/metrics"
	"github.com/dreamware/shardkv/internal/storage"
)

// errOK and errFailure are the wire-level u8 error codes this role emits:
// 0 on success, 1 on failure/not-found.
const (
	errOK      uint8 = 0
	errFailure uint8 = 1
)

// State is a write shard's data and replication log. Writes are
// serialized by a single mutex so "increment version, set data, append to
// log" happens atomically as one step, matching the Rust write shard's
// single Arc<Mutex<WriteShard>> guarding the whole struct.
type State struct {
	mu    sync.Mutex
	store storage.Store
	log   kvlog.Log

	writerSlotMu  sync.RWMutex
	writerSlot    uint16
	hasWriterSlot bool
}

// NewState builds an empty write shard state backed by an in-memory store.
func NewState() *State {
	return &State{store: storage.NewMemoryStore()}
}

// Write applies a key/value write: it updates the current value and
// appends the change to the log, returning the new version.
func (s *State) Write(key, value string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.store.Put(key, value)
	version := s.log.Append(key, value)
	metrics.WriteVersion.Set(float64(version))
	return version
}

// Version returns the shard's current version (== length of the log).
func (s *State) Version() uint64 {
	return s.log.Version()
}

// At returns the log entry for the given 1-based version.
func (s *State) At(version uint64) (kvlog.Entry, bool) {
	return s.log.At(version)
}

// SetWriterSlot records the slot index learned from the info server's
// AnnounceShard response. Per SPEC_FULL §4.D the value is stored but never
// otherwise consulted by the write shard itself.
func (s *State) SetWriterSlot(slot uint16) {
	s.writerSlotMu.Lock()
	defer s.writerSlotMu.Unlock()
	s.writerSlot = slot
	s.hasWriterSlot = true
}

// WriterSlot returns the recorded writer slot and whether one has been
// learned yet.
func (s *State) WriterSlot() (uint16, bool) {
	s.writerSlotMu.RLock()
	defer s.writerSlotMu.RUnlock()
	return s.writerSlot, s.hasWriterSlot
}
