package readshard

import (
	"math/rand"
	"sync"

	"github.com/dreamware/shardkv/internal/kvlog"
	"github.com/dreamware/shardkv/internal/metrics"
	"github.com/dreamware/shardkv/internal/storage"
	"github.com/dreamware/shardkv/internal/wire"
)

// State is a read shard's replica data plus the bookkeeping its three
// background loops need. Each field group is guarded by its own mutex so
// the announce, discovery, and catch-up loops never block each other on
// unrelated state.
type State struct {
	writerSlotMu  sync.RWMutex
	writerSlot    uint16
	hasWriterSlot bool

	peersMu sync.RWMutex
	peers   []wire.Endpoint

	versionMu        sync.RWMutex
	appliedVersion   uint64
	requestedVersion uint64

	store storage.Store
	log   kvlog.Log
}

// NewState builds an empty read shard replica.
func NewState() *State {
	return &State{store: storage.NewMemoryStore()}
}

// SetWriterSlot records the slot index this reader attached to, learned
// from the AnnounceShard response.
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

// SetPeers replaces the known peer set (writer followed by fellow readers),
// learned from a GetSharedPeers response.
func (s *State) SetPeers(peers []wire.Endpoint) {
	s.peersMu.Lock()
	defer s.peersMu.Unlock()
	s.peers = append([]wire.Endpoint(nil), peers...)
}

// RandomPeer returns a uniformly random peer from the known set, or false
// if no peers are known yet.
func (s *State) RandomPeer() (wire.Endpoint, bool) {
	s.peersMu.RLock()
	defer s.peersMu.RUnlock()
	if len(s.peers) == 0 {
		return wire.Endpoint{}, false
	}
	return s.peers[rand.Intn(len(s.peers))], true
}

// SetRequestedVersion records the writer's reported version, learned from a
// QueryVersion response.
func (s *State) SetRequestedVersion(v uint64) {
	s.versionMu.Lock()
	defer s.versionMu.Unlock()
	s.requestedVersion = v
	s.reportLagLocked()
}

// reportLagLocked publishes the applied-version and replication-lag gauges.
// Callers must already hold versionMu.
func (s *State) reportLagLocked() {
	metrics.ReadAppliedVersion.Set(float64(s.appliedVersion))
	lag := int64(s.requestedVersion) - int64(s.appliedVersion)
	if lag < 0 {
		lag = 0
	}
	metrics.ReadReplicationLag.Set(float64(lag))
}

// AppliedVersion returns the shard's currently applied version.
func (s *State) AppliedVersion() uint64 {
	s.versionMu.RLock()
	defer s.versionMu.RUnlock()
	return s.appliedVersion
}

// Versions returns both the applied and requested versions atomically,
// used by the catch-up loop to decide whether to pull the next entry.
func (s *State) Versions() (applied, requested uint64) {
	s.versionMu.RLock()
	defer s.versionMu.RUnlock()
	return s.appliedVersion, s.requestedVersion
}

// ApplyNext applies (key, value) as the next log entry if version is
// exactly one past the currently applied version. Any other version is
// silently ignored, the protocol's strict in-order apply rule: a mismatch
// is dropped and retried on the next catch-up tick rather than causing a
// gap.
func (s *State) ApplyNext(version uint64, key, value string) {
	s.versionMu.Lock()
	defer s.versionMu.Unlock()

	if version != s.appliedVersion+1 {
		return
	}
	_ = s.store.Put(key, value)
	s.log.Append(key, value)
	s.appliedVersion = version
	if s.requestedVersion < version {
		s.requestedVersion = version
	}
	s.reportLagLocked()
}

// Read looks up key in the replica's current data.
func (s *State) Read(key string) (string, bool) {
	v, err := s.store.Get(key)
	if err != nil {
		return "", false
	}
	return v, true
}

// LogVersion returns the read shard's own log length, equal to
// AppliedVersion by construction.
func (s *State) LogVersion() uint64 {
	return s.log.Version()
}

// LogAt returns the log entry for the given 1-based version, used to answer
// GetVersion requests from peer readers (a read shard can itself act as a
// catch-up source the same way a writer does).
func (s *State) LogAt(version uint64) (kvlog.Entry, bool) {
	return s.log.At(version)
}
