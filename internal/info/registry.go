package info

import (
	"math/rand"
	"sync"

	"github.com/dreamware/shardkv/internal/wire"
)

// readerEntry is one reader announce record: its shard_id (for reannounce
// matching) and its current endpoint.
type readerEntry struct {
	shardID wire.U128
	ep      wire.Endpoint
}

// slot is one write shard's reader/writer block: the writer endpoint (once
// announced) and every reader endpoint currently attached to it.
type slot struct {
	writer    wire.Endpoint
	writerID  wire.U128
	hasWriter bool
	readers   []readerEntry
}

// Registry is the info server's directory of write-shard slots. It holds
// exactly numWriteShards slots, fixed at construction, matching the Rust
// InfoRouter::new(num_writers) shape.
type Registry struct {
	mu    sync.Mutex
	slots []slot
}

// NewRegistry builds a registry with the given number of write-shard slots,
// all initially empty.
func NewRegistry(numWriteShards int) *Registry {
	return &Registry{slots: make([]slot, numWriteShards)}
}

// findByShardID searches every slot for a previously announced record
// (writer or reader) matching shardID, per SPEC_FULL §4.C's "search all
// slots for a record with matching shard_id" reannounce rule. If found, it
// updates that record's endpoint in place and returns its slot index.
func (r *Registry) findByShardID(shardID wire.U128, ep wire.Endpoint) (uint16, bool) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.hasWriter && s.writerID == shardID {
			s.writer = ep
			return uint16(i), true
		}
		for j := range s.readers {
			if s.readers[j].shardID == shardID {
				s.readers[j].ep = ep
				return uint16(i), true
			}
		}
	}
	return 0, false
}

// AnnounceWriter handles a Writer AnnounceShard: a reannounce (matching
// shardID) updates the existing record in place and keeps its slot; a first
// announce places ep into the lowest-index empty slot. It returns
// wire.WriterSlotNone if shardID is new and every slot already has a writer.
func (r *Registry) AnnounceWriter(shardID wire.U128, ep wire.Endpoint) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slotIdx, ok := r.findByShardID(shardID, ep); ok {
		return slotIdx
	}

	for i := range r.slots {
		if !r.slots[i].hasWriter {
			r.slots[i].writer = ep
			r.slots[i].writerID = shardID
			r.slots[i].hasWriter = true
			return uint16(i)
		}
	}
	return wire.WriterSlotNone
}

// AnnounceReader handles a Reader AnnounceShard: a reannounce (matching
// shardID) updates the existing record in place without rebalancing; a
// first announce attaches ep to the slot with the fewest readers, ties
// breaking toward the lowest index. It returns wire.WriterSlotNone if the
// registry has no slots at all.
func (r *Registry) AnnounceReader(shardID wire.U128, ep wire.Endpoint) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if slotIdx, ok := r.findByShardID(shardID, ep); ok {
		return slotIdx
	}

	if len(r.slots) == 0 {
		return wire.WriterSlotNone
	}

	best := 0
	for i := 1; i < len(r.slots); i++ {
		if len(r.slots[i].readers) < len(r.slots[best].readers) {
			best = i
		}
	}
	r.slots[best].readers = append(r.slots[best].readers, readerEntry{shardID: shardID, ep: ep})
	return uint16(best)
}

// ClientView is the (writer, one reader per slot) pair set returned to
// clients, parallel by index the way wire.GetClientShardInfoResponse wants
// it. Complete is false if any slot is missing a writer or has no readers
// at all, in which case Writers/Readers are empty.
type ClientView struct {
	Writers  []wire.Endpoint
	Readers  []wire.Endpoint
	Complete bool
}

// ClientView returns the current shard view, picking one reader at random
// per slot the way the Rust info server does (rand::thread_rng().choose).
func (r *Registry) ClientView() ClientView {
	r.mu.Lock()
	defer r.mu.Unlock()

	writers := make([]wire.Endpoint, 0, len(r.slots))
	readers := make([]wire.Endpoint, 0, len(r.slots))

	for i := range r.slots {
		s := &r.slots[i]
		if !s.hasWriter || len(s.readers) == 0 {
			return ClientView{}
		}
		writers = append(writers, s.writer)
		readers = append(readers, s.readers[rand.Intn(len(s.readers))].ep)
	}
	return ClientView{Writers: writers, Readers: readers, Complete: true}
}

// Peers returns the slot's writer (if one has announced) followed by every
// reader attached to the given slot, in insertion order. ok is false if the
// slot index is out of range or the slot holds neither a writer nor a
// reader.
func (r *Registry) Peers(writerSlot uint16) (peers []wire.Endpoint, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if int(writerSlot) >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[writerSlot]
	if !s.hasWriter && len(s.readers) == 0 {
		return nil, false
	}

	peers = make([]wire.Endpoint, 0, 1+len(s.readers))
	if s.hasWriter {
		peers = append(peers, s.writer)
	}
	for _, re := range s.readers {
		peers = append(peers, re.ep)
	}
	return peers, true
}
