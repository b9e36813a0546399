package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/taskloop"
	"github.com/dreamware/shardkv/internal/wire"
)

// ErrViewNotReady is returned by ViewCache.Get when the client has not yet received
// a non-empty GetClientShardInfo response, or the cluster itself is not
// fully formed (some slot still lacks a writer or reader).
var ErrViewNotReady = errors.New("client: shard view not ready")

// RefreshInterval is the cadence at which the client re-polls the info
// server for its shard view, matching the protocol's uniform 3-second tick.
const RefreshInterval = 3 * time.Second

// ShardView is a snapshot of the cluster's writer/reader endpoints, one
// entry per write-shard slot, the same parallel-array shape as the wire
// response.
type ShardView struct {
	Writers []wire.Endpoint
	Readers []wire.Endpoint
}

// ViewCache holds the client's current ShardView, refreshed in the
// background by polling the info server. Handler feeds it the responses
// that arrive asynchronously on whatever connection the info server
// replies over.
type ViewCache struct {
	mu   sync.RWMutex
	view ShardView
	has  bool
}

// Get returns the current cached view, or ErrViewNotReady if no non-empty
// view has been received yet.
func (c *ViewCache) Get() (ShardView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.has {
		return ShardView{}, ErrViewNotReady
	}
	return c.view, nil
}

func (c *ViewCache) set(resp wire.GetClientShardInfoResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if resp.NumWriteShards == 0 {
		// Empty view: the cluster isn't fully formed yet. Leave any
		// previously cached view in place rather than blanking it out on a
		// transient gap.
		return
	}
	c.view = ShardView{Writers: resp.WriteShardInfo, Readers: resp.ReadShardInfo}
	c.has = true
}

// Handler feeds GetClientShardInfo responses into a ViewCache, and records
// the most recent Write/Read response so the REPL can poll for the result
// of the command it just issued — there is no request/response correlation
// id on the wire, so "the result of my command" means "the next response
// of that kind to arrive," matching SPEC_FULL §9's resolution (a).
// Every other callback falls through to UnimplementedHandler, since a
// client never receives requests, only responses to what it sent.
type Handler struct {
	router.UnimplementedHandler

	cache *ViewCache

	mu           sync.Mutex
	lastWrite    wire.WriteResponse
	lastWriteSeq uint64
	lastRead     wire.ReadResponse
	lastReadSeq  uint64
}

func NewHandler(cache *ViewCache) *Handler {
	return &Handler{cache: cache}
}

func (h *Handler) HandleGetClientShardInfoResponse(resp wire.GetClientShardInfoResponse, _ wire.Endpoint) error {
	h.cache.set(resp)
	return nil
}

func (h *Handler) HandleWriteResponse(resp wire.WriteResponse, _ wire.Endpoint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastWrite = resp
	h.lastWriteSeq++
	return nil
}

func (h *Handler) HandleReadResponse(resp wire.ReadResponse, _ wire.Endpoint) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRead = resp
	h.lastReadSeq++
	return nil
}

// LastWrite returns the most recent Write response and a sequence number
// that increments on every response received, so a caller can detect
// whether a new response has arrived since it last checked.
func (h *Handler) LastWrite() (wire.WriteResponse, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastWrite, h.lastWriteSeq
}

// LastRead returns the most recent Read response and its sequence number,
// the read-side counterpart to LastWrite.
func (h *Handler) LastRead() (wire.ReadResponse, uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastRead, h.lastReadSeq
}

// NewRefreshLoop builds a taskloop that repeatedly asks infoServer for the
// current shard view, ticking every interval (callers pass RefreshInterval
// in production; tests may pass a shorter interval).
func NewRefreshLoop(rc *router.RouterClient, infoServer wire.Endpoint, interval time.Duration, log zerolog.Logger) *taskloop.Loop {
	return taskloop.New(interval, func(ctx context.Context) {
		if err := rc.GetClientShardInfo(ctx, infoServer); err != nil {
			log.Warn().Err(err).Msg("failed to refresh shard view from info server")
		}
	})
}
