package readshard

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/taskloop"
	"github.com/dreamware/shardkv/internal/wire"
)

// TickInterval is the cadence shared by all three background loops, the
// protocol's uniform 3-second tick.
const TickInterval = 3 * time.Second

// NewAnnounceLoop tells the info server this reader exists every interval.
// The learned writer_slot is recorded by Handler.HandleAnnounceShardResponse
// once the reply arrives on whatever connection the info server uses.
// Callers pass TickInterval in production; tests may pass a shorter
// interval to exercise convergence without waiting out the real cadence.
func NewAnnounceLoop(client *router.RouterClient, state *State, infoServer, selfAddr wire.Endpoint, shardID wire.U128, interval time.Duration, log zerolog.Logger) *taskloop.Loop {
	return taskloop.New(interval, func(ctx context.Context) {
		req := wire.AnnounceShardRequest{
			Role:    wire.RoleReader,
			ShardID: shardID,
			IP:      selfAddr.IP,
			Port:    selfAddr.Port,
		}
		if err := client.AnnounceShard(ctx, req, infoServer); err != nil {
			log.Warn().Err(err).Msg("failed to announce read shard to info server")
		}
	})
}

// NewDiscoverLoop asks the info server for the current peer set of this
// reader's writer slot, every interval. It is a no-op until the announce
// loop has recorded a writer slot.
func NewDiscoverLoop(client *router.RouterClient, state *State, infoServer wire.Endpoint, interval time.Duration, log zerolog.Logger) *taskloop.Loop {
	return taskloop.New(interval, func(ctx context.Context) {
		slot, ok := state.WriterSlot()
		if !ok {
			return
		}
		req := wire.GetSharedPeersRequest{WriterSlot: slot}
		if err := client.GetSharedPeers(ctx, req, infoServer); err != nil {
			log.Warn().Err(err).Msg("failed to fetch shared peers from info server")
		}
	})
}

// NewCatchUpLoop implements the strict in-order replication pull: pick a
// random known peer, ask its current version, and if this shard is behind,
// request the very next entry. Applying is handled entirely by
// Handler.HandleGetVersionResponse; this loop only issues requests.
func NewCatchUpLoop(client *router.RouterClient, state *State, interval time.Duration, log zerolog.Logger) *taskloop.Loop {
	return taskloop.New(interval, func(ctx context.Context) {
		peer, ok := state.RandomPeer()
		if !ok {
			return
		}

		if err := client.QueryVersion(ctx, peer); err != nil {
			log.Warn().Err(err).Str("peer", peer.String()).Msg("failed to query peer version")
			return
		}

		applied, requested := state.Versions()
		if requested <= applied {
			return
		}
		req := wire.GetVersionRequest{Version: applied + 1}
		if err := client.GetVersion(ctx, req, peer); err != nil {
			log.Warn().Err(err).Str("peer", peer.String()).Msg("failed to pull next version from peer")
		}
	})
}
