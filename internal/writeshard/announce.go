package writeshard

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/taskloop"
	"github.com/dreamware/shardkv/internal/wire"
)

// AnnounceInterval is the cadence at which a write shard re-announces
// itself to the info server, matching the 3-second tick every background
// task in this protocol uses.
const AnnounceInterval = 3 * time.Second

// NewAnnounceLoop builds a taskloop that repeatedly tells infoServer this
// shard exists as a writer at selfAddr, ticking every interval (callers
// pass AnnounceInterval in production; tests may pass a shorter interval to
// exercise convergence without waiting out the real cadence).
func NewAnnounceLoop(client *router.RouterClient, infoServer, selfAddr wire.Endpoint, shardID wire.U128, interval time.Duration, log zerolog.Logger) *taskloop.Loop {
	return taskloop.New(interval, func(ctx context.Context) {
		req := wire.AnnounceShardRequest{
			Role:    wire.RoleWriter,
			ShardID: shardID,
			IP:      selfAddr.IP,
			Port:    selfAddr.Port,
		}
		if err := client.AnnounceShard(ctx, req, infoServer); err != nil {
			log.Warn().Err(err).Msg("failed to announce write shard to info server")
		}
	})
}
