// Command write-shard launches a single-writer key/value shard: it serves
// Write requests and answers QueryVersion/GetVersion so read shards can
// replicate from it.
package main

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/dreamware/shardkv/internal/config"
	"github.com/dreamware/shardkv/internal/logging"
	"github.com/dreamware/shardkv/internal/metrics"
	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/wire"
	"github.com/dreamware/shardkv/internal/writeshard"
)

func main() {
	app := &cli.App{
		Name:  "write-shard",
		Usage: "run a shardkv write shard",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "", Usage: "override SHARDKV_SHARD_ADDR"},
			&cli.StringFlag{Name: "info-addr", Value: "", Usage: "override SHARDKV_INFO_ADDR"},
			&cli.StringFlag{Name: "log-level", Value: "", Usage: "override SHARDKV_LOG_LEVEL"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	var cfg config.Shard
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if v := c.String("addr"); v != "" {
		cfg.BindAddr = v
	}
	if v := c.String("info-addr"); v != "" {
		cfg.InfoAddr = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}

	log := logging.ForRole(logging.New(logging.Config{Level: cfg.LogLevel, Format: logging.Format(cfg.LogFormat)}), "write-shard")

	state := writeshard.NewState()
	handler := writeshard.NewHandler(state)
	r := router.Build(handler, cfg.BindAddr, "write-shard", log)

	bound, err := r.Bind()
	if err != nil {
		return fmt.Errorf("write-shard: bind %s: %w", cfg.BindAddr, err)
	}
	self := wire.EndpointFromAddrPort(bound)
	log.Info().Str("addr", self.String()).Msg("write shard listening")

	infoAP, err := netip.ParseAddrPort(cfg.InfoAddr)
	if err != nil {
		return fmt.Errorf("write-shard: parsing info address %q: %w", cfg.InfoAddr, err)
	}
	infoAddr := wire.EndpointFromAddrPort(infoAP)
	shardID := wire.U128(uuid.New())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := r.Client()
	announce := writeshard.NewAnnounceLoop(rc, infoAddr, self, shardID, writeshard.AnnounceInterval, log)
	go announce.Start(ctx)
	defer announce.Stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	if err := r.Listen(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("write-shard: listen: %w", err)
	}
	log.Info().Msg("write shard stopped")
	return nil
}
