// Command read-shard launches a replica shard: it serves Read requests from
// its own copy of the data and catches up to its writer (or sibling
// readers) by polling QueryVersion/GetVersion.
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
	"github.com/dreamware/shardkv/internal/readshard"
	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/wire"
)

func main() {
	app := &cli.App{
		Name:  "read-shard",
		Usage: "run a shardkv read shard",
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

	log := logging.ForRole(logging.New(logging.Config{Level: cfg.LogLevel, Format: logging.Format(cfg.LogFormat)}), "read-shard")

	state := readshard.NewState()
	handler := readshard.NewHandler(state)
	r := router.Build(handler, cfg.BindAddr, "read-shard", log)

	bound, err := r.Bind()
	if err != nil {
		return fmt.Errorf("read-shard: bind %s: %w", cfg.BindAddr, err)
	}
	self := wire.EndpointFromAddrPort(bound)
	log.Info().Str("addr", self.String()).Msg("read shard listening")

	infoAP, err := netip.ParseAddrPort(cfg.InfoAddr)
	if err != nil {
		return fmt.Errorf("read-shard: parsing info address %q: %w", cfg.InfoAddr, err)
	}
	infoAddr := wire.EndpointFromAddrPort(infoAP)
	shardID := wire.U128(uuid.New())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rc := r.Client()
	announce := readshard.NewAnnounceLoop(rc, state, infoAddr, self, shardID, readshard.TickInterval, log)
	discover := readshard.NewDiscoverLoop(rc, state, infoAddr, readshard.TickInterval, log)
	catchUp := readshard.NewCatchUpLoop(rc, state, readshard.TickInterval, log)

	go announce.Start(ctx)
	go discover.Start(ctx)
	go catchUp.Start(ctx)
	defer announce.Stop()
	defer discover.Stop()
	defer catchUp.Stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	if err := r.Listen(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read-shard: listen: %w", err)
	}
	log.Info().Msg("read shard stopped")
	return nil
}
