// Command info launches the directory server that write and read shards
// announce themselves to and that clients query for the cluster's current
// shard view.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/dreamware/shardkv/internal/config"
	"github.com/dreamware/shardkv/internal/info"
	"github.com/dreamware/shardkv/internal/logging"
	"github.com/dreamware/shardkv/internal/metrics"
	"github.com/dreamware/shardkv/internal/router"
)

func main() {
	app := &cli.App{
		Name:  "info",
		Usage: "run the shardkv cluster directory server",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "write-shards", Value: 4, Usage: "number of write-shard slots"},
			&cli.StringFlag{Name: "addr", Value: "", Usage: "override SHARDKV_INFO_ADDR"},
			&cli.StringFlag{Name: "log-level", Value: "", Usage: "override SHARDKV_LOG_LEVEL"},
			&cli.StringFlag{Name: "metrics-addr", Value: "", Usage: "override SHARDKV_METRICS_ADDR"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	var cfg config.Info
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if v := c.String("addr"); v != "" {
		cfg.BindAddr = v
	}
	if v := c.Int("write-shards"); v != 0 {
		cfg.WriteShards = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v := c.String("metrics-addr"); v != "" {
		cfg.MetricsAddr = v
	}

	log := logging.ForRole(logging.New(logging.Config{Level: cfg.LogLevel, Format: logging.Format(cfg.LogFormat)}), "info")

	handler := info.NewHandler(cfg.WriteShards, log)
	r := router.Build(handler, cfg.BindAddr, "info", log)

	bound, err := r.Bind()
	if err != nil {
		return fmt.Errorf("info: bind %s: %w", cfg.BindAddr, err)
	}
	log.Info().Str("addr", bound.String()).Int("write_shards", cfg.WriteShards).Msg("info server listening")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr); err != nil {
				log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	if err := r.Listen(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("info: listen: %w", err)
	}
	log.Info().Msg("info server stopped")
	return nil
}
