// Command client is an interactive REPL for talking to a shardkv cluster:
// `set <key> <value>` and `get <key>` route to the correct shard by
// hashing the key, and `exit` quits. This driver is deliberately thin — the
// routing and caching logic it calls into (internal/client) is what is
// actually tested.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/netip"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	shardkvclient "github.com/dreamware/shardkv/internal/client"
	"github.com/dreamware/shardkv/internal/config"
	"github.com/dreamware/shardkv/internal/logging"
	"github.com/dreamware/shardkv/internal/router"
	"github.com/dreamware/shardkv/internal/wire"
)

// responsePollTimeout bounds how long the REPL waits for a reply after
// issuing a command, since the protocol has no request/response
// correlation id to block on directly.
const responsePollTimeout = 2 * time.Second

func main() {
	app := &cli.App{
		Name:  "client",
		Usage: "interactive shardkv client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "info-addr", Value: "", Usage: "override SHARDKV_INFO_ADDR"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	var cfg config.Client
	if err := config.Load(&cfg); err != nil {
		return err
	}
	if v := c.String("info-addr"); v != "" {
		cfg.InfoAddr = v
	}

	log := logging.ForRole(logging.New(logging.Config{Level: cfg.LogLevel, Format: logging.Format(cfg.LogFormat)}), "client")

	infoAP, err := netip.ParseAddrPort(cfg.InfoAddr)
	if err != nil {
		return fmt.Errorf("client: parsing info address %q: %w", cfg.InfoAddr, err)
	}
	infoAddr := wire.EndpointFromAddrPort(infoAP)

	cache := &shardkvclient.ViewCache{}
	handler := shardkvclient.NewHandler(cache)
	r := router.Build(handler, "[::1]:0", "client", log)
	if _, err := r.Bind(); err != nil {
		return fmt.Errorf("client: bind: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go r.Listen(ctx)

	rc := r.Client()
	refresh := shardkvclient.NewRefreshLoop(rc, infoAddr, shardkvclient.RefreshInterval, log)
	go refresh.Start(ctx)
	defer refresh.Stop()

	// Give the first view refresh a moment to land before prompting, the
	// same settling delay the original shards allow for before assuming
	// the cluster has converged.
	time.Sleep(200 * time.Millisecond)

	repl(ctx, rc, cache, handler)
	return nil
}

func repl(ctx context.Context, rc *router.RouterClient, cache *shardkvclient.ViewCache, handler *shardkvclient.Handler) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)

		switch {
		case len(fields) == 0:
			// blank line, just reprompt
		case fields[0] == "exit":
			return
		case fields[0] == "set" && len(fields) >= 3:
			key := fields[1]
			value := strings.Join(fields[2:], " ")
			doSet(ctx, rc, cache, handler, key, value)
		case fields[0] == "get" && len(fields) == 2:
			doGet(ctx, rc, cache, handler, fields[1])
		default:
			fmt.Println("commands: set <key> <value> | get <key> | exit")
		}

		fmt.Print("> ")
	}
}

func doSet(ctx context.Context, rc *router.RouterClient, cache *shardkvclient.ViewCache, handler *shardkvclient.Handler, key, value string) {
	view, err := cache.Get()
	if err != nil {
		fmt.Println("error: shard view not ready yet, try again shortly")
		return
	}
	idx := shardkvclient.ShardIndex(key, len(view.Writers))
	_, seq := handler.LastWrite()
	if err := rc.Write(ctx, wire.WriteRequest{Key: key, Value: value}, view.Writers[idx]); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if resp, ok := waitForWrite(handler, seq); ok {
		if resp.Error == 0 {
			fmt.Println("OK")
		} else {
			fmt.Println("error: write failed")
		}
		return
	}
	fmt.Println("error: no response from writer")
}

func doGet(ctx context.Context, rc *router.RouterClient, cache *shardkvclient.ViewCache, handler *shardkvclient.Handler, key string) {
	view, err := cache.Get()
	if err != nil {
		fmt.Println("error: shard view not ready yet, try again shortly")
		return
	}
	idx := shardkvclient.ShardIndex(key, len(view.Readers))
	_, seq := handler.LastRead()
	if err := rc.Read(ctx, wire.ReadRequest{Key: key}, view.Readers[idx]); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	if resp, ok := waitForRead(handler, seq); ok {
		if resp.Error == 0 {
			fmt.Println(resp.Value)
		} else {
			fmt.Println("(not found)")
		}
		return
	}
	fmt.Println("error: no response from reader")
}

func waitForWrite(handler *shardkvclient.Handler, afterSeq uint64) (wire.WriteResponse, bool) {
	deadline := time.Now().Add(responsePollTimeout)
	for time.Now().Before(deadline) {
		resp, seq := handler.LastWrite()
		if seq > afterSeq {
			return resp, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return wire.WriteResponse{}, false
}

func waitForRead(handler *shardkvclient.Handler, afterSeq uint64) (wire.ReadResponse, bool) {
	deadline := time.Now().Add(responsePollTimeout)
	for time.Now().Before(deadline) {
		resp, seq := handler.LastRead()
		if seq > afterSeq {
			return resp, true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return wire.ReadResponse{}, false
}
