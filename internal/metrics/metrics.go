// Package metrics exposes a Prometheus /metrics endpoint and the counters
// each node role feeds, following the promhttp.Handler + package-level
// prometheus.*Vec pattern of adred-codev-ws_poc's ws/metrics.go. It also
// tunes GOMAXPROCS for the container's actual CPU quota, the same
// automaxprocs import adred-codev-ws_poc's main.go relies on.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	_ "go.uber.org/automaxprocs"

	"github.com/dreamware/shardkv/internal/taskloop"
)

// systemSampleInterval is the cadence at which the host CPU/memory gauges
// are refreshed, independent of the protocol's 3-second node tick.
const systemSampleInterval = 10 * time.Second

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shardkv_requests_total",
		Help: "Total requests handled, by message type and role.",
	}, []string{"role", "message_type"})

	WriteVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shardkv_write_shard_version",
		Help: "Current version of a write shard's replication log.",
	})

	ReadAppliedVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shardkv_read_shard_applied_version",
		Help: "Version currently applied by a read shard.",
	})

	ReadReplicationLag = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shardkv_read_shard_replication_lag",
		Help: "requested_version - applied_version for a read shard.",
	})

	AdmissionRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shardkv_admission_rejected_total",
		Help: "Accept-side connections rejected or delayed by the admission limiter's context cancellation.",
	})

	SystemCPUPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shardkv_system_cpu_percent",
		Help: "Host CPU utilisation percentage, sampled via gopsutil.",
	})

	SystemMemoryUsedPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shardkv_system_memory_used_percent",
		Help: "Host memory utilisation percentage, sampled via gopsutil.",
	})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		WriteVersion,
		ReadAppliedVersion,
		ReadReplicationLag,
		AdmissionRejected,
		SystemCPUPercent,
		SystemMemoryUsedPercent,
	)
}

// SampleSystem refreshes the host CPU/memory gauges. Errors from gopsutil
// (common in restricted containers) are swallowed: a metrics sample that
// can't be taken this tick is not worth failing the process over.
func SampleSystem(ctx context.Context) {
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		SystemCPUPercent.Set(percents[0])
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		SystemMemoryUsedPercent.Set(vm.UsedPercent)
	}
}

// Serve starts the Prometheus HTTP endpoint on addr and the host
// CPU/memory sampler, and blocks until ctx is cancelled or the listener
// fails. Callers run it in its own goroutine.
func Serve(ctx context.Context, addr string) error {
	sampler := taskloop.New(systemSampleInterval, SampleSystem)
	go sampler.Start(ctx)
	defer sampler.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
