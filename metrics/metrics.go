// Package metrics exposes the replication client's counters and gauges
// over a prometheus.Registry. Instrumentation call sites never branch on
// whether an HTTP exporter is attached: Serve is a no-op until an address
// is configured, so the same code path runs whether or not --metrics-addr
// was passed.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vaquita_replicate"

var (
	registry = prometheus.NewRegistry()

	BytesRead = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bytes_read_total",
		Help:      "Bytes read off the replication connection socket.",
	})

	EventsDecoded = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_decoded_total",
		Help:      "Binlog events decoded, labeled by event kind.",
	}, []string{"kind"})

	BinlogPosition = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "binlog_position",
		Help:      "Current binlog file position, labeled by file name.",
	}, []string{"file"})

	UpstreamErrors = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_errors_total",
		Help:      "ERR packets received from the upstream server.",
	})
)

// Serve starts the metrics HTTP endpoint on addr and blocks until ctx is
// done or the server fails. An empty addr disables the endpoint entirely.
func Serve(ctx context.Context, addr string) error {
	if addr == "" {
		<-ctx.Done()
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
