package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	vaquita "github.com/nchoubey/vaquita-replicate"
	"github.com/nchoubey/vaquita-replicate/logger"
	"github.com/nchoubey/vaquita-replicate/metrics"
	"github.com/nchoubey/vaquita-replicate/replconfig"
	"github.com/nchoubey/vaquita-replicate/sink"
)

var (
	flagBinlogFile string
	flagPosition   uint32
)

var tailCmd = &cobra.Command{
	Use:     "tail",
	Short:   "Subscribe to the binlog stream and print decoded events",
	Example: "# vaquita-replicate tail --url mysql://repl:secret@db:3306/ --server-id 7",
	RunE:    runTail,
}

func init() {
	tailCmd.Flags().StringVar(&flagBinlogFile, "binlog-file", "", "Binlog file to start from (empty: the dump request names no file)")
	tailCmd.Flags().Uint32Var(&flagPosition, "binlog-position", 4, "Binlog position to start from")
}

func runTail(cmd *cobra.Command, args []string) error {
	loader := replconfig.NewLoader()
	if flagURL != "" {
		if err := loader.AddURL(flagURL); err != nil {
			return err
		}
	}
	if flagConfig != "" {
		if err := loader.AddFile(flagConfig); err != nil {
			return err
		}
	}

	overrides := map[string]interface{}{}
	replication := map[string]interface{}{}
	changed := cmd.Flags()
	if changed.Changed("url") {
		overrides["url"] = flagURL
	}
	if changed.Changed("log-level") {
		overrides["log_level"] = flagLogLevel
	}
	if changed.Changed("metrics-addr") {
		overrides["metrics_addr"] = flagMetricsAddr
	}
	if changed.Changed("server-id") {
		replication["server_id"] = flagServerId
	}
	if changed.Changed("binlog-file") {
		replication["file"] = flagBinlogFile
	}
	if changed.Changed("binlog-position") {
		replication["position"] = flagPosition
	}
	if len(replication) > 0 {
		overrides["replication"] = replication
	}
	if err := loader.AddOverrides(overrides); err != nil {
		return err
	}

	cfg, err := loader.Load()
	if err != nil {
		return err
	}
	if cfg.URL == "" {
		return fmt.Errorf("no connection url given (--url or config file)")
	}

	applyLogLevel(cfg.LogLevel)

	dsn, err := dialURL(cfg)
	if err != nil {
		return err
	}

	binlog := new(vaquita.Binlog)
	if err := binlog.Connect(dsn); err != nil {
		return err
	}
	if cfg.Replication.File != "" {
		binlog.SetFile(cfg.Replication.File)
	}
	binlog.SetPosition(cfg.Replication.Position)
	if err := binlog.Begin(); err != nil {
		binlog.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := sink.NewJSONSink(os.Stdout)

	// each run gets its own id so log lines from concurrent tail sessions
	// (or successive runs against a log-aggregation backend) don't interleave.
	sessionID := uuid.New().String()
	log := logger.Std().With("session", sessionID)
	log.Infof("starting binlog stream")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return stream(gctx, binlog, out, log, cfg.Replication.File)
	})
	g.Go(func() error {
		return metrics.Serve(gctx, cfg.MetricsAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		// unblocks a Next() parked on a socket read so the stream
		// goroutine can observe cancellation and return.
		return binlog.Close()
	})

	return g.Wait()
}

// stream decodes events off binlog and delivers them to out until ctx is
// canceled or the binlog reader returns an error. file is the binlog file
// the stream currently starts in; it's updated as ROTATE_EVENTs are seen so
// the position gauge stays labeled with the file the position belongs to.
func stream(ctx context.Context, binlog *vaquita.Binlog, out sink.EventSink, log logger.Logger, file string) error {
	for binlog.Next() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		re := binlog.RawEvent()
		ev := re.Event()
		if ev == nil {
			continue
		}

		metrics.EventsDecoded.WithLabelValues(re.Name()).Inc()
		if rot, ok := ev.(*vaquita.RotateEvent); ok {
			file = rot.NextFile()
		}
		metrics.BinlogPosition.WithLabelValues(file).Set(float64(re.Position()))
		if tme, ok := ev.(*vaquita.TableMapEvent); ok {
			log.Debugf("table map: %s.%s (id=%d)", tme.Schema(), tme.Table(), tme.TableId())
		}

		if err := out.Accept(ctx, sink.FromEvent(&re, ev)); err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		// the shutdown goroutine's Close ends Next with a read error; after
		// cancellation that is a clean stop, not a failure.
		return nil
	}
	if err := binlog.Err(); err != nil {
		var upstream *vaquita.Error
		if errors.As(err, &upstream) && upstream.Code() != vaquita.ErrWarning && upstream.Code() < vaquita.ErrUnknown {
			metrics.UpstreamErrors.Inc()
		}
		return err
	}
	return nil
}

// dialURL builds the connection DSN consumed by vaquita.Binlog.Connect,
// carrying the replication identity as query parameters the way url.go
// expects them.
func dialURL(cfg replconfig.Config) (string, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}

	q := u.Query()
	if cfg.Replication.ServerId != 0 {
		q.Set("BinlogSlaveId", strconv.FormatUint(uint64(cfg.Replication.ServerId), 10))
	}
	if cfg.Replication.Host != "" {
		q.Set("BinlogSlaveHost", cfg.Replication.Host)
	}
	if cfg.Replication.User != "" {
		q.Set("BinlogSlaveUser", cfg.Replication.User)
	}
	if cfg.Replication.Password != "" {
		q.Set("BinlogSlavePassword", cfg.Replication.Password)
	}
	if cfg.Replication.Port != 0 {
		q.Set("BinlogSlavePort", strconv.FormatUint(uint64(cfg.Replication.Port), 10))
	}
	if cfg.ReportWarnings {
		q.Set("ReportWarnings", "true")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
