package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/journal"
	"github.com/roach88/tapsdk/internal/metrics"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Initialize the SDK and stream events until interrupted",
		Long: `Initialize the SDK, poll for events and print each one as it arrives.

With a journal configured every event is also appended to the SQLite journal
under a new session id. With a metrics address configured, Prometheus metrics
are served on /metrics.

Example:
  tapsdk run --public-key pk --journal events.db
  tapsdk run --config tapsdk.yaml --metrics-addr 127.0.0.1:9464 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvents(rootOpts, cmd)
		},
	}

	cmd.Flags().String("journal", "", "append events to this SQLite journal")
	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().String("poll-interval", "", "event poll interval (default from config)")

	return cmd
}

func runEvents(rootOpts *RootOptions, cmd *cobra.Command) error {
	e, err := newEnv(rootOpts, cmd)
	if err != nil {
		return err
	}

	ctx, cancel := e.signalContext(cmd)
	defer cancel()

	var sdkOpts []tapsdk.Option
	if e.cfg.MetricsAddr != "" {
		collector := metrics.NewCollector("")
		stopMetrics, err := e.serveMetrics(collector)
		if err != nil {
			return err
		}
		defer stopMetrics()
		sdkOpts = append(sdkOpts, tapsdk.WithObserver(collector))
	}

	rec, err := e.openRecorder()
	if err != nil {
		return err
	}
	defer rec.close()

	_, h, err := e.initSDK(sdkOpts...)
	if err != nil {
		return err
	}
	defer e.closeHandle(h)

	e.logger.Info("listening for events", zap.Duration("interval", e.cfg.Interval))
	err = h.Run(ctx, e.cfg.Interval, func(ev tapsdk.Event) {
		r := rec.record(ctx, ev)
		if err := e.out.Line(r); err != nil {
			e.logger.Error("write event", zap.Error(err))
		}
	})
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return WrapExitError(ExitFailure, "event loop", err)
	}
	e.logger.Info("stopped")
	return nil
}

// serveMetrics starts the metrics listener. The returned func shuts it
// down.
func (e *env) serveMetrics(c *metrics.Collector) (func(), error) {
	ln, err := net.Listen("tcp", e.cfg.MetricsAddr)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to listen on "+e.cfg.MetricsAddr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server", zap.Error(err))
		}
	}()
	e.logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// recorder appends events to the journal when one is configured.
type recorder struct {
	j      *journal.Journal
	logger *zap.Logger
}

func (e *env) openRecorder() (*recorder, error) {
	r := &recorder{logger: e.logger}
	if e.cfg.Journal == "" {
		return r, nil
	}
	j, err := journal.Open(e.cfg.Journal)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open journal", &codedError{code: ErrCodeJournal, err: err})
	}
	r.j = j
	e.logger.Info("journal open", zap.String("path", e.cfg.Journal), zap.String("session", j.Session()))
	return r, nil
}

// record journals ev and returns what to print. A journal failure is
// logged and the event is still printed.
func (r *recorder) record(ctx context.Context, ev tapsdk.Event) eventRecord {
	out := newEventRecord(ev)
	if r.j == nil {
		return out
	}
	entries, err := r.j.Append(ctx, ev)
	if err != nil {
		r.logger.Error("journal append failed", zap.Error(err))
		return out
	}
	out.Seq = entries[0].Seq
	return out
}

func (r *recorder) close() {
	if r.j == nil {
		return
	}
	if err := r.j.Close(); err != nil {
		r.logger.Error("error closing journal", zap.Error(err))
	}
}
