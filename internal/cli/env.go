package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/config"
	"github.com/roach88/tapsdk/sys"
)

// configFlags maps flag names to config keys. A flag overrides the file
// only when it was set on the command line.
var configFlags = map[string]string{
	"library":       "library",
	"public-key":    "public_key",
	"client-id":     "client_id",
	"poll-interval": "poll_interval",
	"journal":       "journal",
	"metrics-addr":  "metrics_addr",
}

// env is what every SDK-facing command needs: validated config, a logger
// and an output formatter.
type env struct {
	opts   *RootOptions
	cfg    *config.Config
	logger *zap.Logger
	out    *OutputFormatter
}

func newEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	overrides := map[string]any{}
	for flag, key := range configFlags {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			overrides[key] = f.Value.String()
		}
	}
	cfg, err := config.Load(opts.Config, overrides)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	return &env{
		opts:   opts,
		cfg:    cfg,
		logger: newLogger(cmd.ErrOrStderr(), opts.Verbose),
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
	}, nil
}

// newLogger builds a console logger; debug level with --verbose.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// openSDK loads the native library named by the config.
func (e *env) openSDK(opts ...tapsdk.Option) (*tapsdk.SDK, error) {
	open := e.opts.OpenLibrary
	if open == nil {
		open = sys.Open
	}
	lib, err := open(e.cfg.Library)
	if err != nil {
		if errors.Is(err, sys.ErrUnsupportedPlatform) {
			err = tapsdk.ErrUnsupportedPlatform
		}
		return nil, WrapExitError(ExitCommandError, "failed to load "+e.cfg.Library, err)
	}
	opts = append([]tapsdk.Option{tapsdk.WithLogger(e.logger)}, opts...)
	return tapsdk.New(lib, opts...), nil
}

// initSDK opens and initializes the SDK with the configured public key.
// The caller closes the returned Handle.
func (e *env) initSDK(opts ...tapsdk.Option) (*tapsdk.SDK, *tapsdk.Handle, error) {
	if e.cfg.PublicKey == "" {
		return nil, nil, NewExitError(ExitCommandError, "public_key is required (set it in the config or pass --public-key)")
	}
	sdk, err := e.openSDK(opts...)
	if err != nil {
		return nil, nil, err
	}
	h, err := sdk.Init(e.cfg.PublicKey)
	if err != nil {
		return nil, nil, WrapExitError(ExitFailure, "init failed", err)
	}
	e.logger.Debug("sdk ready", zap.String("library", e.cfg.Library))
	return sdk, h, nil
}

// closeHandle closes h and logs instead of failing the command.
func (e *env) closeHandle(h *tapsdk.Handle) {
	if err := h.Close(); err != nil {
		e.logger.Error("shutdown failed", zap.Error(err))
	}
}

// signalContext is cancelled on SIGINT/SIGTERM or when the command's
// context ends.
func (e *env) signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			e.logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
