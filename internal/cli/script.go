package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/tapsdk/jsbind"
)

// NewScriptCommand creates the script command.
func NewScriptCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "script <file.js>",
		Short: "Run a JavaScript file against the SDK",
		Long: `Evaluate a script with the TapSdk, CloudSave, EventId and SystemState
globals installed. The command returns once every TapSdk instance the script
created has been shut down, or on interrupt.

Example:
  const sdk = new TapSdk("pk", (err, ev) => {
    if (ev.event_id === EventId.AUTHORIZE_FINISHED) sdk.shutdown();
  });
  sdk.authorize("public_profile");

  tapsdk script authorize.js`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(rootOpts, cmd, args[0])
		},
	}
	cmd.Flags().String("poll-interval", "", "event poll interval (default from config)")
	return cmd
}

func runScript(rootOpts *RootOptions, cmd *cobra.Command, path string) error {
	e, err := newEnv(rootOpts, cmd)
	if err != nil {
		return err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}

	sdk, err := e.openSDK()
	if err != nil {
		return err
	}
	host, err := jsbind.NewHost(sdk,
		jsbind.WithLogger(e.logger),
		jsbind.WithOutput(cmd.OutOrStdout()),
		jsbind.WithPollInterval(e.cfg.Interval),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start script runtime", err)
	}

	ctx, cancel := e.signalContext(cmd)
	defer cancel()

	e.logger.Debug("running script", zap.String("path", path))
	if err := host.RunScript(ctx, path, string(src)); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return WrapExitError(ExitFailure, "script failed", err)
	}
	return nil
}
