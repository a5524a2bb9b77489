package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tapsdk"
)

// NewRestartCheckCommand creates the restart-check command.
func NewRestartCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "restart-check",
		Short: "Ask whether TapTap needs to relaunch the game",
		Long: `Call TapSDK_RestartAppIfNecessary with the configured client id.

When the result is true TapTap is relaunching the game through its client and
the caller should exit immediately. Run this before anything else.

Example:
  tapsdk restart-check --client-id abc123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			if e.cfg.ClientID == "" {
				return NewExitError(ExitCommandError, "client_id is required (set it in the config or pass --client-id)")
			}
			sdk, err := e.openSDK()
			if err != nil {
				return err
			}
			restart, err := sdk.RestartAppIfNecessary(e.cfg.ClientID)
			if err != nil {
				return WrapExitError(ExitFailure, "restart check failed", err)
			}
			return e.out.Success(restartResult{Restart: restart})
		},
	}
}

type restartResult struct {
	Restart bool `json:"restart"`
}

func (r restartResult) renderText(w io.Writer) {
	if r.Restart {
		fmt.Fprintln(w, "restart required: TapTap is relaunching the game")
		return
	}
	fmt.Fprintln(w, "no restart required")
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Initialize the SDK and report identity and ownership",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			sdk, h, err := e.initSDK()
			if err != nil {
				return err
			}
			defer e.closeHandle(h)

			r := statusResult{
				Initialized: sdk.IsInitialized(),
				GameOwned:   sdk.IsGameOwned(),
			}
			if id, ok := h.ClientID(); ok {
				r.ClientID = &id
			}
			if id, ok := sdk.OpenID(); ok {
				r.OpenID = &id
			}
			return e.out.Success(r)
		},
	}
}

type statusResult struct {
	Initialized bool    `json:"initialized"`
	ClientID    *string `json:"client_id"`
	OpenID      *string `json:"open_id"`
	GameOwned   bool    `json:"game_owned"`
}

func (r statusResult) renderText(w io.Writer) {
	orNone := func(s *string) string {
		if s == nil {
			return "(none)"
		}
		return *s
	}
	fmt.Fprintf(w, "initialized: %t\n", r.Initialized)
	fmt.Fprintf(w, "client id:   %s\n", orNone(r.ClientID))
	fmt.Fprintf(w, "open id:     %s\n", orNone(r.OpenID))
	fmt.Fprintf(w, "game owned:  %t\n", r.GameOwned)
}

// AuthorizeOptions holds flags for the authorize command.
type AuthorizeOptions struct {
	*RootOptions
	Scopes  string
	Timeout time.Duration
}

// NewAuthorizeCommand creates the authorize command.
func NewAuthorizeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AuthorizeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "authorize",
		Short: "Run the TapTap authorization flow and print the result",
		Long: `Start authorization and wait for the AuthorizeFinished event.

Scopes default to the config's scopes list. The command fails when the user
cancels or the flow reports an error.

Example:
  tapsdk authorize --scopes public_profile --timeout 2m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthorize(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scopes, "scopes", "", "comma-separated scopes (default from config)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "how long to wait for the user")
	cmd.Flags().String("poll-interval", "", "event poll interval (default from config)")

	return cmd
}

func runAuthorize(opts *AuthorizeOptions, cmd *cobra.Command) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	scopes := opts.Scopes
	if scopes == "" {
		scopes = e.cfg.ScopeList()
	}

	sdk, h, err := e.initSDK()
	if err != nil {
		return err
	}
	defer e.closeHandle(h)

	if err := sdk.Authorize(scopes); err != nil {
		return WrapExitError(ExitFailure, "authorize failed", err)
	}

	ctx, cancel := e.signalContext(cmd)
	defer cancel()
	ctx, stop := context.WithTimeout(ctx, opts.Timeout)
	defer stop()

	ev, err := waitFor(ctx, h, e.cfg.Interval, func(ev tapsdk.Event) bool {
		_, ok := ev.(tapsdk.AuthorizeFinished)
		return ok
	}, nil)
	if err != nil {
		return WrapExitError(ExitFailure, "authorize", err)
	}
	if err := e.out.Success(newEventRecord(ev)); err != nil {
		return err
	}

	done := ev.(tapsdk.AuthorizeFinished)
	switch {
	case done.IsCancel:
		return NewExitError(ExitFailure, "authorization cancelled")
	case done.Error != nil:
		return NewExitError(ExitFailure, "authorization failed: "+*done.Error)
	}
	return nil
}

// NewDLCCommand creates the dlc command group.
func NewDLCCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dlc",
		Short: "Query DLC ownership or open a DLC store page",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "owned <dlc-id>",
		Short: "Report whether the user owns a DLC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			sdk, h, err := e.initSDK()
			if err != nil {
				return err
			}
			defer e.closeHandle(h)
			owned := sdk.IsDLCOwned(args[0])
			return e.out.Success(dlcResult{DLCID: args[0], Owned: &owned})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "store <dlc-id>",
		Short: "Open the DLC's store page in the TapTap client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv(rootOpts, cmd)
			if err != nil {
				return err
			}
			sdk, h, err := e.initSDK()
			if err != nil {
				return err
			}
			defer e.closeHandle(h)

			shown, err := sdk.ShowDLCStore(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "show store failed", err)
			}
			return e.out.Success(dlcResult{DLCID: args[0], Shown: &shown})
		},
	})

	return cmd
}

type dlcResult struct {
	DLCID string `json:"dlc_id"`
	Owned *bool  `json:"owned,omitempty"`
	Shown *bool  `json:"shown,omitempty"`
}

func (r dlcResult) renderText(w io.Writer) {
	if r.Shown != nil {
		fmt.Fprintf(w, "%s: store page shown: %t\n", r.DLCID, *r.Shown)
		return
	}
	fmt.Fprintf(w, "%s: owned: %t\n", r.DLCID, r.Owned != nil && *r.Owned)
}
