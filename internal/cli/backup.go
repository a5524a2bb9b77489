package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/backup"
	"github.com/roach88/tapsdk/internal/seq"
)

// NewBackupCommand creates the backup command.
func NewBackupCommand(rootOpts *RootOptions) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Upload a save file to cloud save on a schedule",
		Long: `Upload the config's backup.data_file on the backup.schedule cron
expression. The first upload creates a save unless backup.uuid is set; later
uploads update it in place.

Example config:
  public_key: pk
  backup:
    schedule: "@every 30m"
    name: autosave
    summary: periodic backup
    data_file: C:/Games/MyGame/save.dat

  tapsdk backup --config tapsdk.yaml --now`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackup(rootOpts, cmd, now)
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "upload once immediately before following the schedule")
	cmd.Flags().String("journal", "", "append events to this SQLite journal")
	cmd.Flags().String("poll-interval", "", "event poll interval (default from config)")

	return cmd
}

func runBackup(rootOpts *RootOptions, cmd *cobra.Command, now bool) error {
	e, err := newEnv(rootOpts, cmd)
	if err != nil {
		return err
	}
	b := e.cfg.Backup
	if b == nil {
		return NewExitError(ExitCommandError, "backup is not configured (add a backup section to the config)")
	}
	if _, err := backup.Parser.Parse(b.Schedule); err != nil {
		return WrapExitError(ExitCommandError, "invalid backup.schedule "+b.Schedule, err)
	}

	rec, err := e.openRecorder()
	if err != nil {
		return err
	}
	defer rec.close()

	sdk, h, err := e.initSDK()
	if err != nil {
		return err
	}
	defer e.closeHandle(h)

	cs, err := sdk.CloudSave()
	if err != nil {
		return WrapExitError(ExitFailure, "cloud save unavailable", err)
	}
	job := backup.NewJob(cs, seq.NewClock(), backup.Settings{
		UUID:      b.UUID,
		Name:      b.Name,
		Summary:   b.Summary,
		Extra:     b.Extra,
		DataFile:  b.DataFile,
		CoverFile: b.CoverFile,
	}, backup.WithLogger(e.logger))

	if now {
		if err := job.Upload(); err != nil {
			return WrapExitError(ExitFailure, "backup failed", err)
		}
	}

	ctx, cancel := e.signalContext(cmd)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() {
		defer cancel()
		loopErr <- h.Run(ctx, e.cfg.Interval, func(ev tapsdk.Event) {
			job.Observe(ev)
			if err := e.out.Line(rec.record(ctx, ev)); err != nil {
				e.logger.Error("write event", zap.Error(err))
			}
		})
	}()

	e.logger.Info("backup scheduled", zap.String("schedule", b.Schedule), zap.String("file", b.DataFile))
	schedErr := backup.Schedule(ctx, b.Schedule, job)
	cancel()
	runErr := <-loopErr

	for _, err := range []error{schedErr, runErr} {
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return WrapExitError(ExitFailure, "backup stopped", err)
		}
	}
	return nil
}
