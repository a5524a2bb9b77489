package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/sys"
)

// CloudSaveOptions holds flags shared by the cloudsave subcommands.
type CloudSaveOptions struct {
	*RootOptions
	RequestID int64
	Timeout   time.Duration
}

// NewCloudSaveCommand creates the cloudsave command group. Each
// subcommand sends one request and, unless --timeout is 0, waits for the
// response event with the same request id and prints it.
func NewCloudSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CloudSaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cloudsave",
		Short: "List, upload, update, delete and download cloud saves",
		Long: `Issue one cloud-save request and print the matching response event.

Example:
  tapsdk cloudsave list
  tapsdk cloudsave create --name slot1 --summary "Chapter 2" --data-file save.dat
  tapsdk cloudsave get-data <uuid> <file-id> --output save.dat`,
	}
	cmd.PersistentFlags().Int64Var(&opts.RequestID, "request-id", 1, "request id echoed in the response")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "how long to wait for the response (0 = don't wait)")
	cmd.PersistentFlags().String("poll-interval", "", "event poll interval (default from config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCloudSave(opts, cmd, sys.EventCloudSaveList, func(cs *tapsdk.CloudSave) error {
				return cs.List(opts.RequestID)
			})
		},
	})

	create := &saveFlags{}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Upload a new save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCloudSave(opts, cmd, sys.EventCloudSaveCreate, func(cs *tapsdk.CloudSave) error {
				return cs.Create(opts.RequestID, create.request())
			})
		},
	}
	create.bind(createCmd)
	cmd.AddCommand(createCmd)

	update := &saveFlags{}
	var uuid string
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Replace the contents of an existing save",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCloudSave(opts, cmd, sys.EventCloudSaveUpdate, func(cs *tapsdk.CloudSave) error {
				return cs.Update(opts.RequestID, tapsdk.UpdateRequest{UUID: uuid, CreateRequest: update.request()})
			})
		},
	}
	update.bind(updateCmd)
	updateCmd.Flags().StringVar(&uuid, "uuid", "", "uuid of the save to update")
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <uuid>",
		Short: "Delete a save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCloudSave(opts, cmd, sys.EventCloudSaveDelete, func(cs *tapsdk.CloudSave) error {
				return cs.Delete(opts.RequestID, args[0])
			})
		},
	})

	cmd.AddCommand(newDownloadCommand(opts, "get-data", "Download a save's data file", sys.EventCloudSaveGetData,
		(*tapsdk.CloudSave).GetData))
	cmd.AddCommand(newDownloadCommand(opts, "get-cover", "Download a save's cover image", sys.EventCloudSaveGetCover,
		(*tapsdk.CloudSave).GetCover))

	return cmd
}

// saveFlags are the create/update request fields.
type saveFlags struct {
	name, summary, extra string
	playtime             uint32
	dataFile, coverFile  string
}

func (f *saveFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "save name (at most 60 bytes, no Han characters)")
	cmd.Flags().StringVar(&f.summary, "summary", "", "save description (at most 500 bytes)")
	cmd.Flags().StringVar(&f.extra, "extra", "", "developer data (at most 1000 bytes)")
	cmd.Flags().Uint32Var(&f.playtime, "playtime", 0, "playtime in seconds")
	cmd.Flags().StringVar(&f.dataFile, "data-file", "", "path to the save data file")
	cmd.Flags().StringVar(&f.coverFile, "cover-file", "", "path to a cover image")
}

func (f *saveFlags) request() tapsdk.CreateRequest {
	return tapsdk.CreateRequest{
		Name:          f.name,
		Summary:       f.summary,
		Extra:         f.extra,
		Playtime:      f.playtime,
		DataFilePath:  f.dataFile,
		CoverFilePath: f.coverFile,
	}
}

func newDownloadCommand(opts *CloudSaveOptions, use, short string, id sys.EventID, get func(*tapsdk.CloudSave, int64, string, string) error) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   use + " <uuid> <file-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCloudSave(opts, cmd, id, func(cs *tapsdk.CloudSave) error {
				return get(cs, opts.RequestID, args[0], args[1])
			}, func(ev tapsdk.Event) error {
				if output == "" {
					return nil
				}
				var data []byte
				switch ev := ev.(type) {
				case tapsdk.CloudSaveGetData:
					data = ev.Data
				case tapsdk.CloudSaveGetCover:
					data = ev.Data
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return WrapExitError(ExitCommandError, "failed to write "+output, err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the downloaded bytes to this file")
	return cmd
}

// runCloudSave initializes the SDK, sends one request and waits for the
// response of category id. after runs on a successful response.
func runCloudSave(opts *CloudSaveOptions, cmd *cobra.Command, id sys.EventID, send func(*tapsdk.CloudSave) error, after ...func(tapsdk.Event) error) error {
	e, err := newEnv(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	sdk, h, err := e.initSDK()
	if err != nil {
		return err
	}
	defer e.closeHandle(h)

	cs, err := sdk.CloudSave()
	if err != nil {
		return WrapExitError(ExitFailure, "cloud save unavailable", err)
	}
	if err := send(cs); err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("%s request failed", id), err)
	}
	e.logger.Debug("request sent", zap.Stringer("event", id), zap.Int64("request_id", opts.RequestID))

	if opts.Timeout == 0 {
		return e.out.Success(map[string]any{"request_id": opts.RequestID, "sent": true})
	}

	ctx, cancel := e.signalContext(cmd)
	defer cancel()
	ctx, stop := context.WithTimeout(ctx, opts.Timeout)
	defer stop()

	ev, err := waitFor(ctx, h, e.cfg.Interval, responseTo(id, opts.RequestID), func(ev tapsdk.Event) {
		e.logger.Debug("ignoring event", zap.String("kind", newEventRecord(ev).Kind))
	})
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("%s request %d", id, opts.RequestID), err)
	}
	if err := e.out.Success(newEventRecord(ev)); err != nil {
		return err
	}

	if _, apiErr, _ := tapsdk.RequestOf(ev); apiErr != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("%s request %d", id, opts.RequestID), apiErr)
	}
	for _, fn := range after {
		if err := fn(ev); err != nil {
			return err
		}
	}
	return nil
}
