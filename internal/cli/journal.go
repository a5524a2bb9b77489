package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/journal"
)

// JournalOptions holds flags for the journal list command.
type JournalOptions struct {
	*RootOptions
	Session   string
	Kind      string
	RequestID int64
	After     int64
	Limit     int
}

// NewJournalCommand creates the journal command group.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect events recorded by tapsdk run",
		Long: `Read the SQLite event journal written by "tapsdk run --journal".

Example:
  tapsdk journal sessions --journal events.db
  tapsdk journal list --journal events.db --kind CloudSaveCreate --request-id 7`,
	}
	cmd.PersistentFlags().String("journal", "", "path to the SQLite journal (default from config)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded events in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournalList(opts, cmd)
		},
	}
	list.Flags().StringVar(&opts.Session, "session", "", "only events from this session")
	list.Flags().StringVar(&opts.Kind, "kind", "", "only events of this kind (e.g. CloudSaveList)")
	list.Flags().Int64Var(&opts.RequestID, "request-id", 0, "only responses to this cloud-save request")
	list.Flags().Int64Var(&opts.After, "after", 0, "only events with seq greater than this")
	list.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of events (0 = all)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "sessions",
		Short: "List recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, j, err := openJournal(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer j.Close()

			sessions, err := j.Sessions(cmd.Context())
			if err != nil {
				return journalError("failed to read sessions", err)
			}
			return e.out.Success(sessionList(sessions))
		},
	})

	return cmd
}

func runJournalList(opts *JournalOptions, cmd *cobra.Command) error {
	e, j, err := openJournal(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	f := journal.Filter{
		SessionID: opts.Session,
		Kind:      opts.Kind,
		AfterSeq:  opts.After,
		Limit:     opts.Limit,
	}
	if cmd.Flags().Changed("request-id") {
		id := opts.RequestID
		f.RequestID = &id
	}

	entries, err := j.List(cmd.Context(), f)
	if err != nil {
		return journalError("failed to list events", err)
	}

	rows := make(entryList, 0, len(entries))
	for _, entry := range entries {
		ev, err := entry.Event()
		if err != nil {
			return journalError(fmt.Sprintf("failed to decode event %d", entry.Seq), err)
		}
		rows = append(rows, entryRow{Entry: entry, Event: ev})
	}
	return e.out.Success(rows)
}

func openJournal(rootOpts *RootOptions, cmd *cobra.Command) (*env, *journal.Journal, error) {
	e, err := newEnv(rootOpts, cmd)
	if err != nil {
		return nil, nil, err
	}
	if e.cfg.Journal == "" {
		return nil, nil, NewExitError(ExitCommandError, "journal is required (set it in the config or pass --journal)")
	}
	j, err := journal.Open(e.cfg.Journal)
	if err != nil {
		return nil, nil, journalError("failed to open journal", err)
	}
	return e, j, nil
}

func journalError(msg string, err error) error {
	return WrapExitError(ExitCommandError, msg, &codedError{code: ErrCodeJournal, err: err})
}

// entryRow is a journal entry with its payload decoded.
type entryRow struct {
	journal.Entry
	Event tapsdk.Event `json:"event"`
}

type entryList []entryRow

func (l entryList) renderText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}
	for _, r := range l {
		body, err := json.Marshal(r.Event)
		if err != nil {
			body = []byte(err.Error())
		}
		fmt.Fprintf(w, "#%d %s %s %s\n", r.Seq, r.RecordedAt.Format(time.RFC3339Nano), r.Kind, body)
	}
}

type sessionList []journal.Session

func (l sessionList) renderText(w io.Writer) {
	if len(l) == 0 {
		fmt.Fprintln(w, "no sessions")
		return
	}
	for _, s := range l {
		fmt.Fprintf(w, "%s  %d events  %s .. %s\n", s.ID, s.Events,
			s.First.Format(time.RFC3339), s.Last.Format(time.RFC3339))
	}
}
