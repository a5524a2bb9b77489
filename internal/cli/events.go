package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/journal"
	"github.com/roach88/tapsdk/sys"
)

// eventRecord is how commands print an event.
type eventRecord struct {
	Seq     int64        `json:"seq,omitempty"`
	Kind    string       `json:"kind"`
	EventID sys.EventID  `json:"event_id"`
	Event   tapsdk.Event `json:"event"`
}

func newEventRecord(ev tapsdk.Event) eventRecord {
	return eventRecord{Kind: journal.Kind(ev), EventID: ev.EventID(), Event: ev}
}

func (r eventRecord) renderText(w io.Writer) {
	body, err := json.Marshal(r.Event)
	if err != nil {
		body = []byte(err.Error())
	}
	if r.Seq > 0 {
		fmt.Fprintf(w, "#%d ", r.Seq)
	}
	fmt.Fprintf(w, "%s %s\n", r.Kind, body)
}

// waitFor polls h until match accepts an event or ctx ends. Events that
// do not match are passed to skipped, which may be nil.
func waitFor(ctx context.Context, h *tapsdk.Handle, interval time.Duration, match func(tapsdk.Event) bool, skipped func(tapsdk.Event)) (tapsdk.Event, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var found tapsdk.Event
	err := h.Run(ctx, interval, func(ev tapsdk.Event) {
		if found == nil && match(ev) {
			found = ev
			cancel()
			return
		}
		if skipped != nil {
			skipped(ev)
		}
	})
	if found != nil {
		return found, nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return nil, &codedError{code: ErrCodeTimeout, err: errors.New("timed out waiting for response")}
	}
	if err == nil {
		err = errors.New("SDK shut down while waiting for response")
	}
	return nil, err
}

// responseTo matches the cloud-save response carrying requestID.
func responseTo(id sys.EventID, requestID int64) func(tapsdk.Event) bool {
	return func(ev tapsdk.Event) bool {
		got, _, ok := tapsdk.RequestOf(ev)
		return ok && ev.EventID() == id && got == requestID
	}
}
