package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tapsdk"
)

// Append records a batch of events in order inside one transaction and
// returns the stored entries. An empty batch is a no-op.
func (j *Journal) Append(ctx context.Context, events ...tapsdk.Event) ([]Entry, error) {
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("append: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events
		(seq, session_id, event_id, kind, request_id, error_code, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("append: prepare: %w", err)
	}
	defer stmt.Close()

	entries := make([]Entry, 0, len(events))
	for _, ev := range events {
		e, err := j.entryFor(ev)
		if err != nil {
			return nil, fmt.Errorf("append: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			e.Seq,
			e.SessionID,
			int64(e.EventID),
			e.Kind,
			nullInt64(e.RequestID),
			nullInt64(e.ErrorCode),
			e.Payload,
			e.RecordedAt.UnixMilli(),
		)
		if err != nil {
			return nil, fmt.Errorf("append seq %d: %w", e.Seq, err)
		}
		entries = append(entries, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("append: commit: %w", err)
	}
	return entries, nil
}

func (j *Journal) entryFor(ev tapsdk.Event) (Entry, error) {
	payload, err := encodeEvent(ev)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{
		Seq:        j.clock.Next(),
		SessionID:  j.session,
		EventID:    ev.EventID(),
		Kind:       Kind(ev),
		Payload:    payload,
		RecordedAt: j.now().UTC().Truncate(timeResolution),
	}
	if id, apiErr, ok := tapsdk.RequestOf(ev); ok {
		e.RequestID = &id
		if apiErr != nil {
			code := int64(apiErr.Code)
			e.ErrorCode = &code
		}
	}
	return e, nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}
