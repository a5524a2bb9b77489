package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/sys"
)

// recorded_at is stored as Unix milliseconds.
const timeResolution = time.Millisecond

// Entry is one stored event.
type Entry struct {
	Seq        int64       `json:"seq"`
	SessionID  string      `json:"session_id"`
	EventID    sys.EventID `json:"event_id"`
	Kind       string      `json:"kind"`
	RequestID  *int64      `json:"request_id,omitempty"`
	ErrorCode  *int64      `json:"error_code,omitempty"`
	Payload    []byte      `json:"-"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// Event decodes the stored payload.
func (e Entry) Event() (tapsdk.Event, error) {
	return decodeEvent(e.Kind, e.Payload)
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	SessionID string
	Kind      string
	RequestID *int64
	// AfterSeq returns only entries with seq > AfterSeq.
	AfterSeq int64
	// Limit caps the number of entries; 0 means no limit.
	Limit int
}

// List returns matching entries ordered by seq.
// Returns an empty slice (not nil) when nothing matches.
func (j *Journal) List(ctx context.Context, f Filter) ([]Entry, error) {
	var (
		where []string
		args  []any
	)
	if f.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.RequestID != nil {
		where = append(where, "request_id = ?")
		args = append(args, *f.RequestID)
	}
	if f.AfterSeq > 0 {
		where = append(where, "seq > ?")
		args = append(args, f.AfterSeq)
	}

	query := `SELECT seq, session_id, event_id, kind, request_id, error_code, payload, recorded_at FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY seq ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		eventID    int64
		requestID  sql.NullInt64
		errorCode  sql.NullInt64
		recordedAt int64
	)
	if err := rows.Scan(&e.Seq, &e.SessionID, &eventID, &e.Kind, &requestID, &errorCode, &e.Payload, &recordedAt); err != nil {
		return Entry{}, fmt.Errorf("scan event: %w", err)
	}
	e.EventID = sys.EventID(eventID)
	if requestID.Valid {
		e.RequestID = &requestID.Int64
	}
	if errorCode.Valid {
		e.ErrorCode = &errorCode.Int64
	}
	e.RecordedAt = time.UnixMilli(recordedAt).UTC()
	return e, nil
}

// Session summarizes one process run.
type Session struct {
	ID     string    `json:"id"`
	Events int       `json:"events"`
	First  time.Time `json:"first"`
	Last   time.Time `json:"last"`
}

// Sessions lists every session in the order it started.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, COUNT(*), MIN(recorded_at), MAX(recorded_at), MIN(seq) AS first_seq
		FROM events
		GROUP BY session_id
		ORDER BY first_seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var (
			s           Session
			first, last int64
			firstSeq    int64
		)
		if err := rows.Scan(&s.ID, &s.Events, &first, &last, &firstSeq); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.First = time.UnixMilli(first).UTC()
		s.Last = time.UnixMilli(last).UTC()
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}
