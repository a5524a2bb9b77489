package journal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/seq"
	"github.com/roach88/tapsdk/sys"
)

var fixedNow = time.Date(2026, 3, 14, 15, 9, 26, 535_000_000, time.UTC)

func openTest(t *testing.T, path string, opts ...Option) *Journal {
	t.Helper()
	if path == "" {
		path = filepath.Join(t.TempDir(), "journal.db")
	}
	opts = append([]Option{WithNow(func() time.Time { return fixedNow })}, opts...)
	j, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func str(s string) *string { return &s }

func sampleEvents() []tapsdk.Event {
	return []tapsdk.Event{
		tapsdk.SystemStateChanged{State: sys.SystemStatePlatformOnline},
		tapsdk.AuthorizeFinished{Token: &tapsdk.AuthToken{TokenType: "mac", Kid: "k", MacKey: "m", MacAlgorithm: "hmac-sha-1", Scope: "public_profile"}},
		tapsdk.CloudSaveList{RequestID: 1, Saves: []tapsdk.CloudSaveInfo{
			{UUID: "u-1", FileID: "f-1", Name: "slot", SaveSize: 10, Summary: str("sum"), Playtime: 60},
		}},
		tapsdk.CloudSaveCreate{RequestID: 2, Error: &tapsdk.APIError{Code: sys.ErrorCloudSaveUploadRateLimit, Message: "slow"}},
		tapsdk.CloudSaveGetData{RequestID: 3, Data: []byte{1, 2, 3}},
		tapsdk.Unknown{ID: sys.EventDLCPlayableStatusChanged},
	}
}

func TestOpen_CreatesDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j := openTest(t, path)

	_, err := os.Stat(path)
	require.NoError(t, err)

	mode, err := j.pragma(context.Background(), "journal_mode")
	require.NoError(t, err)
	assert.Equal(t, "wal", mode)

	version, err := j.pragma(context.Background(), "user_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)
}

func TestOpen_GeneratesSession(t *testing.T) {
	j := openTest(t, "")
	assert.Len(t, j.Session(), 36)
}

func TestAppend_RoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTest(t, "", WithSession("s-1"))

	events := sampleEvents()
	stored, err := j.Append(ctx, events...)
	require.NoError(t, err)
	require.Len(t, stored, len(events))

	entries, err := j.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, len(events))

	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.Equal(t, "s-1", e.SessionID)
		assert.Equal(t, events[i].EventID(), e.EventID)
		assert.Equal(t, fixedNow, e.RecordedAt)

		ev, err := e.Event()
		require.NoError(t, err)
		assert.Equal(t, events[i], ev, "entry %d", i)
	}
}

func TestAppend_UnknownKeepsKind(t *testing.T) {
	ctx := context.Background()
	j := openTest(t, "")

	_, err := j.Append(ctx, tapsdk.Unknown{ID: sys.EventCloudSaveList})
	require.NoError(t, err)

	entries, err := j.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Unknown", entries[0].Kind)
	assert.Equal(t, sys.EventCloudSaveList, entries[0].EventID)

	ev, err := entries[0].Event()
	require.NoError(t, err)
	assert.Equal(t, tapsdk.Unknown{ID: sys.EventCloudSaveList}, ev)
}

func TestAppend_RequestColumns(t *testing.T) {
	ctx := context.Background()
	j := openTest(t, "")

	_, err := j.Append(ctx, sampleEvents()...)
	require.NoError(t, err)

	two := int64(2)
	entries, err := j.List(ctx, Filter{RequestID: &two})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "CloudSaveCreate", entries[0].Kind)
	require.NotNil(t, entries[0].ErrorCode)
	assert.Equal(t, int64(sys.ErrorCloudSaveUploadRateLimit), *entries[0].ErrorCode)

	entries, err = j.List(ctx, Filter{Kind: "SystemStateChanged"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].RequestID)
	assert.Nil(t, entries[0].ErrorCode)
}

func TestAppend_Empty(t *testing.T) {
	j := openTest(t, "")
	stored, err := j.Append(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestList_FilterAndLimit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	a := openTest(t, path, WithSession("a"), WithClock(seq.NewClock()))
	_, err := a.Append(ctx, sampleEvents()...)
	require.NoError(t, err)
	require.NoError(t, a.Close())

	// Reopening resumes the seq after the highest stored value.
	b := openTest(t, path, WithSession("b"))
	stored, err := b.Append(ctx, tapsdk.GamePlayableStatusChanged{IsPlayable: true})
	require.NoError(t, err)
	assert.Equal(t, int64(len(sampleEvents())+1), stored[0].Seq)

	only, err := b.List(ctx, Filter{SessionID: "b"})
	require.NoError(t, err)
	require.Len(t, only, 1)

	page, err := b.List(ctx, Filter{AfterSeq: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(3), page[0].Seq)
	assert.Equal(t, int64(4), page[1].Seq)

	none, err := b.List(ctx, Filter{SessionID: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	first := openTest(t, path, WithSession("first"))
	_, err := first.Append(ctx, sampleEvents()[:2]...)
	require.NoError(t, err)

	second := openTest(t, path, WithSession("second"), WithClock(seq.NewClockAt(100)))
	_, err = second.Append(ctx, sampleEvents()[2:]...)
	require.NoError(t, err)

	sessions, err := second.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, Session{ID: "first", Events: 2, First: fixedNow, Last: fixedNow}, sessions[0])
	assert.Equal(t, "second", sessions[1].ID)
	assert.Equal(t, 4, sessions[1].Events)
}

func TestEncode_Deterministic(t *testing.T) {
	ev := tapsdk.CloudSaveList{RequestID: 9, Saves: []tapsdk.CloudSaveInfo{{UUID: "x", Extra: str("e")}}}
	a, err := encodeEvent(ev)
	require.NoError(t, err)
	b, err := encodeEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := decodeEvent("Nope", nil)
	assert.Error(t, err)
}
