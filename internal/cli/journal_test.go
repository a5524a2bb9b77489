package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/journal"
	"github.com/roach88/tapsdk/sys"
)

// seedJournal writes events under two sessions and returns the path.
func seedJournal(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.db")

	j, err := journal.Open(path, journal.WithSession("s1"))
	require.NoError(t, err)
	_, err = j.Append(context.Background(),
		tapsdk.SystemStateChanged{State: sys.SystemStatePlatformOnline},
		tapsdk.CloudSaveList{RequestID: 7, Saves: []tapsdk.CloudSaveInfo{}},
	)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = journal.Open(path, journal.WithSession("s2"))
	require.NoError(t, err)
	_, err = j.Append(context.Background(), tapsdk.CloudSaveDelete{RequestID: 8, UUID: "u1"})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	return path
}

func decodeRows(t *testing.T, stdout string) []map[string]any {
	t.Helper()
	var resp struct {
		Status string           `json:"status"`
		Data   []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "ok", resp.Status)
	return resp.Data
}

func TestJournalList(t *testing.T) {
	path := seedJournal(t)

	stdout, _, code := runCLI(t, nil, "journal", "list", "--journal", path, "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)
	rows := decodeRows(t, stdout)
	require.Len(t, rows, 3)
	assert.Equal(t, "SystemStateChanged", rows[0]["kind"])
	assert.Equal(t, map[string]any{"state": float64(1)}, rows[0]["event"])
	assert.Equal(t, "s2", rows[2]["session_id"])
	assert.Equal(t, "u1", rows[2]["event"].(map[string]any)["uuid"])
}

func TestJournalList_Filters(t *testing.T) {
	path := seedJournal(t)

	tests := []struct {
		name  string
		args  []string
		kinds []string
	}{
		{"session", []string{"--session", "s1"}, []string{"SystemStateChanged", "CloudSaveList"}},
		{"kind", []string{"--kind", "CloudSaveDelete"}, []string{"CloudSaveDelete"}},
		{"request id", []string{"--request-id", "7"}, []string{"CloudSaveList"}},
		{"after and limit", []string{"--after", "1", "--limit", "1"}, []string{"CloudSaveList"}},
		{"no match", []string{"--kind", "AuthorizeFinished"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"journal", "list", "--journal", path, "--format", "json"}, tt.args...)
			stdout, _, code := runCLI(t, nil, args...)
			require.Equal(t, ExitSuccess, code, stdout)

			kinds := []string{}
			for _, row := range decodeRows(t, stdout) {
				kinds = append(kinds, row["kind"].(string))
			}
			assert.Equal(t, tt.kinds, kinds)
		})
	}
}

func TestJournalList_Text(t *testing.T) {
	path := seedJournal(t)

	stdout, _, code := runCLI(t, nil, "journal", "list", "--journal", path, "--kind", "CloudSaveDelete")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Regexp(t, `^#3 \S+ CloudSaveDelete \{"request_id":8,"error":null,"uuid":"u1"\}\n$`, stdout)

	stdout, _, code = runCLI(t, nil, "journal", "list", "--journal", path, "--kind", "Unknown")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Equal(t, "no events\n", stdout)
}

func TestJournalSessions(t *testing.T) {
	path := seedJournal(t)

	stdout, _, code := runCLI(t, nil, "journal", "sessions", "--journal", path, "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)
	rows := decodeRows(t, stdout)
	require.Len(t, rows, 2)
	assert.Equal(t, "s1", rows[0]["id"])
	assert.Equal(t, float64(2), rows[0]["events"])
	assert.Equal(t, "s2", rows[1]["id"])
	assert.Equal(t, float64(1), rows[1]["events"])
}

func TestJournal_Required(t *testing.T) {
	stdout, _, code := runCLI(t, nil, "journal", "sessions")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "journal is required")
}

func TestJournal_OpenError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "events.db")

	stdout, _, code := runCLI(t, nil, "journal", "sessions", "--journal", path)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "Error [E003]")
}
