package cli

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapsdk/internal/journal"
	"github.com/roach88/tapsdk/internal/testutil"
	"github.com/roach88/tapsdk/sys"
)

func TestRun_StreamsAndJournals(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventSystemStateChanged, testutil.SystemStatePayload(sys.SystemStatePlatformOnline))
	lib.Emit(sys.EventGamePlayableStatusChanged, testutil.GamePlayablePayload(true))
	path := filepath.Join(t.TempDir(), "events.db")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	stdout, err := runCLIContext(t, ctx, lib, "run",
		"--public-key", "pk",
		"--poll-interval", "1ms",
		"--journal", path,
		"--metrics-addr", "127.0.0.1:0",
		"--format", "json",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, lib.CallCount("Shutdown"))

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2, stdout)
	var first eventLine
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, eventLine{Seq: 1, Kind: "SystemStateChanged", EventID: 1}, first)
	assert.Contains(t, lines[1], `"kind":"GamePlayableStatusChanged"`)
	assert.Contains(t, lines[1], `"is_playable":true`)

	j, err := journal.Open(path)
	require.NoError(t, err)
	defer j.Close()
	entries, err := j.List(context.Background(), journal.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "GamePlayableStatusChanged", entries[1].Kind)
}

type eventLine struct {
	Seq     int64  `json:"seq"`
	Kind    string `json:"kind"`
	EventID int    `json:"event_id"`
}

func TestRun_WithoutJournal(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventDLCPlayableStatusChanged, testutil.DLCPlayablePayload("dlc-1", false))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	stdout, err := runCLIContext(t, ctx, lib, "run", "--public-key", "pk", "--poll-interval", "1ms")
	require.NoError(t, err)
	assert.Equal(t, "DLCPlayableStatusChanged {\"dlc_id\":\"dlc-1\",\"is_playable\":false}\n", stdout)
}

func TestRun_MetricsAddrInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	lib := testutil.NewFakeLibrary()

	stdout, _, code := runCLI(t, lib, "run", "--public-key", "pk", "--metrics-addr", ln.Addr().String())
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "failed to listen")
	assert.Zero(t, lib.CallCount("Init"))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScript(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.ClientID = "client-1"
	lib.Emit(sys.EventSystemStateChanged, testutil.SystemStatePayload(sys.SystemStatePlatformOnline))

	script := writeFile(t, "state.js", `
const sdk = new TapSdk("pk", (err, ev) => {
  if (ev.event_id === EventId.SYSTEM_STATE_CHANGED) {
    console.log("online", ev.state === SystemState.PLATFORM_ONLINE, sdk.getClientId());
    sdk.shutdown();
  }
});
`)

	stdout, _, code := runCLI(t, lib, "script", script, "--poll-interval", "1ms")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Equal(t, "online true client-1\n", stdout)
	assert.Equal(t, "pk", lib.LastPubKey)
	assert.Equal(t, 1, lib.CallCount("Shutdown"))
}

func TestScript_Errors(t *testing.T) {
	stdout, _, code := runCLI(t, testutil.NewFakeLibrary(), "script", filepath.Join(t.TempDir(), "missing.js"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "failed to read script")

	script := writeFile(t, "throw.js", `throw new Error("nope");`)
	stdout, _, code = runCLI(t, testutil.NewFakeLibrary(), "script", script)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "script failed")
	assert.Contains(t, stdout, "nope")
}

func backupConfig(t *testing.T, schedule string) string {
	t.Helper()
	return writeFile(t, "tapsdk.yaml", `public_key: pk
poll_interval: 1ms
backup:
  schedule: "`+schedule+`"
  name: autosave
  summary: periodic backup
  data_file: save.dat
`)
}

func TestBackup_Now(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventCloudSaveCreate, testutil.CreatePayload(1, nil, &testutil.SaveInfo{UUID: "u-new", FileID: "f1", Name: "autosave"}))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	stdout, err := runCLIContext(t, ctx, lib, "backup", "--config", backupConfig(t, "@every 1h"), "--now")
	require.NoError(t, err)

	require.NotNil(t, lib.LastCreate)
	assert.Equal(t, int64(1), lib.LastCreate.RequestID)
	assert.Equal(t, "autosave", lib.LastCreate.Name)
	assert.Equal(t, "periodic backup", lib.LastCreate.Summary)
	assert.Equal(t, "save.dat", lib.LastCreate.DataFilePath)
	assert.Contains(t, stdout, "CloudSaveCreate ")
	assert.Contains(t, stdout, `"uuid":"u-new"`)
	assert.Equal(t, 1, lib.CallCount("Shutdown"))
}

func TestBackup_ConfigErrors(t *testing.T) {
	noBackup := writeFile(t, "tapsdk.yaml", "public_key: pk\n")
	stdout, _, code := runCLI(t, testutil.NewFakeLibrary(), "backup", "--config", noBackup)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "backup is not configured")

	lib := testutil.NewFakeLibrary()
	stdout, _, code = runCLI(t, lib, "backup", "--config", backupConfig(t, "every tuesday"))
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "invalid backup.schedule")
	assert.Zero(t, lib.CallCount("Init"))
}
