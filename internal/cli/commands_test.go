package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapsdk/internal/testutil"
	"github.com/roach88/tapsdk/sys"
)

// decodeData unmarshals a JSON success response and returns its data.
func decodeData(t *testing.T, stdout string) map[string]any {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	require.Equal(t, "ok", resp.Status)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok, "data should be an object: %s", stdout)
	return data
}

func TestRestartCheck(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Restart = true

	stdout, _, code := runCLI(t, lib, "restart-check", "--client-id", "abc", "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Equal(t, true, decodeData(t, stdout)["restart"])
	assert.Equal(t, "abc", lib.LastClientID)
	assert.Zero(t, lib.CallCount("Init"))
}

func TestRestartCheck_MissingClientID(t *testing.T) {
	stdout, _, code := runCLI(t, testutil.NewFakeLibrary(), "restart-check")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "client_id is required")
}

func TestStatus(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.ClientID = "client-1"
	lib.GameOwned = true

	stdout, _, code := runCLI(t, lib, "status", "--public-key", "pk")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "initialized: true")
	assert.Contains(t, stdout, "client id:   client-1")
	assert.Contains(t, stdout, "open id:     (none)")
	assert.Contains(t, stdout, "game owned:  true")

	assert.Equal(t, "pk", lib.LastPubKey)
	assert.Equal(t, 1, lib.CallCount("Shutdown"))
}

func TestStatus_RequiresPublicKey(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	stdout, _, code := runCLI(t, lib, "status")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stdout, "public_key is required")
	assert.Zero(t, lib.CallCount("Init"))
}

func TestStatus_InitFailed(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.InitResult = sys.InitNotLaunchedByPlatform
	lib.InitMessage = "start from TapTap"

	stdout, _, code := runCLI(t, lib, "status", "--public-key", "pk", "--format", "json")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, `"code":"INIT_FAILED"`)
	assert.Contains(t, stdout, "start from TapTap")
}

func TestStatus_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tapsdk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("public_key: from-file\nclient_id: c1\n"), 0o644))

	lib := testutil.NewFakeLibrary()
	_, _, code := runCLI(t, lib, "status", "--config", path)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "from-file", lib.LastPubKey)

	_, _, code = runCLI(t, lib, "status", "--config", path, "--public-key", "from-flag")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "from-flag", lib.LastPubKey)
}

func TestAuthorize(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventAuthorizeFinished, testutil.AuthorizePayload{
		TokenType: "mac",
		Kid:       "kid-1",
		Scope:     "public_profile",
	}.Pointer())

	stdout, _, code := runCLI(t, lib, "authorize", "--public-key", "pk", "--poll-interval", "1ms", "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)
	data := decodeData(t, stdout)
	assert.Equal(t, "AuthorizeFinished", data["kind"])
	ev := data["event"].(map[string]any)
	assert.Equal(t, false, ev["is_cancel"])
	assert.Equal(t, "kid-1", ev["token"].(map[string]any)["kid"])
	assert.Equal(t, "public_profile", lib.LastScopes)
}

func TestAuthorize_Cancelled(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventAuthorizeFinished, testutil.AuthorizePayload{IsCancel: true}.Pointer())

	stdout, _, code := runCLI(t, lib, "authorize", "--public-key", "pk", "--scopes", "user_friends", "--poll-interval", "1ms")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "authorization cancelled")
	assert.Equal(t, "user_friends", lib.LastScopes)
}

func TestAuthorize_Rejected(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.AuthorizeResult = sys.AuthorizeInFlight

	stdout, _, code := runCLI(t, lib, "authorize", "--public-key", "pk")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error [AUTHORIZE_FAILED]")
}

func TestDLC(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.OwnedDLCs["dlc-1"] = true
	lib.StoreShown = true

	stdout, _, code := runCLI(t, lib, "dlc", "owned", "dlc-1", "--public-key", "pk")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Equal(t, "dlc-1: owned: true\n", stdout)

	stdout, _, code = runCLI(t, lib, "dlc", "store", "dlc-2", "--public-key", "pk", "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)
	data := decodeData(t, stdout)
	assert.Equal(t, map[string]any{"dlc_id": "dlc-2", "shown": true}, data)
	assert.Equal(t, "dlc-2", lib.LastDLC)
}

func TestCloudSaveList(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventSystemStateChanged, testutil.SystemStatePayload(sys.SystemStatePlatformOnline))
	lib.Emit(sys.EventCloudSaveList, testutil.ListPayload(2, nil))
	lib.Emit(sys.EventCloudSaveList, testutil.ListPayload(1, nil, testutil.SaveInfo{
		UUID:    "u1",
		FileID:  "f1",
		Name:    "slot1",
		Summary: testutil.Str("chapter 2"),
	}))

	stdout, _, code := runCLI(t, lib, "cloudsave", "list", "--public-key", "pk", "--poll-interval", "1ms", "--format", "json")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Equal(t, int64(1), lib.LastRequestID)

	data := decodeData(t, stdout)
	assert.Equal(t, "CloudSaveList", data["kind"])
	assert.Equal(t, float64(sys.EventCloudSaveList), data["event_id"])
	ev := data["event"].(map[string]any)
	assert.Equal(t, float64(1), ev["request_id"])
	saves := ev["saves"].([]any)
	require.Len(t, saves, 1)
	save := saves[0].(map[string]any)
	assert.Equal(t, "u1", save["uuid"])
	assert.Equal(t, "chapter 2", save["summary"])
	assert.Nil(t, save["extra"])
}

func TestCloudSaveList_APIError(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventCloudSaveList, testutil.ListPayload(5, testutil.APIErr(sys.ErrorCloudSaveTimeout, "slow")))

	stdout, _, code := runCLI(t, lib, "cloudsave", "list", "--public-key", "pk", "--request-id", "5", "--poll-interval", "1ms")
	assert.Equal(t, ExitFailure, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2, stdout)
	assert.True(t, strings.HasPrefix(lines[0], "CloudSaveList "), lines[0])
	assert.Contains(t, lines[1], "Error [CloudSave_Timeout]")
	assert.Contains(t, lines[1], "slow")
}

func TestCloudSave_Timeout(t *testing.T) {
	lib := testutil.NewFakeLibrary()

	stdout, _, code := runCLI(t, lib, "cloudsave", "delete", "u1", "--public-key", "pk", "--poll-interval", "1ms", "--timeout", "20ms")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error [E002]")
	assert.Equal(t, "u1", lib.LastDelete)
}

func TestCloudSave_Rejected(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.CloudSaveResult = sys.CloudSaveInvalidArgument

	stdout, _, code := runCLI(t, lib, "cloudsave", "list", "--public-key", "pk")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "Error [CLOUD_SAVE_REJECTED]")
}

func TestCloudSaveCreate_NoWait(t *testing.T) {
	lib := testutil.NewFakeLibrary()

	stdout, _, code := runCLI(t, lib, "cloudsave", "create",
		"--public-key", "pk",
		"--request-id", "9",
		"--timeout", "0",
		"--name", "slot1",
		"--summary", "chapter 2",
		"--playtime", "120",
		"--data-file", "save.dat",
		"--format", "json",
	)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Equal(t, map[string]any{"request_id": float64(9), "sent": true}, decodeData(t, stdout))

	require.NotNil(t, lib.LastCreate)
	assert.Equal(t, testutil.CreateCall{
		RequestID:     9,
		Name:          "slot1",
		Summary:       "chapter 2",
		Extra:         testutil.Missing,
		Playtime:      120,
		DataFilePath:  "save.dat",
		CoverFilePath: testutil.Missing,
	}, *lib.LastCreate)
}

func TestCloudSaveUpdate(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventCloudSaveUpdate, testutil.CreatePayload(1, nil, &testutil.SaveInfo{UUID: "u1", FileID: "f2", Name: "slot1"}))

	stdout, _, code := runCLI(t, lib, "cloudsave", "update",
		"--public-key", "pk",
		"--uuid", "u1",
		"--name", "slot1",
		"--summary", "chapter 3",
		"--data-file", "save.dat",
		"--poll-interval", "1ms",
	)
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "CloudSaveUpdate ")
	require.NotNil(t, lib.LastUpdate)
	assert.Equal(t, "u1", lib.LastUpdate.UUID)
	assert.Equal(t, "chapter 3", lib.LastUpdate.Summary)
}

func TestCloudSaveGetData_Output(t *testing.T) {
	lib := testutil.NewFakeLibrary()
	lib.Emit(sys.EventCloudSaveGetData, testutil.FilePayload(1, nil, []byte("hello")))
	out := filepath.Join(t.TempDir(), "save.dat")

	stdout, _, code := runCLI(t, lib, "cloudsave", "get-data", "u1", "f1", "-o", out, "--public-key", "pk", "--poll-interval", "1ms")
	require.Equal(t, ExitSuccess, code, stdout)
	assert.Equal(t, [2]string{"u1", "f1"}, lib.LastFile)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
