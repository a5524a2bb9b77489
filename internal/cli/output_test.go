package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/internal/config"
	"github.com/roach88/tapsdk/sys"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Success(restartResult{Restart: true})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"restart": true}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("NOT_INITIALIZED", "SDK not initialized", nil)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_INITIALIZED", resp.Error.Code)
	assert.Equal(t, "SDK not initialized", resp.Error.Message)
	assert.Nil(t, resp.Data)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(restartResult{}))
	assert.Equal(t, "no restart required\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("plain"))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error("E002", "timed out", map[string]string{"request_id": "1"}))
	assert.Equal(t, "Error [E002]: timed out\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: true}

	require.NoError(t, formatter.Error("E002", "timed out", map[string]string{"request_id": "1"}))
	assert.Contains(t, buf.String(), "Error [E002]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_Line(t *testing.T) {
	ev := tapsdk.SystemStateChanged{State: sys.SystemStatePlatformOnline}
	rec := newEventRecord(ev)
	rec.Seq = 3

	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}
	require.NoError(t, f.Line(rec))
	assert.JSONEq(t, `{"seq":3,"kind":"SystemStateChanged","event_id":1,"event":{"state":1}}`, buf.String())

	buf.Reset()
	f.Format = "text"
	require.NoError(t, f.Line(rec))
	assert.Equal(t, "#3 SystemStateChanged {\"state\":1}\n", buf.String())
}

func TestOutputFormatter_GetErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Writer: out}
	assert.Same(t, out, f.GetErrWriter())

	f.ErrWriter = errOut
	assert.Same(t, errOut, f.GetErrWriter())
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"sdk error", WrapExitError(ExitFailure, "init", tapsdk.ErrNotInitialized), "NOT_INITIALIZED"},
		{"api error", WrapExitError(ExitFailure, "list", &tapsdk.APIError{Code: sys.ErrorCloudSaveTimeout}), "CloudSave_Timeout"},
		{"config error", WrapExitError(ExitCommandError, "config", &config.LoadError{Code: config.ErrCodeSchema}), "C003"},
		{"coded error", fmt.Errorf("wait: %w", &codedError{code: ErrCodeTimeout, err: errors.New("late")}), "E002"},
		{"plain error", errors.New("boom"), "E001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorCode(tt.err))
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("bad")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitFailure, "x", nil))))
}
