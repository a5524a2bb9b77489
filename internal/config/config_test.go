package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tapsdk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "taptap_api.dll", cfg.Library)
	assert.Equal(t, "50ms", cfg.PollInterval)
	assert.Equal(t, 50*time.Millisecond, cfg.Interval)
	assert.Equal(t, []string{"public_profile"}, cfg.Scopes)
	assert.Equal(t, "public_profile", cfg.ScopeList())
	assert.Nil(t, cfg.Backup)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
public_key: pk-123
client_id: client-1
library: C:\Games\taptap_api.dll
poll_interval: 250ms
scopes: [public_profile, user_friends]
journal: events.db
metrics_addr: 127.0.0.1:9464
backup:
  schedule: "@every 30m"
  name: autosave
  summary: Periodic upload
  data_file: save.dat
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "pk-123", cfg.PublicKey)
	assert.Equal(t, "client-1", cfg.ClientID)
	assert.Equal(t, `C:\Games\taptap_api.dll`, cfg.Library)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, "public_profile,user_friends", cfg.ScopeList())
	assert.Equal(t, "events.db", cfg.Journal)
	assert.Equal(t, "127.0.0.1:9464", cfg.MetricsAddr)
	require.NotNil(t, cfg.Backup)
	assert.Equal(t, Backup{
		Schedule: "@every 30m",
		Name:     "autosave",
		Summary:  "Periodic upload",
		DataFile: "save.dat",
	}, *cfg.Backup)
}

func TestLoad_OverridesWin(t *testing.T) {
	path := writeConfig(t, "public_key: from-file\npoll_interval: 1s\n")

	cfg, err := Load(path, map[string]any{
		"public_key": "from-flag",
		"journal":    nil,
	})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.PublicKey)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Empty(t, cfg.Journal)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, "taptap_api.dll", cfg.Library)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"unknown key", "bogus: 1\n", ErrCodeSchema},
		{"bad duration", "poll_interval: soon\n", ErrCodeSchema},
		{"wrong type", "public_key: [a]\n", ErrCodeSchema},
		{"empty scope", "scopes: ['']\n", ErrCodeSchema},
		{"backup missing data file", "backup:\n  schedule: '@daily'\n  name: a\n  summary: b\n", ErrCodeSchema},
		{"zero interval", "poll_interval: 0s\n", ErrCodeInvalid},
		{"yaml syntax", "public_key: [unterminated\n", ErrCodeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), nil)
			require.Error(t, err)

			var le *LoadError
			require.ErrorAs(t, err, &le)
			assert.Equal(t, tt.code, le.Code, le.Error())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, ErrCodeRead, le.Code)
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Code: ErrCodeInvalid, Message: "bad"}
	assert.Equal(t, "C005: bad", err.Error())
}
