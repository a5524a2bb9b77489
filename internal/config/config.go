// Package config loads the tapsdk command configuration.
//
// A YAML file is decoded with yaml.v3, flag overrides are merged on top,
// and the result is unified with the embedded CUE schema, which rejects
// unknown keys and fills defaults before decoding into Config.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Config is the validated, defaulted configuration.
type Config struct {
	PublicKey    string   `json:"public_key,omitempty"`
	ClientID     string   `json:"client_id,omitempty"`
	Library      string   `json:"library"`
	PollInterval string   `json:"poll_interval"`
	Scopes       []string `json:"scopes"`
	Journal      string   `json:"journal,omitempty"`
	MetricsAddr  string   `json:"metrics_addr,omitempty"`
	Backup       *Backup  `json:"backup,omitempty"`

	// Interval is PollInterval parsed.
	Interval time.Duration `json:"-"`
}

// Backup configures the scheduled cloud backup.
type Backup struct {
	Schedule  string `json:"schedule"`
	UUID      string `json:"uuid,omitempty"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	Extra     string `json:"extra,omitempty"`
	DataFile  string `json:"data_file"`
	CoverFile string `json:"cover_file,omitempty"`
}

// ScopeList joins Scopes the way the native authorize call expects.
func (c *Config) ScopeList() string {
	return strings.Join(c.Scopes, ",")
}

// Error codes.
const (
	ErrCodeRead    = "C001" // file could not be read
	ErrCodeParse   = "C002" // YAML syntax error
	ErrCodeSchema  = "C003" // value rejected by the schema
	ErrCodeDecode  = "C004" // schema-valid value could not be decoded
	ErrCodeInvalid = "C005" // semantic check failed after decoding
)

// LoadError is returned by Load.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads path (skipped when empty), applies overrides and validates
// the result. Override keys use the file's snake_case names; nil values
// are ignored so unset flags can be passed through unconditionally.
func Load(path string, overrides map[string]any) (*Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeRead, Message: err.Error()}
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("%s: %v", path, err)}
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}
	for k, v := range overrides {
		if v == nil {
			continue
		}
		raw[k] = v
	}
	return decode(raw)
}

func decode(raw map[string]any) (*Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := def.Unify(ctx.Encode(raw))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, &LoadError{Code: ErrCodeDecode, Message: err.Error()}
	}

	interval, err := time.ParseDuration(cfg.PollInterval)
	if err != nil || interval <= 0 {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("poll_interval %q must be a positive duration", cfg.PollInterval)}
	}
	cfg.Interval = interval
	return &cfg, nil
}

func schemaError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeSchema, Message: err.Error()}
	var cerr cueerrors.Error
	if errors.As(err, &cerr) {
		le.Message = strings.TrimSpace(cueerrors.Details(cerr, nil))
		le.Pos = cerr.Position()
	}
	return le
}
