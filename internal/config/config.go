package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for invrec, stored in ~/.invrec/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	Google GoogleConfig `json:"google"`
	Report ReportConfig `json:"report"`
}

// GoogleConfig holds Google Calendar sync settings. OAuth client credentials
// come from the environment, not from this file.
type GoogleConfig struct {
	// Calendars lists the calendar IDs to fetch. Empty = all calendars on
	// the account.
	Calendars []string `json:"calendars"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Berlin"). Empty = UTC.
	Timezone string `json:"timezone"`
}

// ReportConfig controls where the generated CSV reports go.
type ReportConfig struct {
	// DetailFile is the path of the per-record report.
	DetailFile string `json:"detail_file"`
	// SummaryFile is the path of the per-project report.
	SummaryFile string `json:"summary_file"`
}

const (
	// DefaultDetailFile is the detail report written into the working directory.
	DefaultDetailFile = "detail.csv"
	// DefaultSummaryFile is the summary report written into the working directory.
	DefaultSummaryFile = "summary.csv"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Report: ReportConfig{
			DetailFile:  DefaultDetailFile,
			SummaryFile: DefaultSummaryFile,
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// invrec configuration - ~/.invrec/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. OAuth client credentials are NOT stored here: set GOOGLE_CLIENT_ID
// and GOOGLE_CLIENT_SECRET in the environment or a .env file.
{
  // Google Calendar sync
  "google": {
    // Calendar IDs to fetch during 'invrec gcal sync'.
    // Leave empty to fetch every calendar on the account.
    "calendars": [],

    // IANA timezone for interpreting calendar event times, e.g. "Europe/Berlin".
    // Leave empty to use UTC.
    "timezone": ""
  },

  // Report output
  "report": {
    // Paths for the generated CSV reports, relative to the working directory.
    "detail_file": "detail.csv",
    "summary_file": "summary.csv"
  }
}
`

// configFilePath returns the path to ~/.invrec/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".invrec", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.invrec/config.json, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	var cfg Config
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.Report.DetailFile == "" {
		cfg.Report.DetailFile = DefaultDetailFile
	}
	if cfg.Report.SummaryFile == "" {
		cfg.Report.SummaryFile = DefaultSummaryFile
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// Location returns the configured timezone, or UTC when unset.
func (c Config) Location() (*time.Location, error) {
	if c.Google.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Google.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Google.Timezone, err)
	}
	return loc, nil
}
