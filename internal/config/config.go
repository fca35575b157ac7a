// Package config loads the shared notilog/notitui configuration.
//
// The file format is externally fixed (`key = value` lines, # comments,
// optionally quoted values, ~ expanding to the user's home) so that
// configs written for earlier builds keep working; it is parsed by hand
// rather than through a YAML/TOML decoder, which would accept a different
// syntax. Missing or invalid values fall back to defaults, and the file
// is created with commented defaults on first use.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultMaxNotifications bounds distinct retained events.
	DefaultMaxNotifications = 30

	defaultLogPath = "~/.local/state/notilog/log.jsonl"
)

type Config struct {
	// LogFilePath is where lifecycle records are appended.
	LogFilePath string
	// MaxNotifications is the count-bound retention limit (0 disables).
	MaxNotifications int
	// PruneAfterDays schedules a daily age prune in the logger when
	// positive; 0 disables it.
	PruneAfterDays int
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(homeDir(), ".config", "notilog", "config.toml")
}

// legacyPath is where earlier releases kept the config. Still honored so
// existing user configs keep working without a manual move.
func legacyPath() string {
	return filepath.Join(homeDir(), ".config", "notitui", "config.toml")
}

// LoadOrCreate reads the config, writing a commented default file first
// if none exists. It never fails: unreadable files or bad values degrade
// to defaults, matching the best-effort contract of the original tool.
// A config at the legacy notitui location is read as-is when the current
// location has none.
func LoadOrCreate() Config {
	home := homeDir()
	path := Path()
	if _, err := os.Stat(path); err != nil {
		if legacy := legacyPath(); fileReadable(legacy) {
			path = legacy
		} else {
			ensureDefaultFile(path)
		}
	}

	cfg := Config{
		LogFilePath:      expandPath(defaultLogPath, home),
		MaxNotifications: DefaultMaxNotifications,
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	for _, line := range strings.Split(string(content), "\n") {
		stripped, _, _ := strings.Cut(line, "#")
		stripped = strings.TrimSpace(stripped)
		if stripped == "" {
			continue
		}

		key, value, ok := strings.Cut(stripped, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if value == "" {
			continue
		}

		switch key {
		case "log_file_path":
			cfg.LogFilePath = expandPath(value, home)
		case "max_notification_length", "max_notifications":
			if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
				cfg.MaxNotifications = parsed
			}
		case "prune_after_days":
			if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
				cfg.PruneAfterDays = parsed
			}
		}
	}

	return cfg
}

func fileReadable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func ensureDefaultFile(path string) {
	if _, err := os.Stat(path); err == nil {
		return
	}

	_ = os.MkdirAll(filepath.Dir(path), 0o755)

	defaults := "# notilog config\n" +
		"# Notification log file path\n" +
		"log_file_path = \"" + defaultLogPath + "\"\n\n" +
		"# Maximum number of notifications to keep\n" +
		"max_notification_length = " + strconv.Itoa(DefaultMaxNotifications) + "\n\n" +
		"# Drop log lines older than this many days while the logger runs (0 = never)\n" +
		"prune_after_days = 0\n"
	_ = os.WriteFile(path, []byte(defaults), 0o644)
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func expandPath(input, home string) string {
	if input == "~" {
		return home
	}
	if rest, ok := strings.CutPrefix(input, "~/"); ok {
		return filepath.Join(home, rest)
	}
	if filepath.IsAbs(input) {
		return input
	}
	return filepath.Join(home, input)
}
