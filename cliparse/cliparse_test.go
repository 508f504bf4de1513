// cliparse/cliparse_test.go
package cliparse

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("SESSION_SALT", "test-salt")
	t.Setenv("EXPORT_CONFIDENCE", "0.8")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.ExportConfidence != 0.8 {
		t.Errorf("expected export confidence 0.8, got %v", cfg.ExportConfidence)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug level, got %v", cfg.LogLevel)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("SESSION_SALT", "s1")

	cfg, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" || cfg.DatabaseURL != DefaultDatabaseURL {
		t.Errorf("unexpected database defaults: %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.AdminUsername != "admin" {
		t.Errorf("expected admin username 'admin', got %s", cfg.AdminUsername)
	}
	if cfg.ExportConfidence != 0.60 {
		t.Errorf("expected export confidence 0.60, got %v", cfg.ExportConfidence)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("expected 7 day sessions, got %v", cfg.SessionTTL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "--session-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:test.db" {
		t.Errorf("expected database url from flag, got %s", cfg.DatabaseURL)
	}
}

func TestParseFlags_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notetally.yaml")
	err := os.WriteFile(path, []byte(`
port: 4000
database:
  type: postgres
  url: postgres://from-file
sessionSalt: file-salt
adminUsername: curator
exportConfidence: 0.75
sessionTTL: 12h
logLevel: warn
`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	// env beats file
	t.Setenv("PORT", "5000")

	cfg, err := ParseFlags([]string{"--config", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 5000 {
		t.Errorf("env should override file: expected 5000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://from-file" || cfg.DatabaseType != "postgres" {
		t.Errorf("database not read from file: %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.SessionSalt != "file-salt" {
		t.Errorf("expected salt from file, got %s", cfg.SessionSalt)
	}
	if cfg.AdminUsername != "curator" {
		t.Errorf("expected admin username from file, got %s", cfg.AdminUsername)
	}
	if cfg.ExportConfidence != 0.75 {
		t.Errorf("expected export confidence 0.75, got %v", cfg.ExportConfidence)
	}
	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("expected 12h sessions, got %v", cfg.SessionTTL)
	}
	if cfg.LogLevel != slog.LevelWarn {
		t.Errorf("expected warn level, got %v", cfg.LogLevel)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing salt", nil, nil},
		{"bad port env", map[string]string{"SESSION_SALT": "s", "PORT": "abc"}, nil},
		{"bad database type", map[string]string{"SESSION_SALT": "s"}, []string{"-t", "mysql"}},
		{"export confidence out of range", map[string]string{"SESSION_SALT": "s"}, []string{"--export-confidence", "1.5"}},
		{"bad log level", map[string]string{"SESSION_SALT": "s"}, []string{"--log-level", "loud"}},
		{"missing config file", map[string]string{"SESSION_SALT": "s"}, []string{"-c", "/nonexistent/notetally.yaml"}},
		{"unknown flag", map[string]string{"SESSION_SALT": "s"}, []string{"--nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SESSION_SALT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error")
			}
		})
	}
}
