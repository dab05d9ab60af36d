package appconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadRejectsUnsupportedConfigVersion(t *testing.T) {
	path := writeConfig(t, `
config_version: 99
socket: /tmp/mpv.sock
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "unsupported config_version") {
		t.Fatalf("expected config_version error, got %v", err)
	}
}

func TestLoadAppliesDefaultsAndOverrides(t *testing.T) {
	path := writeConfig(t, `
config_version: 1
socket: /tmp/mpv.sock
console:
  font_size: 24
  history_dedup: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Socket != "/tmp/mpv.sock" {
		t.Fatalf("expected socket override, got %q", cfg.Socket)
	}
	if cfg.Console.FontSize != 24 {
		t.Fatalf("expected font_size override, got %d", cfg.Console.FontSize)
	}
	if cfg.Console.HistoryDedup {
		t.Fatalf("expected history_dedup override to false")
	}
	if cfg.Console.HistoryMax != 200 {
		t.Fatalf("expected history_max default, got %d", cfg.Console.HistoryMax)
	}
	if cfg.Console.Prompt != "> " {
		t.Fatalf("expected prompt default, got %q", cfg.Console.Prompt)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults for missing file, got %v", err)
	}
	if cfg.Console.LogLines != 100 {
		t.Fatalf("expected log_lines default, got %d", cfg.Console.LogLines)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"font_size": `
config_version: 1
console:
  font_size: 0
`,
		"log_lines": `
config_version: 1
console:
  log_lines: 5000
`,
		"log_level": `
config_version: 1
console:
  log_level: shout
`,
	}
	for name, content := range cases {
		if _, err := Load(writeConfig(t, content)); err == nil {
			t.Fatalf("expected %s validation error", name)
		}
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("FOO", "bar")
	value := expandEnv("$FOO/$UID/$GID/$MISSING")
	if !strings.HasPrefix(value, "bar/") {
		t.Fatalf("expected env expansion, got %q", value)
	}
	if strings.Contains(value, "$UID") || strings.Contains(value, "$GID") {
		t.Fatalf("expected UID/GID expansion, got %q", value)
	}
	if !strings.HasSuffix(value, "/$MISSING") {
		t.Fatalf("expected missing vars to remain, got %q", value)
	}
}

func TestWriteDefaultRespectsOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	written, err := WriteDefault(path, false)
	if err != nil {
		t.Fatalf("write default: %v", err)
	}
	if written != path {
		t.Fatalf("expected path %q, got %q", path, written)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config to exist: %v", err)
	}
	if _, err := WriteDefault(path, false); err == nil {
		t.Fatalf("expected error when config exists")
	}
	if _, err := WriteDefault(path, true); err != nil {
		t.Fatalf("expected overwrite to succeed: %v", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)+"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
