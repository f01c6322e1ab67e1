package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "receipt-demo.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Printer.Transport != "auto" {
		t.Errorf("Expected transport 'auto', got '%s'", cfg.Printer.Transport)
	}
	if cfg.Engine.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.Engine.Timeout)
	}
	if cfg.Engine.ChunkSize != 4096 {
		t.Errorf("Expected chunk size 4096, got %d", cfg.Engine.ChunkSize)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}

	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.PrintWidth != 39 {
		t.Errorf("Expected width 39, got %d", p.PrintWidth)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
printer:
  transport: serial
  device: /dev/ttyUSB0
  baud: 19200
  profile: 58mm
  charset: pc858_euro
  line_character: "-"
engine:
  timeout: 2s
  chunk_size: 512
logging:
  level: debug
registry:
  path: /tmp/printers.json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Printer.Transport != "serial" || cfg.Printer.Device != "/dev/ttyUSB0" {
		t.Errorf("Unexpected printer config: %+v", cfg.Printer)
	}
	if cfg.Printer.Baud != 19200 {
		t.Errorf("Expected baud 19200, got %d", cfg.Printer.Baud)
	}
	if cfg.Engine.Timeout != 2*time.Second {
		t.Errorf("Expected 2s timeout, got %s", cfg.Engine.Timeout)
	}
	if cfg.Registry.Path != "/tmp/printers.json" {
		t.Errorf("Expected registry path, got '%s'", cfg.Registry.Path)
	}

	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile failed: %v", err)
	}
	if p.PrintWidth != 32 || p.MaxDots != 384 {
		t.Errorf("Expected 58mm geometry, got %d/%d", p.PrintWidth, p.MaxDots)
	}
	if p.Charset != "PC858_EURO" {
		t.Errorf("Expected PC858_EURO, got '%s'", p.Charset)
	}
	if p.LineChar != '-' {
		t.Errorf("Expected '-', got '%c'", p.LineChar)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, "printer:\n  profile: 58mm\n")
	t.Setenv("RECEIPT_DEMO_PRINTER_PROFILE", "80mm")
	t.Setenv("RECEIPT_DEMO_ENGINE_TIMEOUT", "750ms")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Printer.Profile != "80mm" {
		t.Errorf("Expected env profile '80mm', got '%s'", cfg.Printer.Profile)
	}
	if cfg.Engine.Timeout != 750*time.Millisecond {
		t.Errorf("Expected 750ms, got %s", cfg.Engine.Timeout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown transport", func(c *Config) { c.Printer.Transport = "network" }},
		{"unknown profile", func(c *Config) { c.Printer.Profile = "110mm" }},
		{"unknown charset", func(c *Config) { c.Printer.Charset = "KOI8" }},
		{"long line character", func(c *Config) { c.Printer.LineCharacter = "==" }},
		{"zero timeout", func(c *Config) { c.Engine.Timeout = 0 }},
		{"negative chunk", func(c *Config) { c.Engine.ChunkSize = -1 }},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"zero baud", func(c *Config) { c.Printer.Baud = 0 }},
		{"negative font size", func(c *Config) { c.Preview.FontSize = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := validate(cfg); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}
