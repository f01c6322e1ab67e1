// Package config loads receipt-demo settings from file and environment
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/thereceipt/receipt-demo/internal/escpos"
)

// EnvPrefix is prepended to every environment override, e.g.
// RECEIPT_DEMO_PRINTER_PROFILE=58mm
const EnvPrefix = "RECEIPT_DEMO"

// Config represents the application configuration
type Config struct {
	Printer  PrinterConfig  `mapstructure:"printer"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Registry RegistryConfig `mapstructure:"registry"`
	Preview  PreviewConfig  `mapstructure:"preview"`
}

// PrinterConfig selects and describes the target printer
type PrinterConfig struct {
	ID            string `mapstructure:"id"`
	Transport     string `mapstructure:"transport"` // auto, usb, serial, device, memory
	Device        string `mapstructure:"device"`
	Baud          int    `mapstructure:"baud"`
	VID           uint16 `mapstructure:"vid"`
	PID           uint16 `mapstructure:"pid"`
	Profile       string `mapstructure:"profile"`
	PrintWidth    int    `mapstructure:"print_width"`
	Charset       string `mapstructure:"charset"`
	LineCharacter string `mapstructure:"line_character"`
}

// EngineConfig tunes job execution
type EngineConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	ChunkSize int           `mapstructure:"chunk_size"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// RegistryConfig locates the printer registry file
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// PreviewConfig controls PNG previews
type PreviewConfig struct {
	FontSize float64 `mapstructure:"font_size"` // 0 sizes the face to the profile width
	Margin   int     `mapstructure:"margin"`
}

var transports = map[string]bool{"auto": true, "usb": true, "serial": true, "device": true, "memory": true}

// Load reads configuration. An empty path searches the working directory
// and the user config directory for receipt-demo.yaml; finding nothing is
// not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("receipt-demo")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir := appDir(); dir != "" {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if config.Registry.Path == "" {
		if dir := appDir(); dir != "" {
			config.Registry.Path = filepath.Join(dir, "printers.json")
		}
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Default returns the built-in configuration without reading files or env
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// defaults always decode
	_ = v.Unmarshal(&config)
	return &config
}

func appDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "receipt-demo")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("printer.transport", "auto")
	v.SetDefault("printer.baud", 9600)
	v.SetDefault("printer.profile", "default")
	v.SetDefault("printer.print_width", 0)
	v.SetDefault("printer.charset", "")
	v.SetDefault("printer.line_character", "")

	v.SetDefault("engine.timeout", "5s")
	v.SetDefault("engine.chunk_size", 4096)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)

	v.SetDefault("registry.path", "")

	v.SetDefault("preview.font_size", 0)
	v.SetDefault("preview.margin", 16)
}

// validate validates the configuration
func validate(config *Config) error {
	if !transports[config.Printer.Transport] {
		return fmt.Errorf("printer.transport: unknown transport %q", config.Printer.Transport)
	}
	if _, err := config.Profile(); err != nil {
		return fmt.Errorf("printer: %w", err)
	}
	if config.Printer.Baud <= 0 {
		return fmt.Errorf("printer.baud must be positive")
	}
	if config.Engine.Timeout <= 0 {
		return fmt.Errorf("engine.timeout must be positive")
	}
	if config.Engine.ChunkSize < 0 {
		return fmt.Errorf("engine.chunk_size cannot be negative")
	}
	switch config.Logging.Level {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("logging.level: invalid log level %q", config.Logging.Level)
	}
	if config.Preview.FontSize < 0 {
		return fmt.Errorf("preview.font_size must not be negative")
	}
	return nil
}

// Profile resolves the printer profile with the configured overrides
func (c *Config) Profile() (escpos.Profile, error) {
	p, err := escpos.LookupProfile(c.Printer.Profile)
	if err != nil {
		return escpos.Profile{}, err
	}
	if c.Printer.PrintWidth > 0 {
		p = p.WithPrintWidth(c.Printer.PrintWidth)
	}
	if c.Printer.Charset != "" {
		cs, err := escpos.LookupCharset(c.Printer.Charset)
		if err != nil {
			return escpos.Profile{}, err
		}
		p.Charset = cs.Name
	}
	if c.Printer.LineCharacter != "" {
		r, size := utf8.DecodeRuneInString(c.Printer.LineCharacter)
		if size != len(c.Printer.LineCharacter) {
			return escpos.Profile{}, fmt.Errorf("line_character must be a single character, got %q", c.Printer.LineCharacter)
		}
		p.LineChar = r
	}
	return p, nil
}
