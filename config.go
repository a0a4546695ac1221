package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/micha/key-runner/monitor"
	"github.com/micha/key-runner/parser"
)

// ErrNoCommand is returned when neither the config file nor -c names a command.
var ErrNoCommand = errors.New("no command configured (use -c or set command in the config file)")

// ErrNoKey is returned when no key is configured.
var ErrNoKey = errors.New("no key configured (use -k or set key in the config file)")

// Duration reads TOML strings such as "10s" or "1m30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the daemon configuration, read from TOML and then overridden by
// flags.
type Config struct {
	Command       string   `toml:"command"`
	Key           string   `toml:"key"`
	Device        string   `toml:"device"`
	WaitDevice    Duration `toml:"wait_device"`
	Liveness      string   `toml:"liveness"`
	OutputLog     string   `toml:"output_log"`
	FollowOutput  bool     `toml:"follow_output"`
	OutputCharset string   `toml:"output_charset"`
	Verbose       bool     `toml:"verbose"`

	argv    []string
	keyCode uint16
}

func defaultConfig() Config {
	return Config{
		Liveness:      "ps",
		OutputCharset: "utf-8",
	}
}

// loadConfig reads path over the defaults. A missing file is only an error
// when the caller asked for it explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return cfg, fmt.Errorf("config %s: %s", path, strict.String())
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return cfg, fmt.Errorf("config %s:%d:%d: %w", path, row, col, err)
		}
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config and resolves the command and key.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Command) == "" {
		return ErrNoCommand
	}
	argv, err := parser.ParseCommand(c.Command)
	if err != nil {
		return err
	}

	if strings.TrimSpace(c.Key) == "" {
		return ErrNoKey
	}
	code, err := parser.ParseKey(c.Key)
	if err != nil {
		return err
	}

	switch c.Liveness {
	case "ps", "procfs":
	default:
		return fmt.Errorf("liveness must be \"ps\" or \"procfs\", got %q", c.Liveness)
	}

	if _, err := monitor.LookupCharset(c.OutputCharset); err != nil {
		return err
	}
	if c.FollowOutput && c.OutputLog == "" {
		return errors.New("follow_output needs output_log")
	}
	if c.WaitDevice.Duration < 0 {
		return fmt.Errorf("wait_device must not be negative, got %s", c.WaitDevice.Duration)
	}

	c.argv = argv
	c.keyCode = code
	return nil
}
