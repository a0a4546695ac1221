package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/micha/key-runner/hotkey"
)

const appName = "key-runner"

func defaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %v", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// findDevice resolves the keyboard to listen on. An explicit device wins over
// discovery. With wait > 0 a missing device is awaited instead of failing.
func findDevice(ctx context.Context, cfg *Config) (string, error) {
	inputDir := filepath.Join(hotkey.DevRoot, "input")

	find := func() (string, error) {
		return hotkey.FindKeyboard(hotkey.SysRoot, hotkey.DevRoot)
	}
	if cfg.Device != "" {
		path := hotkey.ResolveDevicePath(cfg.Device, hotkey.SysRoot, hotkey.DevRoot)
		inputDir = filepath.Dir(path)
		find = func() (string, error) {
			if _, err := os.Stat(path); err != nil {
				return "", err
			}
			return path, nil
		}
	}

	if cfg.WaitDevice.Duration <= 0 {
		return find()
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.WaitDevice.Duration)
	defer cancel()
	return hotkey.Await(ctx, inputDir, find)
}
