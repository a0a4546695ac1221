package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/micha/key-runner/hotkey"
	"github.com/micha/key-runner/monitor"
	"github.com/micha/key-runner/process"
	"github.com/micha/key-runner/runner"
	"github.com/micha/key-runner/setup"
	"github.com/micha/key-runner/shutdown"
	"github.com/micha/key-runner/toggler"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.SetPrefix(appName + ": ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		return 1
	}
	return 0
}

func enableDebugLog() {
	w := log.Writer()
	process.SetLogOutput(w)
	hotkey.SetLogOutput(w)
	toggler.SetLogOutput(w)
	shutdown.SetLogOutput(w)
	runner.SetLogOutput(w)
	setup.SetLogOutput(w)
}

// runDaemon blocks until the user interrupts it or a fatal error occurs. The
// returned error names the step that failed.
func runDaemon(ctx context.Context, cfg Config) error {
	if cfg.Verbose {
		enableDebugLog()
	}

	if err := setup.EnsureEnvironment(setup.Options{KillPath: process.KillPath, Liveness: cfg.Liveness}); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	coord, err := shutdown.New()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	defer coord.Close()
	coord.Install()

	path, err := findDevice(ctx, &cfg)
	if err != nil {
		if coord.Requested() {
			log.Println("Interrupted while waiting for the input device")
			return nil
		}
		return fmt.Errorf("find device: %w", err)
	}

	dev, err := hotkey.Open(path, hotkey.DefaultOpenFlags)
	if err != nil {
		return fmt.Errorf("open device: %w", setup.PermissionHint(err))
	}
	defer dev.Close()

	var checker process.Checker = process.PSChecker{}
	if cfg.Liveness == "procfs" {
		checker = process.ProcfsChecker{}
	}

	if cfg.FollowOutput {
		mon, err := monitor.NewMonitor(cfg.OutputLog, cfg.OutputCharset)
		if err != nil {
			return fmt.Errorf("follow output: %w", err)
		}
		defer mon.Stop()

		monCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go mon.Run(monCtx, func(line string) {
			log.Printf("child: %s", line)
		})
	}

	launcher := process.Command{Argv: cfg.argv, OutputPath: cfg.OutputLog}
	tg := toggler.New(launcher, cfg.keyCode,
		toggler.WithChecker(checker),
		toggler.WithFatalHandler(coord.Fail),
	)

	keyName := hotkey.KeyName(cfg.keyCode)
	if keyName == "" {
		keyName = fmt.Sprintf("code %d", cfg.keyCode)
	}
	log.Printf("Listening on %s (%s), %s toggles %q", path, hotkey.DeviceName(hotkey.SysRoot, filepath.Base(path)), keyName, cfg.argv)

	err = runner.New(dev, tg, coord).Run()
	if err != nil {
		if errors.Is(err, hotkey.ErrDeviceGone) {
			return fmt.Errorf("input device %s: %w", path, err)
		}
		return fmt.Errorf("run: %w", err)
	}
	log.Println("Stopped")
	return nil
}
