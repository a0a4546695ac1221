package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/micha/key-runner/hotkey"
)

type flagValues struct {
	configPath    string
	command       string
	key           string
	device        string
	waitDevice    time.Duration
	liveness      string
	outputLog     string
	followOutput  bool
	outputCharset string
	verbose       bool
}

func newRootCmd() *cobra.Command {
	var fv flagValues

	root := &cobra.Command{
		Use:   appName + " -c COMMAND -k KEY",
		Short: "Toggle a command on and off with one key",
		Long: "key-runner listens on a keyboard input device. The first press of the bound key\n" +
			"starts the command, the next press stops it with SIGTERM.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd.Flags(), fv)
			if err != nil {
				return err
			}
			return runDaemon(cmd.Context(), cfg)
		},
	}

	bindFlags(root.Flags(), &fv)
	root.AddCommand(newDevicesCmd())
	return root
}

func bindFlags(flags *pflag.FlagSet, fv *flagValues) {
	flags.StringVar(&fv.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/key-runner/config.toml)")
	flags.StringVarP(&fv.command, "command", "c", "", "command to toggle, split on whitespace")
	flags.StringVarP(&fv.key, "key", "k", "", "key code or name, e.g. 61, F3 or KEY_F3")
	flags.StringVarP(&fv.device, "device", "d", "", "input device (/dev/input/eventN or /sys/class/input/eventN); auto-detected if empty")
	flags.DurationVar(&fv.waitDevice, "wait-device", 0, "wait this long for the input device to appear")
	flags.StringVar(&fv.liveness, "liveness", "ps", "how to check the child is alive: ps or procfs")
	flags.StringVar(&fv.outputLog, "output-log", "", "append the child's stdout and stderr to this file")
	flags.BoolVar(&fv.followOutput, "follow-output", false, "copy new lines of the output log into the daemon log")
	flags.StringVar(&fv.outputCharset, "output-charset", "utf-8", "charset of the child's output")
	flags.BoolVarP(&fv.verbose, "verbose", "v", false, "debug logging")
}

// buildConfig loads the config file and applies the flags the user set.
func buildConfig(flags *pflag.FlagSet, fv flagValues) (Config, error) {
	path := fv.configPath
	explicit := flags.Changed("config")
	if !explicit {
		var err error
		if path, err = defaultConfigPath(); err != nil {
			return Config{}, err
		}
	}

	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return cfg, err
	}

	if flags.Changed("command") {
		cfg.Command = fv.command
	}
	if flags.Changed("key") {
		cfg.Key = fv.key
	}
	if flags.Changed("device") {
		cfg.Device = fv.device
	}
	if flags.Changed("wait-device") {
		cfg.WaitDevice.Duration = fv.waitDevice
	}
	if flags.Changed("liveness") {
		cfg.Liveness = fv.liveness
	}
	if flags.Changed("output-log") {
		cfg.OutputLog = fv.outputLog
	}
	if flags.Changed("follow-output") {
		cfg.FollowOutput = fv.followOutput
	}
	if flags.Changed("output-charset") {
		cfg.OutputCharset = fv.outputCharset
	}
	if flags.Changed("verbose") {
		cfg.Verbose = fv.verbose
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List keyboards that can be used as input device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keyboards, err := hotkey.FindKeyboards(hotkey.SysRoot, hotkey.DevRoot)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(keyboards) == 0 {
				fmt.Fprintln(out, "No keyboards found.")
				return nil
			}
			fmt.Fprintln(out, "Available keyboards:")
			for i, kb := range keyboards {
				fmt.Fprintf(out, "  %d. %s  %s\n", i+1, kb.Path, kb.Name)
			}
			return nil
		},
	}
}
