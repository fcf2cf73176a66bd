// Package main provides the ecli demo program: an interactive shell built on
// the embeddedcli engine, a transcript replayer and build information.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"embeddedcli/internal/config"
	"embeddedcli/internal/logger"
	"embeddedcli/internal/manifest"
	"embeddedcli/internal/version"
	"embeddedcli/pkg/embeddedcli"
)

// options holds the flags that are not engine settings.
type options struct {
	logLevel   string
	logFile    string
	configFile string
	envFile    string
	testMode   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Every call gets its own viper
// instance so commands can be executed repeatedly in tests.
func newRootCmd() *cobra.Command {
	opts := &options{}
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:   "ecli",
		Short: "ecli - embedded command-line engine demo",
		Long: `ecli runs the embeddedcli line editor on your terminal the way firmware
runs it on a serial port: bytes go in, the engine edits, completes and
dispatches commands described by a YAML manifest.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(opts)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, v, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.StringVar(&opts.configFile, "config", "", "Config file [default: ./ecli.yaml when present]")
	flags.StringVar(&opts.envFile, "env-file", ".env", "Load ECLI_* variables from this file when it exists")
	flags.BoolVar(&opts.testMode, "test-mode", false, "Run with deterministic logging")

	flags.String("manifest", "", "Command manifest [default: built-in demo]")
	flags.String("invitation", "", "Prompt shown before the input line")
	flags.Int("rx-buffer-size", 0, "Receive queue size in bytes")
	flags.Int("cmd-buffer-size", 0, "Command line buffer size in bytes")
	flags.Int("history-buffer-size", 0, "History buffer size in bytes (0 disables history)")
	flags.Int("max-binding-count", 0, "Number of user bindings")
	flags.Int("sub-interpreter-depth", 0, "Maximum sub-interpreter nesting")
	flags.Bool("static-buffer", false, "Carve the engine from a caller-supplied region")
	flags.Bool("auto-complete", true, "Enable Tab completion and live suggestions")
	flags.Bool("color", false, "Colorize prompt, help and suggestions")

	bindings := map[string]string{
		config.KeyManifest:            "manifest",
		config.KeyInvitation:          "invitation",
		config.KeyRxBufferSize:        "rx-buffer-size",
		config.KeyCmdBufferSize:       "cmd-buffer-size",
		config.KeyHistoryBufferSize:   "history-buffer-size",
		config.KeyMaxBindingCount:     "max-binding-count",
		config.KeySubInterpreterDepth: "sub-interpreter-depth",
		config.KeyStaticBuffer:        "static-buffer",
		config.KeyAutoComplete:        "auto-complete",
		config.KeyColorOutput:         "color",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell (default)",
			Long:  `Put the terminal in raw mode and run the engine on stdin and stdout until exit or end of input.`,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runShell(cmd, v, opts)
			},
		},
		&cobra.Command{
			Use:   "replay <transcript.yaml>",
			Short: "Replay a keystroke transcript and compare the screen",
			Long: `Type every case of a transcript into a fresh engine set up from the
manifest and compare the rendered screen with the expected text.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runReplay(cmd, v, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "size",
			Short: "Print the backing region size for the configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSize(cmd, v, opts)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetDetailedVersion())
			},
		},
	)
	return rootCmd
}

// initConfig loads the .env file and configures logging before any command
// runs, so ECLI_LOG_LEVEL may come from either place.
func initConfig(opts *options) error {
	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return err
	}
	if err := logger.Configure(opts.logLevel, opts.logFile, opts.testMode); err != nil {
		return fmt.Errorf("error configuring logger: %w", err)
	}
	return nil
}

// loadSettings reads the effective settings and the manifest they name.
func loadSettings(v *viper.Viper, opts *options) (*config.Settings, *manifest.Manifest, error) {
	settings, err := config.Load(v, opts.configFile)
	if err != nil {
		return nil, nil, err
	}
	m, err := manifest.Load(settings.Manifest)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Settings loaded", "manifest", m.Name, "commands", len(m.Commands), "tick", settings.Tick)
	return settings, m, nil
}

func runSize(cmd *cobra.Command, v *viper.Viper, opts *options) error {
	settings, err := config.Load(v, opts.configFile)
	if err != nil {
		return err
	}
	cfg := settings.EngineConfig()
	cfg.Buffer = nil
	fmt.Fprintf(cmd.OutOrStdout(), "%d\n", embeddedcli.RequiredSize(cfg))
	return nil
}
