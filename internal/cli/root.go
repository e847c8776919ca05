// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jeranaias/polychat/internal/config"
	"github.com/jeranaias/polychat/internal/logging"
	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/ui/chat"
	"github.com/jeranaias/polychat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// errSilent marks a failure that has already been reported to the user.
var errSilent = errors.New("silent failure")

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	provider   string
	logLevel   string
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "polychat",
		Short: "Terminal chat over Groq, LM Studio and Gemini",
		Long: `polychat is a terminal chat client for three LLM backends:

  cloud       Groq (OpenAI-compatible API, GROQ_API_KEY)
  local       LM Studio on http://localhost:1234
  generative  Gemini 2.0 Flash (GEMINI_API_KEY)

Run without arguments to open the chat TUI.

Examples:
  polychat
  polychat --provider local
  polychat ask "What is a CSRF token?"
  git diff | polychat ask --raw
  polychat status`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.polychat/config.toml)")
	root.PersistentFlags().StringVar(&opts.provider, "provider", "", "backend: cloud, local or generative")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")

	root.AddCommand(newAskCommand(opts))
	root.AddCommand(newStatusCommand(opts))
	root.AddCommand(newConfigCommand(opts))
	root.AddCommand(newVersionCommand())
	return root
}

// loadConfig reads the configuration and applies flag overrides.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromPath(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.provider != "" {
		id, err := model.ParseProvider(opts.provider)
		if err != nil {
			return nil, fmt.Errorf("--provider: %w", err)
		}
		cfg.Chat.Provider = id
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("--log-level: %w", err)
		}
	}
	return cfg, nil
}

func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	// Log lines on the terminal would corrupt the screen.
	log, closer, err := logging.FromConfig(cfg.Log, io.Discard)
	if err != nil {
		return err
	}
	defer closer.Close()

	reg, closeBackends := buildRegistry(cfg, log)
	defer closeBackends()

	mgr, err := newManager(cfg, reg, log)
	if err != nil {
		return err
	}

	log.Info().
		Str("provider", cfg.Chat.Provider.String()).
		Str("config", cfg.LoadedFrom).
		Msg("starting tui")

	runOpts := chat.RunOptions{
		Options: chat.Options{
			Manager:        mgr,
			Theme:          styles.NewTheme(),
			Markdown:       cfg.UI.Markdown,
			ShowTimestamps: cfg.UI.ShowTimestamps,
			Logger:         &log,
		},
	}
	if cfg.UI.WatchConfig {
		runOpts.WatchPath = cfg.LoadedFrom
	}
	return chat.Run(cmd.Context(), runOpts)
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "polychat version %s\n", Version)
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
		},
	}
}
