// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/polychat/internal/config"
)

func newConfigCommand(global *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
		Long:  `Show, locate and create the polychat configuration file.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (API keys redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			if cfg.LoadedFrom != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", cfg.LoadedFrom)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "# built-in defaults")
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file polychat reads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configTarget(global)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (not present)\n", path)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := global.configPath
			if path == "" {
				var err error
				if path, err = config.ConfigPathTOML(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.SaveTOML(config.Default(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	cmd.AddCommand(initCmd)

	return cmd
}

// configTarget returns the file that would be loaded: the --config path,
// else the first existing candidate, else the TOML path.
func configTarget(global *globalOptions) (string, error) {
	if global.configPath != "" {
		return global.configPath, nil
	}
	paths, err := config.CandidatePaths()
	if err != nil {
		return "", err
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return paths[0], nil
}
