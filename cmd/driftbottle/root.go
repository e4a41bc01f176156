// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emptylab Contributors

package main

import (
	"errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/emptylab/driftbottle/internal/config"
	drifterr "github.com/emptylab/driftbottle/pkg/errors"
)

// NewRootCmd creates the root driftbottle command with all subcommands
// registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "driftbottle",
		Short:         "driftbottle — anonymous story archive with similarity retrieval",
		Long:          "Driftbottle stores anonymous stories as embeddings and serves a chat agent that surfaces similar experiences.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initViper(cmd)
		},
	}

	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(
		newStartCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly. A .env file in
// the working directory is loaded first so DRIFT_ variables defined
// there behave like real environment variables.
func initViper(cmd *cobra.Command) error {
	// Missing .env is fine; a malformed one is not worth failing startup over.
	_ = godotenv.Load()

	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return drifterr.Errorf(drifterr.CodeConfigReadFailure, "reading config file: %w", err)
		}
	} else {
		v.SetConfigName("driftbottle")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/driftbottle")
		v.AddConfigPath("/etc/driftbottle")
		// No config file is fine; defaults and env vars still apply.
		// Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return drifterr.Errorf(drifterr.CodeConfigReadFailure, "reading config: %w", err)
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return drifterr.Errorf(drifterr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	return nil
}
