// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tonguedex Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the tonguedex CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tonguedex",
		Short: "Tonguedex - mother tongue catalog service",
		Long: `Tonguedex hosts the auth, session, and catalog-search core
behind the mother tongue catalog site.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (defaults to $XDG_CONFIG_HOME/tonguedex/config.yaml when present)")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
