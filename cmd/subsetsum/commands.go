// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/SubsetSum/pkg/logging"
	"github.com/AleutianAI/SubsetSum/pkg/validation"
	"github.com/spf13/cobra"
)

var rootCmd = newRootCmd()

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logDir     string
	logger     *logging.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "subsetsum",
		Short: "Find every subset of a list of integers that sums to a target",
		Long: `subsetsum enumerates all subsets of an integer list whose sum equals a
target value. Lists are split by sign, each partition is enumerated once,
and positive and negative subsets are paired against the target.

Solve locally with "solve", run the HTTP service with "serve", or send a
list to a running service with "query".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a solver YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn",
		"Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logDir, "log-dir", "",
		"Directory for log files (stderr only when empty)")

	cmd.AddCommand(newSolveCmd())
	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newQueryCmd())
	return cmd
}

// setupLogging installs the process-wide slog logger. Logs go to stderr so
// stdout stays machine-readable.
func (o *rootOptions) setupLogging(cmd *cobra.Command) error {
	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	o.logger = logging.New(logging.Config{
		Level:   level,
		Service: "subsetsum",
		LogDir:  o.logDir,
		Output:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(o.logger.Slog())
	return nil
}

// readList merges the --list flag and positional arguments into one list.
func readList(listFlag string, args []string) ([]int, error) {
	raw := strings.TrimSpace(listFlag + " " + strings.Join(args, " "))
	if raw == "" {
		return nil, fmt.Errorf("no list given: pass integers as arguments or with --list")
	}
	return validation.ParseIntList(raw)
}
