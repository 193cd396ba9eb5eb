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
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/services/solver"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the solver HTTP service",
		Long: `Serve runs the solver HTTP service until interrupted.

Configuration comes from --config (YAML) and SOLVER_* environment
variables; --port overrides both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := solver.LoadConfig(root.configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			opts := extensions.DefaultOptions().WithAudit(extensions.NewSlogAuditLogger(slog.Default()))
			if len(cfg.APIKeys) > 0 {
				opts = opts.WithAuth(extensions.NewAPIKeyProvider(cfg.APIKeys))
			}

			svc, err := solver.New(cfg, &opts)
			if err != nil {
				return fmt.Errorf("failed to create solver: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Solver listening on :%d\n", cfg.Port)
			return svc.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", solver.DefaultPort, "Port to listen on")
	return cmd
}
