// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command solver runs the subset-sum HTTP service configured from the
// environment (and SOLVER_CONFIG, an optional YAML file).
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/SubsetSum/pkg/extensions"
	"github.com/AleutianAI/SubsetSum/pkg/logging"
	"github.com/AleutianAI/SubsetSum/services/solver"
)

func main() {
	level, err := logging.ParseLevel(getEnvString("SOLVER_LOG_LEVEL", "info"))
	if err != nil {
		log.Fatalf("Invalid SOLVER_LOG_LEVEL: %v", err)
	}
	logger := logging.New(logging.Config{
		Level:   level,
		Service: "solver",
		JSON:    true,
		LogDir:  os.Getenv("SOLVER_LOG_DIR"),
		Output:  os.Stdout,
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	cfg, err := solver.LoadConfig(os.Getenv("SOLVER_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load solver config: %v", err)
	}

	slog.Info("Starting solver",
		"port", cfg.Port,
		"parallel", cfg.Parallel,
		"cache", cfg.Cache.Enabled,
		"auth", len(cfg.APIKeys) > 0,
	)

	opts := extensions.DefaultOptions().WithAudit(extensions.NewSlogAuditLogger(logger.Slog()))
	if len(cfg.APIKeys) > 0 {
		opts = opts.WithAuth(extensions.NewAPIKeyProvider(cfg.APIKeys))
	}

	svc, err := solver.New(cfg, &opts)
	if err != nil {
		log.Fatalf("Failed to create solver: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil {
		slog.Error("Solver error", "error", err)
		os.Exit(1)
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
