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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/AleutianAI/SubsetSum/pkg/ux"
	"github.com/AleutianAI/SubsetSum/services/solver/datatypes"
	"github.com/AleutianAI/SubsetSum/services/solver/middleware"
	"github.com/spf13/cobra"
)

// defaultServerURL matches the solver's default port.
const defaultServerURL = "http://localhost:9001"

type queryOptions struct {
	server   string
	apiKey   string
	list     string
	target   int
	strategy string
	jsonOut  bool
	timeout  time.Duration
}

func newQueryCmd() *cobra.Command {
	opts := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query [integers...]",
		Short: "Send a subset-sum request to a running solver",
		Long: `Query posts the list and target to POST /v1/subsets on a running solver
and prints the response.

  subsetsum query --server http://localhost:9001 --target 5 1 2 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readList(opts.list, args)
			if err != nil {
				return err
			}
			return runQuery(cmd.Context(), cmd.OutOrStdout(), values, opts)
		},
	}

	cmd.Flags().StringVar(&opts.server, "server", defaultServerURL, "Solver base URL")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", "", "API key sent as "+middleware.APIKeyHeader)
	cmd.Flags().StringVar(&opts.list, "list", "", "Comma or space separated integers")
	cmd.Flags().IntVarP(&opts.target, "target", "t", 0, "Target sum")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", "", "Strategy: split_sign or naive")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the raw JSON response")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "HTTP request timeout")
	return cmd
}

// runQuery posts one request and renders the response.
func runQuery(ctx context.Context, out io.Writer, values []int, opts *queryOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	target := opts.target
	body, err := json.Marshal(datatypes.SubsetRequest{
		List:     values,
		Target:   &target,
		Strategy: opts.strategy,
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(opts.server, "/") + "/v1/subsets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if opts.apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, opts.apiKey)
	}

	client := &http.Client{Timeout: opts.timeout}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach solver at %s: %w", opts.server, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	slog.Debug("query completed",
		"status", resp.StatusCode,
		"request_id", resp.Header.Get(middleware.RequestIDHeader),
		"elapsed", time.Since(start).String(),
	)

	if resp.StatusCode != http.StatusOK {
		var errResp datatypes.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			if errResp.Details != "" {
				return fmt.Errorf("solver returned %d: %s: %s", resp.StatusCode, errResp.Error, errResp.Details)
			}
			return fmt.Errorf("solver returned %d: %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("solver returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	if opts.jsonOut {
		_, err := out.Write(append(bytes.TrimSpace(raw), '\n'))
		return err
	}

	var result datatypes.SubsetResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	printResult(ux.NewPrinter(out), values, opts.target, fromResponse(result),
		time.Duration(result.Stats.DurationMs)*time.Millisecond)
	return nil
}

// fromResponse rebuilds a core result from its wire form for rendering.
func fromResponse(resp datatypes.SubsetResponse) subsetsum.Result {
	res := subsetsum.Result{
		Strategy: subsetsum.StrategyName(resp.Strategy),
		Stats: subsetsum.Stats{
			Elements:        resp.Stats.Elements,
			PositiveSubsets: resp.Stats.PositiveSubsets,
			NegativeSubsets: resp.Stats.NegativeSubsets,
			ZeroSubsets:     resp.Stats.ZeroSubsets,
			Iterations:      resp.Stats.Iterations,
		},
	}
	for _, m := range resp.Matches {
		res.Matches = append(res.Matches, subsetsum.SubsetSum{
			Elements: m.Subset,
			Indices:  m.Indices,
			Sum:      m.Sum,
		})
	}
	return res
}
