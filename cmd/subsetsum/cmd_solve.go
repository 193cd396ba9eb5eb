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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
	"github.com/AleutianAI/SubsetSum/pkg/ux"
	"github.com/AleutianAI/SubsetSum/pkg/validation"
	"github.com/AleutianAI/SubsetSum/services/solver/datatypes"
	"github.com/AleutianAI/SubsetSum/services/solver/observability"
	"github.com/spf13/cobra"
)

type solveOptions struct {
	list     string
	target   int
	strategy string
	parallel bool
	jsonOut  bool
	timeout  time.Duration
}

func newSolveCmd() *cobra.Command {
	opts := &solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve [integers...]",
		Short: "Solve a subset-sum problem locally",
		Long: `Solve finds every subset of the given integers that sums to --target.

Integers may be passed as arguments or with --list. Use --list (or "--")
when the list contains negative numbers:

  subsetsum solve --target 5 1 2 3 4
  subsetsum solve --target 1 --list "-2, 3, -1, 4"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := readList(opts.list, args)
			if err != nil {
				return err
			}
			return runSolve(cmd.Context(), cmd.OutOrStdout(), values, opts)
		},
	}

	cmd.Flags().StringVar(&opts.list, "list", "", "Comma or space separated integers")
	cmd.Flags().IntVarP(&opts.target, "target", "t", 0, "Target sum")
	cmd.Flags().StringVarP(&opts.strategy, "strategy", "s", string(subsetsum.StrategySplitSign),
		"Strategy: split_sign or naive")
	cmd.Flags().BoolVar(&opts.parallel, "parallel", false, "Enumerate sign partitions concurrently")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the calculation after this long (0 = no limit)")
	return cmd
}

// runSolve validates the input, runs the selected strategy and prints the
// result to out.
func runSolve(ctx context.Context, out io.Writer, values []int, opts *solveOptions) error {
	if err := validation.ValidateList(values, opts.target, validation.MaxListLength); err != nil {
		return err
	}

	strategy, err := subsetsum.StrategyByName(subsetsum.StrategyName(opts.strategy),
		subsetsum.WithLimits(subsetsum.DefaultLimits()),
		subsetsum.WithParallel(opts.parallel),
		subsetsum.WithObserver(observability.NewLogObserver(slog.Default())),
	)
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := strategy.Solve(ctx, values, opts.target)
	elapsed := time.Since(start)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		return writeJSON(out, newSolveResponse(res, elapsed))
	}
	printResult(ux.NewPrinter(out), values, opts.target, res, elapsed)
	return nil
}

func newSolveResponse(res subsetsum.Result, elapsed time.Duration) datatypes.SubsetResponse {
	resp := datatypes.SubsetResponse{
		Status:   datatypes.StatusNoMatch,
		Strategy: string(res.Strategy),
		Stats:    datatypes.NewStats(res.Stats),
	}
	resp.Stats.DurationMs = elapsed.Milliseconds()
	if res.Found() {
		resp.Status = datatypes.StatusMatched
		resp.Matches = datatypes.NewMatches(res.Matches)
	} else {
		resp.Message = datatypes.NoMatchMessage
	}
	return resp
}

func printResult(p *ux.Printer, values []int, target int, res subsetsum.Result, elapsed time.Duration) {
	p.Title("Subset Sum")
	p.Box("Input", fmt.Sprintf("list %s  target %d", ux.FormatInts(values), target))
	if !res.Found() {
		p.Warning(datatypes.NoMatchMessage)
		return
	}
	p.Success(fmt.Sprintf("%d matching subsets", len(res.Matches)))
	p.Matches(res.Matches)
	p.Summary(res, elapsed)
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
