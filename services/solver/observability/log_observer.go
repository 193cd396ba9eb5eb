// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/SubsetSum/pkg/subsetsum"
)

// LogObserver writes calculation events to a slog.Logger. Progress goes
// out at Debug, failures at Warn.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver returns an observer logging to logger, or to
// slog.Default() when logger is nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger}
}

func (o *LogObserver) Partitioned(ctx context.Context, positives, negatives, zeros int) {
	o.logger.DebugContext(ctx, "input partitioned",
		slog.Int("positives", positives),
		slog.Int("negatives", negatives),
		slog.Int("zeros", zeros))
}

func (o *LogObserver) Enumerated(ctx context.Context, kind subsetsum.PartitionKind, subsets int, elapsed time.Duration) {
	o.logger.DebugContext(ctx, "partition enumerated",
		slog.String("partition", string(kind)),
		slog.Int("subsets", subsets),
		slog.Duration("elapsed", elapsed))
}

func (o *LogObserver) Completed(ctx context.Context, strategy subsetsum.StrategyName, matches int, elapsed time.Duration) {
	o.logger.DebugContext(ctx, "calculation completed",
		slog.String("strategy", string(strategy)),
		slog.Int("matches", matches),
		slog.Duration("elapsed", elapsed))
}

func (o *LogObserver) Failed(ctx context.Context, strategy subsetsum.StrategyName, err error) {
	o.logger.WarnContext(ctx, "calculation failed",
		slog.String("strategy", string(strategy)),
		slog.String("error", err.Error()))
}

var _ subsetsum.Observer = (*LogObserver)(nil)
