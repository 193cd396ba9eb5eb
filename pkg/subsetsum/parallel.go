// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package subsetsum

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// enumerateConcurrently enumerates the positive and negative partitions on
// two goroutines sharing one budget. Each goroutine writes only its own
// slice, so the merged output is identical to the sequential path. The
// first failure cancels the other side.
func enumerateConcurrently(ctx context.Context, parts Partitions, b *budget, obs Observer) (positives, negatives []SubsetSum, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		positives, err = enumeratePartition(gctx, PartitionPositive, parts.Positives, b, obs)
		return err
	})
	g.Go(func() error {
		var err error
		negatives, err = enumeratePartition(gctx, PartitionNegative, parts.Negatives, b, obs)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return positives, negatives, nil
}
