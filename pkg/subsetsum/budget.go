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
	"sync/atomic"
)

// ctxCheckInterval is how many steps pass between context checks.
const ctxCheckInterval = 1024

// budget counts work across one calculation. step is safe for concurrent
// use so both partitions can draw from the same budget.
type budget struct {
	limit uint64
	used  atomic.Uint64
}

func newBudget(limit uint64) *budget {
	return &budget{limit: limit}
}

// step consumes one unit of work.
func (b *budget) step(ctx context.Context) error {
	n := b.used.Add(1)
	if b.limit > 0 && n > b.limit {
		return &AbortError{Reason: AbortIterationBudget, Iterations: n}
	}
	if n%ctxCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			return &AbortError{Reason: AbortCanceled, Iterations: n, Err: err}
		}
	}
	return nil
}

func (b *budget) iterations() uint64 {
	return b.used.Load()
}

// checkContext reports a context that is already done as an abort.
func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &AbortError{Reason: AbortCanceled, Err: err}
	}
	return nil
}
