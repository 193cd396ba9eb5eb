// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package subsetsum enumerates the subsets of an integer list that add up
// to a target value.
//
// # Description
//
// Two strategies share one matching and result-shaping path:
//
//   - SplitSign (default): partitions the input into positive, negative and
//     zero elements, enumerates each sign partition independently and
//     cross-checks the two much smaller result sets against the target.
//     Zero elements are folded into every match afterwards.
//   - Naive: walks the full powerset with a bitmask counter. It is kept as a
//     reference oracle and must not be used for large inputs.
//
// Subsets are generated by Enumerator, which walks every size k in 0..n and,
// for each k, every k-combination of positions in lexicographic order using
// an explicit carry step over a position index.
//
// # Results
//
// Calculate returns a Result. When no subset matches, Result.Matches is nil
// and Result.Found reports false; this is not an error. Every match carries
// the indices it was drawn from and lists its elements in input order.
//
// # Limits
//
// Enumeration is exponential. Limits bound the work: oversized inputs fail
// with ErrInputTooLarge before any enumeration starts, and exhausting the
// iteration budget, the match cap or the context fails with ErrAborted.
// Neither case returns a partial result.
//
// # Thread Safety
//
// All state is scoped to a single call. Concurrent calls are safe.
//
// # Examples
//
//	res, err := subsetsum.Calculate(ctx, []int{-2, 3, -1, 4}, 1)
//	if err != nil {
//	    return err
//	}
//	for _, m := range res.Matches {
//	    fmt.Println(m.Elements, m.Sum)
//	}
package subsetsum
