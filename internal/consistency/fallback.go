// Package consistency holds the read policy for the eventually consistent
// store: an empty filtered read is not trusted, the query is repeated once
// with a relaxed filter and the strict predicate is applied in memory.
package consistency

import "context"

type QueryFunc[F, T any] func(ctx context.Context, filter F) ([]T, error)

// Relax returns a broader filter, or false when there is nothing to relax.
type Relax[F any] func(filter F) (F, bool)

type Result[T any] struct {
	Rows     []T
	Relaxed  bool
	Attempts int
}

// WithFallback runs query with filter and, when it yields no rows, once more
// with relax(filter), keeping only rows that satisfy keep.
func WithFallback[F, T any](ctx context.Context, filter F, query QueryFunc[F, T], relax Relax[F], keep func(T) bool) (Result[T], error) {
	rows, err := query(ctx, filter)
	if err != nil {
		return Result[T]{Attempts: 1}, err
	}
	if len(rows) > 0 || relax == nil {
		return Result[T]{Rows: rows, Attempts: 1}, nil
	}

	broader, ok := relax(filter)
	if !ok {
		return Result[T]{Rows: rows, Attempts: 1}, nil
	}
	wide, err := query(ctx, broader)
	if err != nil {
		return Result[T]{Attempts: 2, Relaxed: true}, err
	}
	kept := make([]T, 0, len(wide))
	for _, row := range wide {
		if keep == nil || keep(row) {
			kept = append(kept, row)
		}
	}
	return Result[T]{Rows: kept, Relaxed: true, Attempts: 2}, nil
}
