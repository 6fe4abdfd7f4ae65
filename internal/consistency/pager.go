package consistency

import "context"

const defaultPageSize = 250

// Pager reads a filter page by page until a short page comes back or MaxRows
// rows have been collected. Truncated reports whether the last All call
// stopped at MaxRows with more rows possibly left.
type Pager[F, T any] struct {
	Query    QueryFunc[F, T]
	Page     func(filter F, limit, offset int) F
	PageSize int
	MaxRows  int

	Truncated bool
}

// All has the QueryFunc shape so it can be handed to WithFallback.
func (p *Pager[F, T]) All(ctx context.Context, filter F) ([]T, error) {
	p.Truncated = false
	size := p.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	var out []T
	for offset := 0; ; offset += size {
		limit := size
		if p.MaxRows > 0 && p.MaxRows-len(out) < limit {
			limit = p.MaxRows - len(out)
		}
		rows, err := p.Query(ctx, p.Page(filter, limit, offset))
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) < limit {
			return out, nil
		}
		if p.MaxRows > 0 && len(out) >= p.MaxRows {
			p.Truncated = true
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}
