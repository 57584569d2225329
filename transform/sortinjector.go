package transform

import (
	"fmt"
	"sort"

	"github.com/sqlkit-go/sqlkit/ast"
)

// SortOption is one ORDER BY entry requested through SortInjector.
type SortOption struct {
	Asc        bool
	Desc       bool
	NullsFirst bool
	NullsLast  bool
}

func (s SortOption) validate() error {
	if s.Asc && s.Desc {
		return fmt.Errorf("%w: asc and desc both set", ErrSortConflict)
	}
	if s.NullsFirst && s.NullsLast {
		return fmt.Errorf("%w: nullsFirst and nullsLast both set", ErrSortConflict)
	}
	if !s.Asc && !s.Desc && !s.NullsFirst && !s.NullsLast {
		return ErrEmptySortOption
	}
	return nil
}

// SortInjector appends ORDER BY entries built from a column->SortOption
// mapping.
type SortInjector struct {
	Resolver TableColumnResolver
}

// Inject appends one OrderItem per entry, in ascending key order
// (Go maps don't preserve insertion order, so keys are sorted).
func (si SortInjector) Inject(query ast.Query, sortSpec map[string]SortOption) (*ast.SimpleQuery, error) {
	q, ok := query.(*ast.SimpleQuery)
	if !ok {
		return nil, ErrNotSimpleSelect
	}
	projected := projectedColumns(q, si.Resolver)
	projSet := map[string]bool{}
	for _, c := range projected {
		if c != "" {
			projSet[c] = true
		}
	}

	keys := make([]string, 0, len(sortSpec))
	for k := range sortSpec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var items []ast.OrderItem
	for _, col := range keys {
		opt := sortSpec[col]
		if err := opt.validate(); err != nil {
			return nil, err
		}
		if !projSet[col] {
			if si.Resolver == nil {
				return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, col)
			}
		}
		item := ast.OrderItem{Expr: colRef(col)}
		switch {
		case opt.Asc:
			item.Direction = ast.DirAsc
		case opt.Desc:
			item.Direction = ast.DirDesc
		}
		switch {
		case opt.NullsFirst:
			item.Nulls = ast.NullsFirst
		case opt.NullsLast:
			item.Nulls = ast.NullsLast
		}
		items = append(items, item)
	}

	if q.OrderBy == nil {
		q.OrderBy = &ast.OrderByClause{}
	}
	q.OrderBy.Items = append(q.OrderBy.Items, items...)
	return q, nil
}

// RemoveOrderBy returns q with its ORDER BY clause stripped. Comments
// attached to the removed clause are discarded.
func RemoveOrderBy(q ast.Query) ast.Query {
	switch v := q.(type) {
	case *ast.SimpleQuery:
		v.OrderBy = nil
	case *ast.BinaryQuery:
		v.OrderBy = nil
	}
	return q
}
