package transform

import (
	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/param"
)

// PaginationInjector emits LIMIT/OFFSET parameter markers sized from a
// page number and page size. OFFSET is always emitted,
// even for page 1, for cache-key stability.
type PaginationInjector struct{}

// Inject rejects queries that already carry LIMIT or OFFSET, and
// validates 1 <= page, 1 <= pageSize <= 1000.
func (PaginationInjector) Inject(query ast.Query, page, pageSize int) (*ast.SimpleQuery, param.Map, error) {
	q, ok := query.(*ast.SimpleQuery)
	if !ok {
		return nil, nil, ErrNotSimpleSelect
	}
	if q.Limit != nil || q.Offset != nil {
		return nil, nil, ErrAlreadyPaginated
	}
	if page < 1 {
		return nil, nil, ErrInvalidPage
	}
	if pageSize < 1 || pageSize > 1000 {
		return nil, nil, ErrInvalidPageSize
	}

	offset := (page - 1) * pageSize
	q.Limit = &ast.LimitClause{Count: paramNode("paging_limit")}
	q.Offset = &ast.OffsetClause{Count: paramNode("paging_offset")}

	return q, param.Map{
		"paging_limit":  param.Int64(int64(pageSize)),
		"paging_offset": param.Int64(int64(offset)),
	}, nil
}

// RemovePagination strips both LIMIT and OFFSET clauses, discarding any
// comments attached to them.
func RemovePagination(q ast.Query) ast.Query {
	switch v := q.(type) {
	case *ast.SimpleQuery:
		v.Limit = nil
		v.Offset = nil
	case *ast.BinaryQuery:
		v.Limit = nil
		v.Offset = nil
	}
	return q
}
