package transform

import (
	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/param"
	"github.com/sqlkit-go/sqlkit/visitor"
)

// Paging is the page/pageSize pair PaginationInjector expects.
type Paging struct {
	Page     int
	PageSize int
}

// DynamicQueryBuilder composes ParamInjector, SortInjector, and
// PaginationInjector into one call. Filter keys that name
// a pre-existing named parameter already present in the query (e.g.
// `:ym`) are bound directly with no WHERE-clause addition; only keys
// that match a projected column create a new predicate.
type DynamicQueryBuilder struct {
	Resolver TableColumnResolver
}

// Build applies filter (ParamInjector state, plus pre-bound parameter
// passthrough), sort (SortInjector state), and paging (PaginationInjector),
// in that order, and returns the combined parameter bindings.
func (b DynamicQueryBuilder) Build(query ast.Query, filter map[string]FilterValue, sortSpec map[string]SortOption, paging *Paging) (*ast.SimpleQuery, param.Map, error) {
	q, ok := query.(*ast.SimpleQuery)
	if !ok {
		return nil, nil, ErrNotSimpleSelect
	}
	bindings := param.Map{}

	existingParams := map[string]bool{}
	for _, name := range existingParameterNames(q) {
		existingParams[name] = true
	}

	projected := projectedColumns(q, b.Resolver)
	projSet := map[string]bool{}
	for _, c := range projected {
		if c != "" {
			projSet[c] = true
		}
	}

	predicateState := map[string]FilterValue{}
	for key, fv := range filter {
		if fv.Undefined {
			continue
		}
		if existingParams[key] && !projSet[key] {
			if fv.Scalar != nil {
				bindings[key] = *fv.Scalar
			}
			continue
		}
		predicateState[key] = fv
	}

	if len(predicateState) > 0 {
		injected, pb, err := (ParamInjector{Resolver: b.Resolver}).Inject(q, predicateState, true)
		if err != nil {
			return nil, nil, err
		}
		q = injected
		for k, v := range pb {
			bindings[k] = v
		}
	}

	if len(sortSpec) > 0 {
		sorted, err := (SortInjector{Resolver: b.Resolver}).Inject(q, sortSpec)
		if err != nil {
			return nil, nil, err
		}
		q = sorted
	}

	if paging != nil {
		paged, pb, err := (PaginationInjector{}).Inject(q, paging.Page, paging.PageSize)
		if err != nil {
			return nil, nil, err
		}
		q = paged
		for k, v := range pb {
			bindings[k] = v
		}
	}

	return q, bindings, nil
}

func existingParameterNames(q *ast.SimpleQuery) []string {
	var names []string
	seen := map[string]bool{}
	visitor.Visit(q, func(n ast.Node) {
		if p, ok := n.(*ast.Parameter); ok && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	})
	return names
}
