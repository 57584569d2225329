package transform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/param"
)

// Op enumerates the operators a Condition may apply.
type Op string

const (
	OpEq    Op = "="
	OpNotEq Op = "!="
	OpLt    Op = "<"
	OpLtEq  Op = "<="
	OpGt    Op = ">"
	OpGtEq  Op = ">="
	OpMin   Op = "min"
	OpMax   Op = "max"
	OpLike  Op = "like"
	OpILike Op = "ilike"
	OpIn    Op = "in"
)

// Condition is one predicate-shaping operator object: `{ op: value }`.
type Condition struct {
	Op     Op
	Value  param.Value
	Values []param.Value // only for OpIn
}

// FilterValue is one entry of ParamInjector's state mapping: a plain
// value (shorthand for "="), a single Condition, a compound `{or:[...]}`
// group, or explicit `undefined`.
type FilterValue struct {
	Scalar    *param.Value
	Cond      *Condition
	Or        []Condition
	Undefined bool
}

func Eq(v param.Value) FilterValue       { return FilterValue{Scalar: &v} }
func Cond(c Condition) FilterValue       { return FilterValue{Cond: &c} }
func OrGroup(conds ...Condition) FilterValue { return FilterValue{Or: conds} }
func Undefined() FilterValue             { return FilterValue{Undefined: true} }

// ParamInjector builds WHERE predicates from a column->value/condition
// state mapping and conjoins them onto an existing query.
type ParamInjector struct {
	Resolver TableColumnResolver
}

// Inject resolves each state entry against the query's projection and
// real table columns, builds a predicate, and conjoins it to WHERE with
// AND. It returns the rewritten query and the parameter bindings the
// new predicates introduced.
func (pi ParamInjector) Inject(query ast.Query, state map[string]FilterValue, allowAllUndefined bool) (*ast.SimpleQuery, param.Map, error) {
	q, ok := query.(*ast.SimpleQuery)
	if !ok {
		return nil, nil, ErrNotSimpleSelect
	}
	if allAllUndefined(state) && !allowAllUndefined {
		return nil, nil, ErrAllParametersUndefined
	}

	projected := projectedColumns(q, pi.Resolver)
	projSet := map[string]bool{}
	for _, c := range projected {
		if c != "" {
			projSet[c] = true
		}
	}
	realTables := realTableNames(q)
	aliases := aliasNames(q)

	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	bindings := param.Map{}
	var newPreds []ast.Expr

	for _, key := range keys {
		fv := state[key]
		if fv.Undefined {
			continue
		}
		col, err := resolveStateKey(key, projSet, realTables, aliases, pi.Resolver)
		if err != nil {
			return nil, nil, err
		}
		pred, b, err := buildPredicate(col, fv)
		if err != nil {
			return nil, nil, err
		}
		newPreds = append(newPreds, pred)
		for k, v := range b {
			bindings[k] = v
		}
	}

	if len(newPreds) == 0 {
		return q, bindings, nil
	}
	q.Where = &ast.WhereClause{Predicate: conjoin(whereExpr(q), newPreds)}
	return q, bindings, nil
}

func allAllUndefined(state map[string]FilterValue) bool {
	if len(state) == 0 {
		return false
	}
	for _, v := range state {
		if !v.Undefined {
			return false
		}
	}
	return true
}

func whereExpr(q *ast.SimpleQuery) ast.Expr {
	if q.Where == nil {
		return nil
	}
	return q.Where.Predicate
}

// conjoin folds existing onto the front of the added predicate list
// with AND.
func conjoin(existing ast.Expr, added []ast.Expr) ast.Expr {
	all := added
	if existing != nil {
		all = append([]ast.Expr{existing}, added...)
	}
	result := all[0]
	for _, e := range all[1:] {
		result = &ast.BinaryExpr{Left: result, Op: ast.OpAnd, Right: e}
	}
	return result
}

// resolveStateKey validates and splits a state key into its bare column
// name. Qualified keys (table.col) must name a real table, never an
// alias.
func resolveStateKey(key string, projSet map[string]bool, realTables, aliases map[string]bool, resolver TableColumnResolver) (string, error) {
	if idx := strings.LastIndex(key, "."); idx >= 0 {
		table, col := key[:idx], key[idx+1:]
		if aliases[table] && !realTables[table] {
			return "", fmt.Errorf("%w: %q", ErrAliasKeyedColumn, key)
		}
		if !realTables[table] {
			return "", fmt.Errorf("%w: %q", ErrUnknownColumn, key)
		}
		if resolver != nil {
			cols := resolver(table)
			found := false
			for _, c := range cols {
				if c == col {
					found = true
					break
				}
			}
			if !found && len(cols) > 0 {
				return "", fmt.Errorf("%w: %q", ErrUnknownColumn, key)
			}
		}
		return col, nil
	}
	if projSet[key] {
		return key, nil
	}
	if resolver == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, key)
	}
	return key, nil
}

func colRef(name string) ast.Expr {
	return &ast.ColumnReference{Qualified: ast.QualifiedName{Name: ast.Identifier{Name: name}}}
}

func paramNode(name string) *ast.Parameter {
	return &ast.Parameter{Name: name}
}

func buildPredicate(col string, fv FilterValue) (ast.Expr, param.Map, error) {
	bindings := param.Map{}
	switch {
	case fv.Scalar != nil:
		bindings[col] = *fv.Scalar
		return &ast.BinaryExpr{Left: colRef(col), Op: ast.OpEq, Right: paramNode(col)}, bindings, nil
	case fv.Cond != nil:
		return buildCondition(col, col, *fv.Cond, bindings)
	case len(fv.Or) > 0:
		var parts []ast.Expr
		for i, c := range fv.Or {
			name := fmt.Sprintf("%s_or_%d_%s", col, i, opSuffix(c.Op))
			e, _, err := buildCondition(col, name, c, bindings)
			if err != nil {
				return nil, nil, err
			}
			parts = append(parts, e)
		}
		result := parts[0]
		for _, e := range parts[1:] {
			result = &ast.BinaryExpr{Left: result, Op: ast.OpOr, Right: e}
		}
		return result, bindings, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q has no value", ErrUnknownColumn, col)
	}
}

func opSuffix(op Op) string {
	switch op {
	case OpEq:
		return "eq"
	case OpNotEq:
		return "ne"
	case OpLt:
		return "lt"
	case OpLtEq:
		return "lte"
	case OpGt:
		return "gt"
	case OpGtEq:
		return "gte"
	default:
		return string(op)
	}
}

func buildCondition(col, paramName string, c Condition, bindings param.Map) (ast.Expr, param.Map, error) {
	switch c.Op {
	case OpEq:
		bindings[paramName] = c.Value
		return &ast.BinaryExpr{Left: colRef(col), Op: ast.OpEq, Right: paramNode(paramName)}, bindings, nil
	case OpNotEq:
		bindings[paramName] = c.Value
		return &ast.BinaryExpr{Left: colRef(col), Op: ast.OpNotEq, Right: paramNode(paramName)}, bindings, nil
	case OpLt:
		bindings[paramName] = c.Value
		return &ast.BinaryExpr{Left: colRef(col), Op: ast.OpLt, Right: paramNode(paramName)}, bindings, nil
	case OpLtEq, OpMax:
		bindings[paramName] = c.Value
		return &ast.BinaryExpr{Left: colRef(col), Op: ast.OpLtEq, Right: paramNode(paramName)}, bindings, nil
	case OpGt:
		bindings[paramName] = c.Value
		return &ast.BinaryExpr{Left: colRef(col), Op: ast.OpGt, Right: paramNode(paramName)}, bindings, nil
	case OpGtEq, OpMin:
		bindings[paramName] = c.Value
		return &ast.BinaryExpr{Left: colRef(col), Op: ast.OpGtEq, Right: paramNode(paramName)}, bindings, nil
	case OpLike:
		bindings[paramName] = c.Value
		return &ast.LikeExpr{Input: colRef(col), Pattern: paramNode(paramName)}, bindings, nil
	case OpILike:
		bindings[paramName] = c.Value
		return &ast.LikeExpr{Input: colRef(col), Pattern: paramNode(paramName), CaseInsensitive: true}, bindings, nil
	case OpIn:
		var list []ast.Expr
		for i, v := range c.Values {
			name := fmt.Sprintf("%s_in_%d", paramName, i)
			bindings[name] = v
			list = append(list, paramNode(name))
		}
		return &ast.InExpr{Input: colRef(col), List: list}, bindings, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown operator %q", ErrUnknownColumn, c.Op)
	}
}
