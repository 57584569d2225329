// Package transform implements sqlkit's tree-rewriting passes: dynamic
// predicate/sort/pagination injection, join/aggregation
// decomposition, INSERT<->SELECT<->VALUES conversion, CTE dependency
// analysis, identifier renaming, DDL diffing, and fixture-CTE synthesis.
// Every pass is built on the visitor package's traversal, never its own
// ad hoc walk.
package transform

import "errors"

// Sentinel errors for the transformer-specific failure modes, grouped
// under TransformError/RenameError/SchemaError.
var (
	ErrAllParametersUndefined = errors.New("all parameters are undefined")
	ErrNotSimpleSelect        = errors.New("query is not a simple select statement")
	ErrUnknownColumn          = errors.New("unknown column")
	ErrAliasKeyedColumn       = errors.New("qualified key must use a real table name, not an alias")
	ErrSortConflict           = errors.New("conflicting sort option")
	ErrEmptySortOption        = errors.New("empty sort option")
	ErrAlreadyPaginated       = errors.New("query already contains limit or offset clause")
	ErrInvalidPage            = errors.New("page number must be a positive integer (1 or greater)")
	ErrInvalidPageSize        = errors.New("page size must be between 1 and 1000")
	ErrNoJoins                = errors.New("query does not contain joins")
	ErrNoAggregation          = errors.New("query does not contain aggregation or group by")
	ErrWindowFunctionsPresent = errors.New("window functions are not fully supported")
	ErrNoIdentifierFound      = errors.New("no identifier found")
	ErrNotAnIdentifier        = errors.New("not an identifier")
	ErrEmptySQL               = errors.New("empty sql")
	ErrInvalidPosition        = errors.New("invalid position")
	ErrRenameConflict         = errors.New("rename target conflicts with an existing name")
	ErrReservedWord           = errors.New("rename target is a reserved keyword")
	ErrColumnCountMismatch    = errors.New("tuple value count does not match column count")
	ErrMissingColumnList      = errors.New("explicit column list is required")
	ErrAliasRequired          = errors.New("each select item must have an alias matching a target column")
	ErrSelectHasFromOrWhere   = errors.New("select queries with from or where clauses cannot be converted to values")
	ErrFixtureCoverage        = errors.New("fixture coverage")
	ErrRequiredColumnMissing  = errors.New("required column is missing from insert")
)

// Result is the non-throwing counterpart several transformers expose
// alongside a mutating/throwing entry point; both must share identical
// acceptance criteria.
type Result[T any] struct {
	Value T
	Err   error
}

func Ok[T any](v T) Result[T]      { return Result[T]{Value: v} }
func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }
