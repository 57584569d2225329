package tokenizer

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// foldCaser performs Unicode-aware uppercasing for keyword/identifier
// comparison, rather than the byte-oriented strings.ToUpper. This keeps
// folding consistent for non-ASCII identifiers quoted in other dialects.
var foldCaser = cases.Upper(language.Und)

func fold(s string) string {
	return foldCaser.String(s)
}

// KeywordInfo records whether a word is reserved in any of the three
// dialects this toolkit targets, and whether that reservation is strict
// (cannot be used as a bare identifier) or soft (context disambiguates).
type KeywordInfo struct {
	StrictReserved bool
}

// Keywords is the union keyword table across Postgres/MySQL/SQLite,
// keyed by the upper-cased canonical spelling. A word absent from this
// table is always an identifier.
var Keywords = map[string]KeywordInfo{
	"SELECT": {true}, "INSERT": {true}, "UPDATE": {true}, "DELETE": {true},
	"FROM": {true}, "WHERE": {true}, "GROUP": {true}, "BY": {true}, "HAVING": {true},
	"ORDER": {true}, "LIMIT": {false}, "OFFSET": {false}, "FETCH": {false},
	"UNION": {true}, "INTERSECT": {true}, "EXCEPT": {true}, "ALL": {true}, "DISTINCT": {true},
	"AS": {true}, "WITH": {true}, "RECURSIVE": {false}, "ON": {true}, "USING": {true},
	"JOIN": {true}, "INNER": {true}, "LEFT": {true}, "RIGHT": {true}, "FULL": {true},
	"OUTER": {true}, "CROSS": {true}, "LATERAL": {true}, "NATURAL": {true},
	"AND": {true}, "OR": {true}, "NOT": {true}, "IN": {true}, "EXISTS": {true},
	"BETWEEN": {true}, "LIKE": {true}, "ILIKE": {false}, "IS": {true}, "NULL": {true},
	"CASE": {true}, "WHEN": {true}, "THEN": {true}, "ELSE": {true}, "END": {true},
	"CAST": {false}, "VALUES": {true}, "INTO": {true}, "SET": {true}, "DEFAULT": {true},
	"RETURNING": {true}, "CONFLICT": {false}, "DO": {false}, "NOTHING": {false},
	"CREATE": {true}, "TABLE": {true}, "TEMPORARY": {false}, "TEMP": {false},
	"IF": {true}, "PRIMARY": {true}, "KEY": {true}, "UNIQUE": {true}, "CHECK": {true},
	"FOREIGN": {true}, "REFERENCES": {true}, "CONSTRAINT": {true}, "COLUMN": {false},
	"ROLLUP": {false}, "CUBE": {false}, "GROUPING": {false}, "SETS": {false},
	"NULLS": {false}, "FIRST": {false}, "LAST": {false}, "ASC": {true}, "DESC": {true},
	"OVER": {true}, "PARTITION": {true}, "FILTER": {false}, "WITHIN": {false},
	"ROWS": {true}, "RANGE": {true}, "UNBOUNDED": {true}, "PRECEDING": {true},
	"FOLLOWING": {true}, "CURRENT": {true}, "ROW": {true}, "ESCAPE": {false},
	"DROP": {true}, "ALTER": {true}, "ADD": {false}, "INDEX": {true}, "VIEW": {true},
	"USER": {false}, "COUNT": {false},
}

// IsStrictKeyword reports whether word (any case) is a strict reserved
// word that can never be used as a bare identifier in this dialect
// union. Soft keywords may still be identifiers when context allows
// so that ambiguity between keyword and identifier is resolved in favor
// of the surrounding context.
func IsStrictKeyword(word string) bool {
	info, ok := Keywords[fold(word)]
	return ok && info.StrictReserved
}

// IsKeyword reports whether word names any keyword, strict or soft.
func IsKeyword(word string) bool {
	_, ok := Keywords[fold(word)]
	return ok
}
