package transform

import (
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	goyaml "github.com/goccy/go-yaml"
	"github.com/shopspring/decimal"

	"github.com/sqlkit-go/sqlkit/ast"
	"github.com/sqlkit-go/sqlkit/param"
)

// FixtureColumn is one typed column of a FixtureTable.
type FixtureColumn struct {
	Name string
	Type string // SQL type name used in `cast(val AS type)`
}

// FixtureTable is a typed in-memory row set that stands in for a real
// table. Each row must have exactly len(Columns) values, in column order.
type FixtureTable struct {
	Name    string
	Columns []FixtureColumn
	Rows    [][]param.Value
}

// FixtureCteBuilder turns FixtureTables into CTE declarations usable in
// place of a real table reference.
type FixtureCteBuilder struct{}

// Build converts one table into a CTE: `WITH "t" AS (SELECT cast(v AS
// type) AS col1, ... UNION ALL SELECT ...)`. An empty fixture (zero
// rows) instead produces a single-row `SELECT null AS col1, null AS
// col2 ... WHERE 1=0`, so the CTE is typed but contributes no rows.
func (FixtureCteBuilder) Build(t FixtureTable) ast.CTE {
	if len(t.Rows) == 0 {
		items := make([]ast.SelectItem, len(t.Columns))
		for i, c := range t.Columns {
			items[i] = ast.SelectItem{Expr: &ast.Literal{RawText: "null"}, Alias: c.Name}
		}
		body := &ast.SimpleQuery{
			Select: ast.SelectClause{Items: items},
			Where:  &ast.WhereClause{Predicate: &ast.BinaryExpr{Left: &ast.Literal{RawText: "1"}, Op: ast.OpEq, Right: &ast.Literal{RawText: "0"}}},
		}
		return ast.CTE{Name: t.Name, Body: body}
	}

	var body ast.Query
	for ri, row := range t.Rows {
		items := make([]ast.SelectItem, len(t.Columns))
		for ci, col := range t.Columns {
			var v param.Value
			if ci < len(row) {
				v = row[ci]
			}
			expr := castedValueExpr(v, col.Type)
			alias := ""
			if ri == 0 {
				alias = col.Name
			}
			items[ci] = ast.SelectItem{Expr: expr, Alias: alias}
		}
		sel := &ast.SimpleQuery{Select: ast.SelectClause{Items: items}}
		if body == nil {
			body = sel
		} else {
			body = &ast.BinaryQuery{Op: ast.SetUnionAll, Left: body, Right: sel}
		}
	}
	return ast.CTE{Name: t.Name, Body: body}
}

// BuildAll converts every table into a single WITH clause, in the order
// given.
func (b FixtureCteBuilder) BuildAll(tables []FixtureTable) *ast.WithClause {
	if len(tables) == 0 {
		return nil
	}
	w := &ast.WithClause{}
	for _, t := range tables {
		w.CTEs = append(w.CTEs, b.Build(t))
	}
	return w
}

// castedValueExpr wraps a value expression in `cast(v AS type)` when a
// type is given; untyped columns (type == "") are emitted bare.
func castedValueExpr(v param.Value, sqlType string) ast.Expr {
	e := valueExpr(v)
	if sqlType == "" {
		return e
	}
	return &ast.CastExpr{Input: e, TargetType: sqlType}
}

// valueExpr renders a param.Value as a literal expression. Buffer bytes
// become `X'...'` hex literals; booleans print bare `true`/`false`;
// BigInt and Decimal values preserve their exact source digits rather
// than round-tripping through float64: 9007199254740993 is emitted as
// 9007199254740993, not ...992.
func valueExpr(v param.Value) ast.Expr {
	switch v.Kind {
	case param.KindNull:
		return &ast.Literal{RawText: "null"}
	case param.KindBool:
		if v.Bool {
			return &ast.Literal{RawText: "true"}
		}
		return &ast.Literal{RawText: "false"}
	case param.KindInt64:
		return &ast.Literal{RawText: strconv.FormatInt(v.Int64, 10)}
	case param.KindBigInt:
		return &ast.Literal{RawText: v.BigInt}
	case param.KindFloat:
		return &ast.Literal{RawText: strconv.FormatFloat(v.Float, 'g', -1, 64)}
	case param.KindDecimal:
		return &ast.Literal{RawText: v.Decimal.String()}
	case param.KindBytes:
		return &ast.Literal{RawText: "X'" + hex.EncodeToString(v.Bytes) + "'"}
	case param.KindDateTime:
		return &ast.Literal{RawText: v.DateTime.Format(time.RFC3339Nano), IsString: true}
	case param.KindString:
		return &ast.Literal{RawText: v.String, IsString: true}
	default:
		return &ast.Literal{RawText: "null"}
	}
}

// fixtureJSONColumn/fixtureJSONSpec mirror the fixture JSON ingestion
// shape: `{ <table>: { columns: [{name,type,default?}], rows:
// [{col: val, ...}] } }`.
type fixtureJSONColumn struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Default *string `json:"default,omitempty"`
}

type fixtureJSONSpec struct {
	Columns []fixtureJSONColumn        `json:"columns"`
	Rows    []map[string]json.RawMessage `json:"rows"`
}

// FromJSON parses the fixture JSON shape into FixtureTables, in
// deterministic (lexical) table-name order.
func (FixtureCteBuilder) FromJSON(data []byte) ([]FixtureTable, error) {
	var raw map[string]fixtureJSONSpec
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	var names []string
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	var tables []FixtureTable
	for _, name := range names {
		spec := raw[name]
		t := FixtureTable{Name: name}
		for _, c := range spec.Columns {
			t.Columns = append(t.Columns, FixtureColumn{Name: c.Name, Type: c.Type})
		}
		for _, row := range spec.Rows {
			values := make([]param.Value, len(t.Columns))
			for i, c := range t.Columns {
				raw, ok := row[c.Name]
				if !ok {
					values[i] = param.Null()
					continue
				}
				v, err := decodeJSONValue(raw)
				if err != nil {
					return nil, err
				}
				values[i] = v
			}
			t.Rows = append(t.Rows, values)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// FromYAML parses the same fixture shape from YAML text, a sibling
// ingestion format alongside FromJSON.
func (FixtureCteBuilder) FromYAML(data []byte) ([]FixtureTable, error) {
	var raw map[string]struct {
		Columns []fixtureJSONColumn      `yaml:"columns"`
		Rows    []map[string]interface{} `yaml:"rows"`
	}
	if err := goyaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var names []string
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	var tables []FixtureTable
	for _, name := range names {
		spec := raw[name]
		t := FixtureTable{Name: name}
		for _, c := range spec.Columns {
			t.Columns = append(t.Columns, FixtureColumn{Name: c.Name, Type: c.Type})
		}
		for _, row := range spec.Rows {
			values := make([]param.Value, len(t.Columns))
			for i, c := range t.Columns {
				raw, ok := row[c.Name]
				if !ok {
					values[i] = param.Null()
					continue
				}
				values[i] = yamlScalarToValue(raw)
			}
			t.Rows = append(t.Rows, values)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func yamlScalarToValue(v interface{}) param.Value {
	switch x := v.(type) {
	case nil:
		return param.Null()
	case bool:
		return param.Bool(x)
	case int:
		return param.Int64(int64(x))
	case int64:
		return param.Int64(x)
	case uint64:
		return param.BigInt(strconv.FormatUint(x, 10))
	case float64:
		return param.Float(x)
	case string:
		return param.String(x)
	default:
		return param.String(fmtString(x))
	}
}

func fmtString(v interface{}) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// decodeJSONValue decodes a raw JSON scalar (null, bool, string, or
// number) into a param.Value, preserving the original number's exact
// digits: integers that overflow int64 become KindBigInt text rather
// than being float-widened, and numbers with a fractional/exponent part
// become a Decimal.
func decodeJSONValue(raw json.RawMessage) (param.Value, error) {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "" || s == "null":
		return param.Null(), nil
	case s == "true":
		return param.Bool(true), nil
	case s == "false":
		return param.Bool(false), nil
	case len(s) > 0 && s[0] == '"':
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return param.Value{}, err
		}
		return param.String(str), nil
	default:
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var num json.Number
		if err := dec.Decode(&num); err != nil {
			return param.Value{}, err
		}
		text := num.String()
		if strings.ContainsAny(text, ".eE") {
			d, err := decimal.NewFromString(text)
			if err != nil {
				return param.Value{}, err
			}
			return param.Decimal(d), nil
		}
		if i, err := strconv.ParseInt(text, 10, 64); err == nil {
			return param.Int64(i), nil
		}
		return param.BigInt(text), nil
	}
}

