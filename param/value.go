// Package param models the parameter map that format.Format returns
// alongside formatted SQL text: a tagged scalar value type rather than
// an untyped `any`.
package param

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Kind discriminates the concrete scalar a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt64
	KindBigInt // exact-digit integer text too large for int64
	KindFloat
	KindString
	KindBytes
	KindDecimal
	KindDateTime
)

// Value is a tagged scalar bound to a single named parameter. Exactly
// one field is meaningful for a given Kind; the rest are zero.
type Value struct {
	Kind     Kind
	Bool     bool
	Int64    int64
	BigInt   string // exact source digits, never float-widened
	Float    float64
	String   string
	Bytes    []byte
	Decimal  decimal.Decimal
	DateTime time.Time
}

func Null() Value               { return Value{Kind: KindNull} }
func Bool(b bool) Value         { return Value{Kind: KindBool, Bool: b} }
func Int64(i int64) Value       { return Value{Kind: KindInt64, Int64: i} }
func BigInt(digits string) Value { return Value{Kind: KindBigInt, BigInt: digits} }
func Float(f float64) Value     { return Value{Kind: KindFloat, Float: f} }
func String(s string) Value     { return Value{Kind: KindString, String: s} }
func Bytes(b []byte) Value      { return Value{Kind: KindBytes, Bytes: b} }
func Decimal(d decimal.Decimal) Value { return Value{Kind: KindDecimal, Decimal: d} }
func DateTime(t time.Time) Value { return Value{Kind: KindDateTime, DateTime: t} }

// IsNull reports whether v represents SQL NULL (the zero Value is null).
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Numeric converts v to pgtype.Numeric, the shape used when a bound
// value must cross to a pgx-aware caller without losing exactness
// alongside pgx's own numeric representation.
func (v Value) Numeric() (pgtype.Numeric, error) {
	switch v.Kind {
	case KindDecimal:
		var n pgtype.Numeric
		err := n.Scan(v.Decimal.String())
		return n, err
	case KindBigInt:
		var n pgtype.Numeric
		err := n.Scan(v.BigInt)
		return n, err
	case KindInt64:
		var n pgtype.Numeric
		err := n.Scan(decimal.NewFromInt(v.Int64).String())
		return n, err
	case KindFloat:
		var n pgtype.Numeric
		err := n.Scan(decimal.NewFromFloat(v.Float).String())
		return n, err
	default:
		var n pgtype.Numeric
		n.Valid = false
		return n, nil
	}
}

// Map is the returned parameter map: unique parameter name to bound
// value, exactly one entry per unique name.
type Map map[string]Value
