package param_test

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/sqlkit-go/sqlkit/param"
)

func TestZeroValueIsNull(t *testing.T) {
	var v param.Value
	assert.True(t, v.IsNull())
	assert.Equal(t, param.KindNull, v.Kind)
}

func TestConstructorsSetKind(t *testing.T) {
	assert.Equal(t, param.KindBool, param.Bool(true).Kind)
	assert.Equal(t, param.KindInt64, param.Int64(42).Kind)
	assert.Equal(t, param.KindBigInt, param.BigInt("9007199254740993").Kind)
	assert.Equal(t, param.KindFloat, param.Float(3.14).Kind)
	assert.Equal(t, param.KindString, param.String("hi").Kind)
	assert.Equal(t, param.KindBytes, param.Bytes([]byte{1, 2}).Kind)
	assert.Equal(t, param.KindDecimal, param.Decimal(decimal.NewFromInt(5)).Kind)
	assert.Equal(t, param.KindDateTime, param.DateTime(time.Unix(0, 0)).Kind)
	assert.False(t, param.Int64(42).IsNull())
}

func TestBigIntPreservesExactDigits(t *testing.T) {
	v := param.BigInt("9007199254740993")
	assert.Equal(t, "9007199254740993", v.BigInt)
	n, err := v.Numeric()
	assert.NoError(t, err)
	assert.True(t, n.Valid)
}

func TestDecimalNumericRoundTrip(t *testing.T) {
	d := decimal.RequireFromString("160.50")
	v := param.Decimal(d)
	n, err := v.Numeric()
	assert.NoError(t, err)
	assert.True(t, n.Valid)
}

func TestNumericOnNonNumericKindIsInvalid(t *testing.T) {
	n, err := param.String("x").Numeric()
	assert.NoError(t, err)
	assert.False(t, n.Valid)
}

func TestMapIsPlainStringKeyedMap(t *testing.T) {
	m := param.Map{"name": param.String("Alice")}
	assert.Equal(t, "Alice", m["name"].String)
}
