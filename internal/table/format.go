package table

// format.go holds the default cell formatter and the per-type comparison used
// by the sort controller.
//
// Accessors may return plain Go values, pointers, or pgtype values. A value is
// absent when it is nil, a nil pointer, or a pgtype value with Valid=false.
// Absent values format as the column's NoneValue and sort before any present
// value in ascending order.

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/exp/constraints"
)

// DateLayout is the default display layout for date columns.
var DateLayout = "2006-01-02"

// unwrap resolves pointers and pgtype wrappers to a plain Go value.
// Returns false if the value is absent.
func unwrap(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case pgtype.Text:
		return val.String, val.Valid
	case pgtype.Date:
		return val.Time, val.Valid
	case pgtype.Timestamptz:
		return val.Time, val.Valid
	case pgtype.Timestamp:
		return val.Time, val.Valid
	case pgtype.Numeric:
		return val, val.Valid
	case pgtype.Int8:
		return val.Int64, val.Valid
	case pgtype.Int4:
		return int64(val.Int32), val.Valid
	case pgtype.Float8:
		return val.Float64, val.Valid
	case pgtype.Bool:
		return val.Bool, val.Valid
	case pgtype.UUID:
		return uuid.UUID(val.Bytes), val.Valid
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return unwrap(rv.Elem().Interface())
	}
	return v, true
}

// formatValue converts v to its display string.
// Returns false if the value is absent.
func formatValue(v any, ft FieldType) (string, bool) {
	val, ok := unwrap(v)
	if !ok {
		return "", false
	}

	switch x := val.(type) {
	case string:
		return x, true
	case time.Time:
		if ft == FieldDate {
			return x.Format(DateLayout), true
		}
		return x.Format(time.RFC3339), true
	case bool:
		if x {
			return "Yes", true
		}
		return "No", true
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return "", false
		}
		if f.Float64 == float64(int64(f.Float64)) {
			return fmt.Sprintf("%.0f", f.Float64), true
		}
		return fmt.Sprintf("%.2f", f.Float64), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case uuid.UUID:
		return x.String(), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return fmt.Sprint(val), true
	}
}

// compareValues orders two raw field values for the given type.
// Absent values sort first.
func compareValues(a, b any, ft FieldType) int {
	av, aok := unwrap(a)
	bv, bok := unwrap(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	switch ft {
	case FieldNumeric:
		an, aerr := toNumber(av)
		bn, berr := toNumber(bv)
		if aerr == nil && berr == nil {
			return compareNumbers(an, bn)
		}
	case FieldDate:
		at, aIsTime := av.(time.Time)
		bt, bIsTime := bv.(time.Time)
		if aIsTime && bIsTime {
			return at.Compare(bt)
		}
	case FieldBool:
		ab, aIsBool := av.(bool)
		bb, bIsBool := bv.(bool)
		if aIsBool && bIsBool {
			return compareOrdered(boolRank(ab), boolRank(bb))
		}
	}

	as, _ := formatValue(av, ft)
	bs, _ := formatValue(bv, ft)
	return strings.Compare(as, bs)
}

func compareOrdered[T constraints.Ordered](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

type numberKind int

const (
	numInt numberKind = iota
	numUint
	numFloat
	numRat
)

// number is a numeric value kept in its widest exact representation.
type number struct {
	kind numberKind
	i    int64
	u    uint64
	f    float64
	r    *big.Rat
}

// rat returns n as an exact rational. Reports false for NaN and infinities.
func (n number) rat() (*big.Rat, bool) {
	switch n.kind {
	case numInt:
		return new(big.Rat).SetInt64(n.i), true
	case numUint:
		return new(big.Rat).SetInt(new(big.Int).SetUint64(n.u)), true
	case numFloat:
		if math.IsNaN(n.f) || math.IsInf(n.f, 0) {
			return nil, false
		}
		return new(big.Rat).SetFloat64(n.f), true
	default:
		return n.r, true
	}
}

func (n number) float() float64 {
	switch n.kind {
	case numInt:
		return float64(n.i)
	case numUint:
		return float64(n.u)
	case numFloat:
		return n.f
	default:
		f, _ := n.r.Float64()
		return f
	}
}

// compareNumbers orders two numbers without losing precision: integers
// compare as integers, and mixed kinds compare as exact rationals.
func compareNumbers(a, b number) int {
	if a.kind == b.kind {
		switch a.kind {
		case numInt:
			return compareOrdered(a.i, b.i)
		case numUint:
			return compareOrdered(a.u, b.u)
		case numFloat:
			return compareOrdered(a.f, b.f)
		default:
			return a.r.Cmp(b.r)
		}
	}

	ar, aok := a.rat()
	br, bok := b.rat()
	if !aok || !bok {
		return compareOrdered(a.float(), b.float())
	}
	return ar.Cmp(br)
}

// toNumber converts numeric Go and pgtype values to a number.
func toNumber(v any) (number, error) {
	switch x := v.(type) {
	case int:
		return number{kind: numInt, i: int64(x)}, nil
	case int8:
		return number{kind: numInt, i: int64(x)}, nil
	case int16:
		return number{kind: numInt, i: int64(x)}, nil
	case int32:
		return number{kind: numInt, i: int64(x)}, nil
	case int64:
		return number{kind: numInt, i: x}, nil
	case uint:
		return number{kind: numUint, u: uint64(x)}, nil
	case uint8:
		return number{kind: numUint, u: uint64(x)}, nil
	case uint16:
		return number{kind: numUint, u: uint64(x)}, nil
	case uint32:
		return number{kind: numUint, u: uint64(x)}, nil
	case uint64:
		return number{kind: numUint, u: x}, nil
	case float32:
		return number{kind: numFloat, f: float64(x)}, nil
	case float64:
		return number{kind: numFloat, f: x}, nil
	case pgtype.Numeric:
		return numericNumber(x)
	case string:
		s := strings.TrimSpace(x)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return number{kind: numInt, i: i}, nil
		}
		r, ok := new(big.Rat).SetString(s)
		if !ok {
			return number{}, fmt.Errorf("not a number: %q", x)
		}
		return number{kind: numRat, r: r}, nil
	default:
		return number{}, fmt.Errorf("not a number: %T", v)
	}
}

// numericNumber converts a pgtype.Numeric to an exact rational.
func numericNumber(x pgtype.Numeric) (number, error) {
	if !x.Valid {
		return number{}, fmt.Errorf("numeric is null")
	}
	switch {
	case x.NaN:
		return number{kind: numFloat, f: math.NaN()}, nil
	case x.InfinityModifier == pgtype.Infinity:
		return number{kind: numFloat, f: math.Inf(1)}, nil
	case x.InfinityModifier == pgtype.NegativeInfinity:
		return number{kind: numFloat, f: math.Inf(-1)}, nil
	}

	mant := x.Int
	if mant == nil {
		mant = new(big.Int)
	}
	r := new(big.Rat).SetInt(mant)
	if x.Exp != 0 {
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(abs(x.Exp))), nil)
		if x.Exp > 0 {
			r.Mul(r, new(big.Rat).SetInt(scale))
		} else {
			r.Quo(r, new(big.Rat).SetInt(scale))
		}
	}
	return number{kind: numRat, r: r}, nil
}

func abs[T constraints.Signed](n T) T {
	if n < 0 {
		return -n
	}
	return n
}
