// Copyright (c) 2018 Open2b Software Snc. All rights reserved.
// https://www.open2b.com

// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrDivisionByZero is returned dividing by zero.
var ErrDivisionByZero = errors.New("division by zero")

// divisionPrecision is the number of decimal digits of a division result.
const divisionPrecision = 20

var half = decimal.New(5, -1)

// Num is a number of the data model. Finite numbers are decimals; infinities
// and NaN, that decimals can not represent, are stored as float64.
type Num struct {
	d       decimal.Decimal
	f       float64
	special bool
}

// NewNum returns a Num with value d.
func NewNum(d decimal.Decimal) Num {
	return Num{d: d}
}

// IntNum returns a Num with value i.
func IntNum(i int64) Num {
	return Num{d: decimal.NewFromInt(i)}
}

// FloatNum returns a Num with value f.
func FloatNum(f float64) Num {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return Num{f: f, special: true}
	}
	return Num{d: decimal.NewFromFloat(f)}
}

// ParseNum parses s as a number. It accepts the decimal notation and the
// special values "INF", "-INF", "Infinity", "-Infinity" and "NaN".
func ParseNum(s string) (Num, error) {
	switch strings.TrimSpace(s) {
	case "INF", "+INF", "Infinity", "+Infinity":
		return FloatNum(math.Inf(1)), nil
	case "-INF", "-Infinity":
		return FloatNum(math.Inf(-1)), nil
	case "NaN":
		return FloatNum(math.NaN()), nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Num{}, err
	}
	return Num{d: d}, nil
}

// Decimal returns n as a decimal. It returns zero if n is not finite.
func (n Num) Decimal() decimal.Decimal {
	return n.d
}

// Float64 returns the nearest float64 value of n.
func (n Num) Float64() float64 {
	if n.special {
		return n.f
	}
	f, _ := n.d.Float64()
	return f
}

// IsFinite reports whether n is neither an infinity nor NaN.
func (n Num) IsFinite() bool { return !n.special }

// IsInf reports whether n is an infinity.
func (n Num) IsInf() bool { return n.special && math.IsInf(n.f, 0) }

// IsNaN reports whether n is NaN.
func (n Num) IsNaN() bool { return n.special && math.IsNaN(n.f) }

// IsInteger reports whether n is a finite number without fractional part.
func (n Num) IsInteger() bool {
	return !n.special && n.d.Equal(n.d.Truncate(0))
}

// Int returns n as an int. ok is false if n is not an integer or it does not
// fit an int.
func (n Num) Int() (i int, ok bool) {
	if !n.IsInteger() {
		return 0, false
	}
	bi := n.d.BigInt()
	if !bi.IsInt64() {
		return 0, false
	}
	i64 := bi.Int64()
	if int64(int(i64)) != i64 {
		return 0, false
	}
	return int(i64), true
}

// Sign returns -1, 0 or 1 according to the sign of n. NaN has sign 0.
func (n Num) Sign() int {
	if n.special {
		switch {
		case math.IsInf(n.f, 1):
			return 1
		case math.IsInf(n.f, -1):
			return -1
		}
		return 0
	}
	return n.d.Sign()
}

// String returns the computer representation of n: the decimal notation
// without exponent, or "INF", "-INF" and "NaN" for the special values.
func (n Num) String() string {
	if n.special {
		switch {
		case math.IsInf(n.f, 1):
			return "INF"
		case math.IsInf(n.f, -1):
			return "-INF"
		}
		return "NaN"
	}
	return n.d.String()
}

// Add returns n + m.
func (n Num) Add(m Num) Num {
	if n.special || m.special {
		return FloatNum(n.Float64() + m.Float64())
	}
	return Num{d: n.d.Add(m.d)}
}

// Sub returns n - m.
func (n Num) Sub(m Num) Num {
	if n.special || m.special {
		return FloatNum(n.Float64() - m.Float64())
	}
	return Num{d: n.d.Sub(m.d)}
}

// Mul returns n * m.
func (n Num) Mul(m Num) Num {
	if n.special || m.special {
		return FloatNum(n.Float64() * m.Float64())
	}
	return Num{d: n.d.Mul(m.d)}
}

// Div returns n / m. It returns ErrDivisionByZero if m is zero and both
// numbers are finite.
func (n Num) Div(m Num) (Num, error) {
	if n.special || m.special {
		return FloatNum(n.Float64() / m.Float64()), nil
	}
	if m.d.IsZero() {
		return Num{}, ErrDivisionByZero
	}
	return Num{d: n.d.DivRound(m.d, divisionPrecision)}, nil
}

// Mod returns the remainder of n / m, with the sign of n.
func (n Num) Mod(m Num) (Num, error) {
	if n.special || m.special {
		return FloatNum(math.Mod(n.Float64(), m.Float64())), nil
	}
	if m.d.IsZero() {
		return Num{}, ErrDivisionByZero
	}
	return Num{d: n.d.Mod(m.d)}, nil
}

// Neg returns -n.
func (n Num) Neg() Num {
	if n.special {
		return FloatNum(-n.f)
	}
	return Num{d: n.d.Neg()}
}

// Abs returns the absolute value of n.
func (n Num) Abs() Num {
	if n.special {
		return FloatNum(math.Abs(n.f))
	}
	return Num{d: n.d.Abs()}
}

// Cmp compares n and m. It returns -1, 0 or +1 and ok true, or ok false if
// one of them is NaN.
func (n Num) Cmp(m Num) (c int, ok bool) {
	if n.IsNaN() || m.IsNaN() {
		return 0, false
	}
	if n.special || m.special {
		a, b := n.Float64(), m.Float64()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		}
		return 0, true
	}
	return n.d.Cmp(m.d), true
}

// Round rounds n to the nearest integer, rounding halves toward positive
// infinity. Non-finite numbers are returned unchanged.
func (n Num) Round() Num {
	if n.special {
		return n
	}
	return Num{d: n.d.Add(half).Floor()}
}

// Floor returns the greatest integer less than or equal to n. Non-finite
// numbers are returned unchanged.
func (n Num) Floor() Num {
	if n.special {
		return n
	}
	return Num{d: n.d.Floor()}
}

// Ceiling returns the least integer greater than or equal to n. Non-finite
// numbers are returned unchanged.
func (n Num) Ceiling() Num {
	if n.special {
		return n
	}
	return Num{d: n.d.Ceil()}
}

// Truncate returns the integer part of n. Non-finite numbers are returned
// unchanged.
func (n Num) Truncate() Num {
	if n.special {
		return n
	}
	return Num{d: n.d.Truncate(0)}
}
