// Copyright 2021 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types

import (
	"math/big"
	"math/bits"
	"strings"

	"github.com/matrixorigin/duckbridge/pkg/common/moerr"
)

// Int128 is a two's complement 128-bit integer, low word first.
type Int128 struct {
	Lo uint64
	Hi int64
}

// Decimal64 is the unscaled value of a decimal with precision up to 18.
type Decimal64 int64

// Decimal128 is the unscaled value of a decimal with precision up to 38,
// two's complement, low word first.
type Decimal128 struct {
	B0_63   uint64
	B64_127 uint64
}

func Int128FromInt64(v int64) Int128 {
	return Int128{Lo: uint64(v), Hi: v >> 63}
}

func (x Int128) Sign() int {
	if x.Hi < 0 {
		return -1
	}
	if x.Hi == 0 && x.Lo == 0 {
		return 0
	}
	return 1
}

func (x Int128) Neg() Int128 {
	lo, borrow := bits.Sub64(0, x.Lo, 0)
	hi, _ := bits.Sub64(0, uint64(x.Hi), borrow)
	return Int128{Lo: lo, Hi: int64(hi)}
}

// Cmp returns -1, 0 or 1.
func (x Int128) Cmp(y Int128) int {
	switch {
	case x.Hi < y.Hi:
		return -1
	case x.Hi > y.Hi:
		return 1
	case x.Lo < y.Lo:
		return -1
	case x.Lo > y.Lo:
		return 1
	}
	return 0
}

// mulAdd returns x*m+a for a non-negative x and whether the result no
// longer fits in 127 bits.
func (x Int128) mulAdd(m uint64, a uint64) (Int128, bool) {
	hi1, lo := bits.Mul64(x.Lo, m)
	hi2, hi := bits.Mul64(uint64(x.Hi), m)
	hi, carry := bits.Add64(hi, hi1, 0)
	overflow := hi2 != 0 || carry != 0
	lo, c := bits.Add64(lo, a, 0)
	hi, c2 := bits.Add64(hi, 0, c)
	overflow = overflow || c2 != 0 || int64(hi) < 0
	return Int128{Lo: lo, Hi: int64(hi)}, overflow
}

func (x Int128) Big() *big.Int {
	v := new(big.Int).SetInt64(x.Hi)
	v.Lsh(v, 64)
	return v.Or(v, new(big.Int).SetUint64(x.Lo))
}

func (x Int128) String() string {
	return x.Big().String()
}

func (x Int128) ToDecimal128() Decimal128 {
	return Decimal128{B0_63: x.Lo, B64_127: uint64(x.Hi)}
}

func (x Decimal128) ToInt128() Int128 {
	return Int128{Lo: x.B0_63, Hi: int64(x.B64_127)}
}

func Decimal128FromInt64(v int64) Decimal128 {
	return Int128FromInt64(v).ToDecimal128()
}

// Format renders the unscaled value with scale fractional digits.
func (x Decimal64) Format(scale int32) string {
	return formatUnscaled(big.NewInt(int64(x)), scale)
}

func (x Decimal128) Format(scale int32) string {
	return formatUnscaled(x.ToInt128().Big(), scale)
}

func formatUnscaled(v *big.Int, scale int32) string {
	neg := v.Sign() < 0
	digits := new(big.Int).Abs(v).String()
	if scale > 0 {
		if pad := int(scale) + 1 - len(digits); pad > 0 {
			digits = strings.Repeat("0", pad) + digits
		}
		p := len(digits) - int(scale)
		digits = digits[:p] + "." + digits[p:]
	}
	if neg {
		return "-" + digits
	}
	return digits
}

var pow10 = func() [MaxDecimal128Precision + 1]*big.Int {
	var ret [MaxDecimal128Precision + 1]*big.Int
	ret[0] = big.NewInt(1)
	for i := 1; i < len(ret); i++ {
		ret[i] = new(big.Int).Mul(ret[i-1], big.NewInt(10))
	}
	return ret
}()

func compareScaled(x, y *big.Int, scaleX, scaleY int32) int {
	switch {
	case scaleX < scaleY:
		x = new(big.Int).Mul(x, pow10[scaleY-scaleX])
	case scaleY < scaleX:
		y = new(big.Int).Mul(y, pow10[scaleX-scaleY])
	}
	return x.Cmp(y)
}

// CompareDecimal64 orders two decimals after aligning their scales.
func CompareDecimal64(x, y Decimal64, scaleX, scaleY int32) int {
	if scaleX == scaleY {
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
	return compareScaled(big.NewInt(int64(x)), big.NewInt(int64(y)), scaleX, scaleY)
}

func CompareDecimal128(x, y Decimal128, scaleX, scaleY int32) int {
	if scaleX == scaleY {
		return x.ToInt128().Cmp(y.ToInt128())
	}
	return compareScaled(x.ToInt128().Big(), y.ToInt128().Big(), scaleX, scaleY)
}

// Decimal carries an unscaled value with its precision and scale. It has
// no ordering of its own; compare through CompareDecimal64/128.
type Decimal struct {
	Unscaled  Int128
	Precision int32
	Scale     int32
}

// ParseDecimal reads an optionally signed decimal literal. Precision is the
// number of significant digits and scale the number of fractional digits.
func ParseDecimal(s string) (Decimal, error) {
	if len(s) == 0 {
		return Decimal{}, moerr.NewInvalidInputNoCtx("decimal string must have at least 1 char")
	}
	in := s
	neg := false
	if s[0] == '-' || s[0] == '+' {
		neg = s[0] == '-'
		s = s[1:]
	}
	s = strings.TrimLeft(s, "0")

	var d Decimal
	hasScale := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' && !hasScale {
			hasScale = true
			continue
		}
		if c < '0' || c > '9' {
			return Decimal{}, moerr.NewInvalidInputNoCtx("invalid decimal string '%s'", in)
		}
		var overflow bool
		d.Unscaled, overflow = d.Unscaled.mulAdd(10, uint64(c-'0'))
		if hasScale {
			d.Scale++
		}
		d.Precision++
		if overflow || d.Precision > MaxDecimal128Precision {
			return Decimal{}, moerr.NewOutOfRangeNoCtx("decimal", "'%s' has more than %d digits", in, MaxDecimal128Precision)
		}
	}
	if d.Precision == 0 {
		// all zeros, or no digit at all
		if !strings.ContainsAny(in, "0123456789") {
			return Decimal{}, moerr.NewInvalidInputNoCtx("invalid decimal string '%s'", in)
		}
		d.Precision = 1
	}
	if neg {
		d.Unscaled = d.Unscaled.Neg()
	}
	return d, nil
}

func (d Decimal) String() string {
	return formatUnscaled(d.Unscaled.Big(), d.Scale)
}

// Type returns the host decimal type matching the carrier's metadata.
func (d Decimal) Type() (Type, error) {
	return NewDecimalType(d.Precision, d.Scale)
}
