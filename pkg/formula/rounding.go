// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package formula

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MidpointRounding selects how a value exactly halfway between two
// candidates rounds.
type MidpointRounding int

const (
	// ToEven rounds a midpoint to the nearest even digit ("banker's
	// rounding"), matching decimal.Decimal.RoundBank.
	ToEven MidpointRounding = iota
	// AwayFromZero rounds a midpoint away from zero, matching
	// decimal.Decimal.Round.
	AwayFromZero
)

// RoundingOptions is applied only to formulae whose DataType is roundable
// (see ConversionChecker) and whose IgnoreRoundingOptions is false.
type RoundingOptions struct {
	RoundedDecimalsCount int32
	MidpointRounding     MidpointRounding
}

// Round applies o to v, returning the rounded decimal.
func (o RoundingOptions) Round(v decimal.Decimal) decimal.Decimal {
	switch o.MidpointRounding {
	case ToEven:
		return v.RoundBank(o.RoundedDecimalsCount)
	default:
		return v.Round(o.RoundedDecimalsCount)
	}
}

// ConversionChecker reports whether a value of Type t can be treated as
// decimal for rounding purposes, generalizing the rule that decimal is
// assignable to a formula's dataType including via implicit conversions:
// the default checker only accepts TypeDecimal itself; hosts whose
// context types define additional numeric types with an implicit
// conversion to decimal can supply their own checker to the Factory.
type ConversionChecker func(t Type) bool

// DefaultConversionChecker accepts only TypeDecimal.
func DefaultConversionChecker(t Type) bool {
	return t == TypeDecimal
}

// roundingExpr wraps expr in a call to the adapter's registered round()
// builtin, e.g. round(1 / 3, 2, "to_even").
func roundingExpr(expr string, o RoundingOptions) string {
	mode := "away_from_zero"
	if o.MidpointRounding == ToEven {
		mode = "to_even"
	}
	return fmt.Sprintf("round((%s), %d, %q)", expr, o.RoundedDecimalsCount, mode)
}

// roundBuiltin is registered into every composite's expr-lang environment
// as the `round` function so that roundingExpr's call resolves at runtime.
func roundBuiltin(args ...any) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("round requires exactly 3 arguments, got %d", len(args))
	}
	d, err := toDecimal(args[0])
	if err != nil {
		return nil, fmt.Errorf("round: %w", err)
	}
	places, ok := toInt32(args[1])
	if !ok {
		return nil, fmt.Errorf("round: second argument must be an integer decimal count")
	}
	mode, _ := args[2].(string)

	opts := RoundingOptions{RoundedDecimalsCount: places}
	if mode == "to_even" {
		opts.MidpointRounding = ToEven
	} else {
		opts.MidpointRounding = AwayFromZero
	}
	return opts.Round(d), nil
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported numeric type %T", v)
	}
}

func toInt32(v any) (int32, bool) {
	switch n := v.(type) {
	case int:
		return int32(n), true
	case int32:
		return n, true
	case int64:
		return int32(n), true
	case float64:
		return int32(n), true
	default:
		return 0, false
	}
}
