// Package money formats ledger amounts for display.
package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCode is used when a currency code is unknown.
const DefaultCode = "INR"

// Formatter renders decimal amounts with a currency symbol and
// thousands separators, rounded to the currency's minor unit.
type Formatter struct {
	currency *gomoney.Currency
	symbol   string
}

// NewFormatter returns a Formatter for an ISO-4217 code. symbol replaces
// the currency's own grapheme, e.g. "Rs. " instead of "₹".
func NewFormatter(code, symbol string) Formatter {
	c := gomoney.GetCurrency(strings.ToUpper(code))
	if c == nil {
		c = gomoney.GetCurrency(DefaultCode)
	}
	return Formatter{currency: c, symbol: symbol}
}

// Code returns the ISO-4217 currency code.
func (f Formatter) Code() string {
	return f.currency.Code
}

// Format renders d as e.g. "Rs. 1,234.50".
func (f Formatter) Format(d decimal.Decimal) string {
	return f.render(d, f.symbol)
}

// Plain renders d without a symbol, e.g. "1,234.50".
func (f Formatter) Plain(d decimal.Decimal) string {
	return f.render(d, "")
}

func (f Formatter) render(d decimal.Decimal, symbol string) string {
	minor := ToMinor(d, f.currency.Fraction)
	return gomoney.NewFormatter(f.currency.Fraction, ".", ",", symbol, "$1").Format(minor)
}

// ToMinor converts d to minor units, rounding half away from zero.
func ToMinor(d decimal.Decimal, fraction int) int64 {
	return d.Mul(decimal.New(1, int32(fraction))).Round(0).IntPart()
}
