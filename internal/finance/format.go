package finance

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Infinite is what FormatDuration prints for a goal that is never reached.
const Infinite = "∞"

// FormatDuration breaks seconds into years, days, hours, minutes and seconds,
// omitting zero units. e.g. 90061 -> "1d 1h 1m 1s", 0 -> "0s".
//
// Days come from the remainder of a Julian year and hours from the remainder
// of a day, so one exact year prints as "1y 6h".
func FormatDuration(seconds float64) string {
	if math.IsInf(seconds, 0) || math.IsNaN(seconds) || seconds < 0 {
		return Infinite
	}

	years := int64(math.Floor(seconds / SecondsPerYear))
	days := int64(math.Floor(math.Mod(seconds, SecondsPerYear) / SecondsPerDay))
	hours := int64(math.Floor(math.Mod(seconds, SecondsPerDay) / SecondsPerHour))
	mins := int64(math.Floor(math.Mod(seconds, SecondsPerHour) / SecondsPerMinute))
	secs := int64(math.Floor(math.Mod(seconds, SecondsPerMinute)))

	var parts []string
	for _, u := range []struct {
		n      int64
		suffix string
	}{
		{years, "y"},
		{days, "d"},
		{hours, "h"},
		{mins, "m"},
		{secs, "s"},
	} {
		if u.n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", u.n, u.suffix))
		}
	}

	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

// Currency describes how money is printed. It carries no exchange semantics.
type Currency struct {
	Code      string
	Symbol    string
	Spaced    bool // space between symbol and amount
	Thousands string
	Decimal   string
}

// Currency presets. BRL is the default and renders like pt-BR locale output.
var (
	BRL = Currency{Code: "brl", Symbol: "R$", Spaced: true, Thousands: ".", Decimal: ","}
	USD = Currency{Code: "usd", Symbol: "$", Thousands: ",", Decimal: "."}
	EUR = Currency{Code: "eur", Symbol: "€", Spaced: true, Thousands: ".", Decimal: ","}
)

// Currencies lists the available presets.
var Currencies = []Currency{BRL, USD, EUR}

// CurrencyByCode returns the preset for code, defaulting to BRL.
func CurrencyByCode(code string) Currency {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, c := range Currencies {
		if c.Code == code {
			return c
		}
	}
	return BRL
}

// FormatMoney renders v rounded half-away-from-zero to decimals places.
// e.g. FormatMoney(1234.5, 2, BRL) -> "R$ 1.234,50"
func FormatMoney(v float64, decimals int, cur Currency) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return cur.Symbol + " " + Infinite
	}
	if decimals < 0 {
		decimals = 0
	}

	d := decimal.NewFromFloat(v).Round(int32(decimals))
	neg := d.IsNegative()
	fixed := d.Abs().StringFixed(int32(decimals))

	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(cur.Symbol)
	if cur.Spaced {
		b.WriteByte(' ')
	}
	b.WriteString(groupDigits(intPart, cur.Thousands))
	if decimals > 0 {
		b.WriteString(cur.Decimal)
		b.WriteString(frac)
	}
	return b.String()
}

func groupDigits(s, sep string) string {
	if len(s) <= 3 || sep == "" {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPercent prints an already-scaled percentage (25 -> "25.00%").
func FormatPercent(v float64, decimals int) string {
	return fmt.Sprintf("%.*f%%", decimals, v)
}

// ParseAmount reads a user-entered number. Commas, underscores and spaces are
// treated as digit grouping and a trailing percent sign is ignored, so
// "1,000,000", "4.5" and "4.5%" all parse. The decimal separator is '.'.
func ParseAmount(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.NewReplacer(",", "", "_", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("parse amount %q: empty", s)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}
