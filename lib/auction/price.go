package auction

import (
	"strings"

	"github.com/shopspring/decimal"
)

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// FixupPrice normalizes a displayed price into plain numeric text.
// A leading alphabetic prefix is returned as the currency code. Thousands
// separators are dropped and the last separator becomes the decimal point,
// so both "US $1,234.56" and "EUR 1.234,56" yield "1234.56".
func FixupPrice(price string) (text, currency string) {
	start := 0
	for start < len(price) && isAlpha(price[start]) {
		start++
	}
	currency = price[:start]

	for start < len(price) && !isDigit(price[start]) && price[start] != ',' && price[start] != '.' {
		start++
	}

	end := start
	separators := 0
	for ; end < len(price); end++ {
		c := price[end]
		if isDigit(c) {
			continue
		}
		if c == ',' || c == '.' {
			separators++
			continue
		}
		break
	}

	var out strings.Builder
	for i := start; i < end; i++ {
		c := price[i]
		if c == ',' || c == '.' {
			separators--
			if separators == 0 {
				out.WriteByte('.')
			}
			continue
		}
		out.WriteByte(c)
	}
	return out.String(), currency
}

// ParsePrice converts normalized price text into a number, text that
// cannot be converted yields 0.
func ParsePrice(text string) float64 {
	text = strings.TrimSuffix(text, ".")
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// ObservePrice normalizes a price seen on a page, adopting its currency
// when the auction has none yet.
func (a *Auction) ObservePrice(price string) float64 {
	text, currency := FixupPrice(price)
	if a.Currency == "" {
		a.Currency = currency
	}
	return ParsePrice(text)
}

// Cents converts a price to an integer number of cents.
func Cents(price float64) int64 {
	return decimal.NewFromFloat(price).Shift(2).Round(0).IntPart()
}
