package util

import (
	"regexp"
	"strconv"
	"strings"
)

func SafeAtoi(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return i
}

var nonNumericRegex = regexp.MustCompile(`[^\d]`)

func CleanNumericString(s string) string {
	return nonNumericRegex.ReplaceAllString(s, "")
}

var firstNumberRegex = regexp.MustCompile(`[\d,]+`)

// ExtractNumber pulls the first integer out of free-form text like
// "1,024 sold" or "MOQ: 500 pieces". Returns 0 when no number is present.
func ExtractNumber(text string) int {
	match := firstNumberRegex.FindString(text)
	if match == "" {
		return 0
	}
	return SafeAtoi(CleanNumericString(match))
}

var priceAmountRegex = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

var currencySymbols = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "CNY",
}

// ExtractPrice parses a displayed price fragment ("US $12.50", "€3,200",
// "12.00 USD") into an amount and a currency code. Amount is 0 when no
// numeric component is present; currency defaults to USD.
func ExtractPrice(text string) (float64, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ""
	}

	currency := "USD"
	for symbol, code := range currencySymbols {
		if strings.Contains(text, symbol) {
			currency = code
			break
		}
	}
	upper := strings.ToUpper(text)
	for _, code := range []string{"USD", "EUR", "GBP", "CNY"} {
		if strings.Contains(upper, code) {
			currency = code
			break
		}
	}

	return ExtractFloat(text), currency
}

// ExtractFloat pulls the first decimal number out of text ("4.7 stars").
func ExtractFloat(text string) float64 {
	match := priceAmountRegex.FindString(text)
	if match == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return f
}
