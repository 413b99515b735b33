package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

var priceNumber = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// ParsePrice pulls a decimal amount out of messy marketplace price text:
// currency symbols ("₹", "$", "Rs."), thousands separators, and ranges
// ("₹1,200 - ₹1,500" takes the lower bound). Returns 0 when no numeric
// amount is present, which callers treat as "no usable price".
func ParsePrice(text string) float64 {
	m := priceNumber.FindString(text)
	if m == "" {
		return 0
	}
	m = strings.ReplaceAll(m, ",", "")
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// cleanText collapses runs of whitespace so titles scraped out of
// nested markup compare and display sanely.
var innerWhitespace = regexp.MustCompile(`\s\s+`)

func cleanText(s string) string {
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, " ")
}
