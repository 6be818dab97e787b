package parser

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingNumber = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)
	countPattern  = regexp.MustCompile(`\d[\d,]*`)
)

// ParseLeadingNumber reads the numeral a label starts with, e.g. "4.5 out of 5 stars".
func ParseLeadingNumber(text string) (float64, error) {
	m := leadingNumber.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("no leading number in %q", text)
	}
	return strconv.ParseFloat(m[1], 64)
}

// ParseCount reads the first grouped integer in text, e.g. "1,234" or "(1,234)".
func ParseCount(text string) (int, error) {
	found := countPattern.FindString(text)
	if found == "" {
		return 0, fmt.Errorf("no count in %q", text)
	}
	return strconv.Atoi(strings.ReplaceAll(found, ",", ""))
}

// Score ranks a product by rating weighted with its review count, rounded to
// two decimals.
func Score(rating float64, reviews int) float64 {
	return math.Round(rating*float64(reviews)*100) / 100
}

// CleanText collapses runs of whitespace and trims the result.
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// AbsoluteURL prefixes host to a site-relative path.
func AbsoluteURL(host, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	host = strings.TrimSuffix(host, "/")
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return host + href
}
