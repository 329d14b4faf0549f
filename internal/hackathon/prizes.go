package hackathon

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Prize is a coarse prize category.
type Prize string

const (
	PrizeCash          Prize = "Cash"
	PrizeSwag          Prize = "Swag"
	PrizeJobInternship Prize = "Job/Internship"
	PrizeUnspecified   Prize = "Unspecified"
)

var prizeRank = map[Prize]int{
	PrizeCash:          0,
	PrizeSwag:          1,
	PrizeJobInternship: 2,
	PrizeUnspecified:   3,
}

var (
	nonAmountChars = regexp.MustCompile(`[^\d.]`)
	jobWord        = regexp.MustCompile(`\bjob\b`)
)

// FinalizePrizes dedupes categories and orders them Cash, Swag,
// Job/Internship, Unspecified. An empty input becomes [Unspecified].
func FinalizePrizes(categories []Prize) []Prize {
	if len(categories) == 0 {
		return []Prize{PrizeUnspecified}
	}
	out := make([]Prize, 0, len(categories))
	seen := make(map[Prize]bool)
	for _, c := range categories {
		if _, known := prizeRank[c]; !known || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return []Prize{PrizeUnspecified}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return prizeRank[out[i]] < prizeRank[out[j]]
	})
	return out
}

// HasCashAmount reports whether a free-form amount such as "$10,000" or
// "<span>₹ 5000</span>" holds a positive number.
func HasCashAmount(amount string) bool {
	digits := nonAmountChars.ReplaceAllString(strings.TrimSpace(amount), "")
	if digits == "" {
		return false
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return false
	}
	return v > 0
}

// KeywordPrizes classifies free text into Swag and Job/Internship categories.
func KeywordPrizes(text string) []Prize {
	lowered := strings.ToLower(text)
	var categories []Prize
	if ContainsAny(lowered, "swag", "merch") {
		categories = append(categories, PrizeSwag)
	}
	if strings.Contains(lowered, "internship") || jobWord.MatchString(lowered) {
		categories = append(categories, PrizeJobInternship)
	}
	return categories
}
