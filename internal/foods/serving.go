package foods

import (
	"regexp"
	"strconv"
)

var servingGramsRegex = regexp.MustCompile(`\d+(\.\d+)?`)

// ParseServingGrams extracts the numeric gram amount from a serving type
// label, e.g. "100 g" -> 100. Returns false when the label holds no
// positive number.
func ParseServingGrams(servingType string) (float64, bool) {
	match := servingGramsRegex.FindString(servingType)
	if match == "" {
		return 0, false
	}

	grams, err := strconv.ParseFloat(match, 64)
	if err != nil || grams <= 0 {
		return 0, false
	}

	return grams, true
}
