package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// IsValidIsraeliID checks the check digit of a teudat zehut number. Up to
// nine digits are accepted and left-padded with zeros; anything that is not
// a digit is ignored.
func IsValidIsraeliID(id string) bool {
	clean := nonDigits.ReplaceAllString(id, "")
	if clean == "" || len(clean) > 9 {
		return false
	}
	padded := strings.Repeat("0", 9-len(clean)) + clean

	sum := 0
	for i, r := range padded {
		product := int(r-'0') * (i%2 + 1)
		if product > 9 {
			product = product/10 + product%10
		}
		sum += product
	}
	return sum%10 == 0
}

var mobilePattern = regexp.MustCompile(`^05\d{8}$`)

// IsValidIsraeliMobile accepts ten-digit 05x numbers without separators.
func IsValidIsraeliMobile(mobile string) bool {
	return mobilePattern.MatchString(mobile)
}
