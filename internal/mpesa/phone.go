package mpesa

import (
	"regexp"
	"strings"
)

// countryCode is the Kenyan calling code; canonical M-Pesa numbers are
// 254 followed by nine digits.
const countryCode = "254"

var nonDigit = regexp.MustCompile(`[^0-9]`)

// NormalizePhone turns heterogeneous phone inputs (0712345678,
// +254 712-345678, 254712345678, ...) into the canonical 254XXXXXXXXX form.
// It never fails: when the result cannot reach the 12-digit shape the
// best-effort transformation is returned as-is and the gateway stays the
// authority on validity. Rejecting locally would block payable but unusually
// formatted numbers.
func NormalizePhone(raw string) string {
	phone := nonDigit.ReplaceAllString(strings.TrimSpace(raw), "")

	// Local trunk prefix: 0712345678 -> 254712345678.
	if strings.HasPrefix(phone, "0") && len(phone) == 10 {
		phone = countryCode + phone[1:]
	}

	if !strings.HasPrefix(phone, countryCode) {
		switch {
		case len(phone) == 9:
			phone = countryCode + phone
		case len(phone) == 10 && strings.HasPrefix(phone, "7"):
			phone = countryCode + phone
		case len(phone) < 12:
			phone = countryCode + phone
		}
	}

	return phone
}
