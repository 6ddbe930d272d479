// internal/domain/billing/card.go
package billing

import (
	"strconv"
	"strings"
	"time"
)

// CardDetails is the card-holder input for a card payment.
type CardDetails struct {
	HolderName string `json:"holder_name"`
	CardNumber string `json:"card_number"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// Validate checks the card input against a reference time and returns a
// field->message map; an empty map means valid. Pure: the same input and
// reference time always yield the same error set.
func (c *CardDetails) Validate(now time.Time) map[string]string {
	errs := make(map[string]string)

	if strings.TrimSpace(c.HolderName) == "" {
		errs["holderName"] = "Card holder name is required"
	}

	number := strings.ReplaceAll(c.CardNumber, " ", "")
	switch {
	case number == "":
		errs["cardNumber"] = "Card number is required"
	case len(number) != 16 || !allDigits(number):
		errs["cardNumber"] = "Card number must be 16 digits"
	case !luhnValid(number):
		errs["cardNumber"] = "Invalid card number"
	}

	if msg := validateExpiry(c.Expiry, now); msg != "" {
		errs["expiry"] = msg
	}

	if c.CVV == "" {
		errs["cvv"] = "CVV is required"
	} else if (len(c.CVV) != 3 && len(c.CVV) != 4) || !allDigits(c.CVV) {
		errs["cvv"] = "CVV must be 3 or 4 digits"
	}

	return errs
}

// validateExpiry checks MM/YY against the reference time using plain
// two-digit year arithmetic, matching what the payment form enforces.
func validateExpiry(expiry string, now time.Time) string {
	if expiry == "" {
		return "Expiry date is required"
	}

	parts := strings.Split(expiry, "/")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return "Invalid expiry date format"
	}

	month, errM := strconv.Atoi(parts[0])
	year, errY := strconv.Atoi(parts[1])
	if errM != nil || errY != nil || month < 1 || month > 12 {
		return "Invalid expiry date format"
	}

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return "Card has expired"
	}

	return ""
}

// luhnValid runs the Luhn checksum: double every second digit from the
// right, subtract 9 when the doubled value exceeds 9, sum; valid iff
// the sum is divisible by 10.
func luhnValid(number string) bool {
	sum := 0
	double := false

	for i := len(number) - 1; i >= 0; i-- {
		digit := int(number[i] - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}

	return sum%10 == 0
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
