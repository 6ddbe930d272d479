package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2025, time.October, 3, 12, 0, 0, 0, time.UTC)

func validCard() CardDetails {
	return CardDetails{
		HolderName: "Amara Perera",
		CardNumber: "4532015112830366",
		Expiry:     "12/26",
		CVV:        "123",
	}
}

func TestCardValidate_Valid(t *testing.T) {
	card := validCard()
	assert.Empty(t, card.Validate(testNow))
}

func TestCardValidate_LuhnAccepts(t *testing.T) {
	card := validCard()
	card.CardNumber = "4532015112830366"
	errs := card.Validate(testNow)
	assert.NotContains(t, errs, "cardNumber")
}

func TestCardValidate_LuhnRejects(t *testing.T) {
	card := validCard()
	card.CardNumber = "4532015112830367"
	errs := card.Validate(testNow)
	assert.Equal(t, "Invalid card number", errs["cardNumber"])
}

func TestCardValidate_NumberWithSpaces(t *testing.T) {
	card := validCard()
	card.CardNumber = "4532 0151 1283 0366"
	assert.Empty(t, card.Validate(testNow))
}

func TestCardValidate_NumberLength(t *testing.T) {
	card := validCard()
	card.CardNumber = "45320151128303"
	errs := card.Validate(testNow)
	assert.Equal(t, "Card number must be 16 digits", errs["cardNumber"])
}

func TestCardValidate_ExpiredCard(t *testing.T) {
	card := validCard()
	card.Expiry = "03/24"
	errs := card.Validate(testNow)
	assert.Equal(t, "Card has expired", errs["expiry"])
}

func TestCardValidate_ExpiryCurrentMonthStillValid(t *testing.T) {
	card := validCard()
	card.Expiry = "10/25"
	errs := card.Validate(testNow)
	assert.NotContains(t, errs, "expiry")
}

func TestCardValidate_ExpiryPreviousMonthExpired(t *testing.T) {
	card := validCard()
	card.Expiry = "09/25"
	errs := card.Validate(testNow)
	assert.Equal(t, "Card has expired", errs["expiry"])
}

func TestCardValidate_ExpiryFormat(t *testing.T) {
	for _, expiry := range []string{"1226", "13/26", "1/26", "12/2026", "ab/cd"} {
		card := validCard()
		card.Expiry = expiry
		errs := card.Validate(testNow)
		assert.Equal(t, "Invalid expiry date format", errs["expiry"], "expiry %q", expiry)
	}
}

func TestCardValidate_MissingFields(t *testing.T) {
	card := CardDetails{}
	errs := card.Validate(testNow)
	assert.Equal(t, "Card holder name is required", errs["holderName"])
	assert.Equal(t, "Card number is required", errs["cardNumber"])
	assert.Equal(t, "Expiry date is required", errs["expiry"])
	assert.Equal(t, "CVV is required", errs["cvv"])
}

func TestCardValidate_CVV(t *testing.T) {
	card := validCard()
	card.CVV = "12"
	errs := card.Validate(testNow)
	assert.Equal(t, "CVV must be 3 or 4 digits", errs["cvv"])

	card.CVV = "1234"
	assert.Empty(t, card.Validate(testNow))

	card.CVV = "12a"
	errs = card.Validate(testNow)
	assert.Equal(t, "CVV must be 3 or 4 digits", errs["cvv"])
}

func TestCardValidate_DeterministicForSameInput(t *testing.T) {
	card := validCard()
	card.Expiry = "03/24"
	first := card.Validate(testNow)
	second := card.Validate(testNow)
	assert.Equal(t, first, second)
}
