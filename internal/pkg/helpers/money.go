package helpers

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrAmountRequired is returned for blank amount input
	ErrAmountRequired = errors.New("amount is required")
	// ErrAmountNotNumeric is returned when the input is not a number
	ErrAmountNotNumeric = errors.New("amount must be a number")
	// ErrAmountNotPositive is returned when the amount is zero or negative
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	// ErrAmountPrecision is returned for fractions of a cent
	ErrAmountPrecision = errors.New("amount cannot have more than 2 decimal places")
	// ErrAmountTooLarge is returned when the amount does not fit NUMERIC(12,2)
	ErrAmountTooLarge = errors.New("amount must be less than 10,000,000,000")
)

// amountLimit is the first value with more than AmountIntegerDigits integer digits
var amountLimit = decimal.New(1, AmountIntegerDigits)

// Amount columns are NUMERIC(12,2).
const (
	AmountIntegerDigits = 10
	AmountScale         = 2
)

var (
	amountPrinter = message.NewPrinter(language.English)
	titleCaser    = cases.Title(language.English)
)

// ParseAmount parses a decimal amount typed by a person.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, ErrAmountRequired
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrAmountNotNumeric
	}
	return amount, nil
}

// ParsePositiveAmount parses raw and requires the result to be greater than
// zero and storable as a money column.
func ParsePositiveAmount(raw string) (decimal.Decimal, error) {
	amount, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() {
		return decimal.Zero, ErrAmountNotPositive
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return decimal.Zero, ErrAmountPrecision
	}
	if amount.GreaterThanOrEqual(amountLimit) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return amount, nil
}

// FormatAmount renders a whole-shilling amount with thousands separators,
// e.g. 12000 -> "12,000".
func FormatAmount(amount decimal.Decimal) string {
	return amountPrinter.Sprintf("%d", amount.Round(0).IntPart())
}

// TitleCase turns an enum value such as "under_review" into "Under Review".
func TitleCase(value string) string {
	return titleCaser.String(strings.ReplaceAll(value, "_", " "))
}
