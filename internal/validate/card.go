package validate

import (
	"strings"
	"time"

	"rutabus/internal/domain"
)

// Sandbox card numbers accepted without a checksum (demo mode). Keep in sync
// with the simulated gateway's forced-outcome numbers.
var testCardAllowList = map[string]bool{
	"4111111111111111": true,
	"4242424242424242": true,
	"5555555555554444": true,
	"378282246310005":  true,
	"30569309025904":   true,
	"4000000000000002": true,
}

// CardBrand is derived from the card number prefix. It only selects the
// expected CVV length; it is not enforced against the network.
type CardBrand string

const (
	BrandVisa       CardBrand = "Visa"
	BrandMastercard CardBrand = "Mastercard"
	BrandAmex       CardBrand = "Amex"
	BrandDiners     CardBrand = "Diners"
	BrandUnknown    CardBrand = "Unknown"
)

func CardBrandFromNumber(number string) CardBrand {
	digits := stripCardSeparators(number)
	switch {
	case strings.HasPrefix(digits, "4"):
		return BrandVisa
	case strings.HasPrefix(digits, "5"):
		return BrandMastercard
	case strings.HasPrefix(digits, "34"), strings.HasPrefix(digits, "37"):
		return BrandAmex
	case strings.HasPrefix(digits, "36"), strings.HasPrefix(digits, "38"):
		return BrandDiners
	default:
		return BrandUnknown
	}
}

// CardNumber validates a card number: digits only after stripping spaces and
// dashes, length 13-19, and a valid Luhn checksum unless the number is in
// the sandbox allow-list.
func CardNumber(number string) error {
	digits := stripCardSeparators(number)
	if digits == "" {
		return domain.ValidationError{Field: "card_number", Msg: "ingresa el número de tarjeta"}
	}
	if !allDigits(digits) {
		return domain.ValidationError{Field: "card_number", Msg: "el número solo debe contener dígitos"}
	}
	if len(digits) < 13 || len(digits) > 19 {
		return domain.ValidationError{Field: "card_number", Msg: "el número debe tener entre 13 y 19 dígitos"}
	}
	if testCardAllowList[digits] {
		return nil
	}
	if !luhnValid(digits) {
		return domain.ValidationError{Field: "card_number", Msg: "número de tarjeta inválido"}
	}
	return nil
}

// ExpiryDate validates "MM/YY". Only the two-digit year is compared against
// the current year; the month is range-checked but not compared.
func ExpiryDate(expiry string) error {
	digits := stripCardSeparators(strings.ReplaceAll(expiry, "/", ""))
	if len(digits) != 4 || !allDigits(digits) {
		return domain.ValidationError{Field: "card_expiry", Msg: "usa el formato MM/AA"}
	}
	month := int(digits[0]-'0')*10 + int(digits[1]-'0')
	year := int(digits[2]-'0')*10 + int(digits[3]-'0')
	if month < 1 || month > 12 {
		return domain.ValidationError{Field: "card_expiry", Msg: "mes inválido"}
	}
	if year < time.Now().Year()%100 {
		return domain.ValidationError{Field: "card_expiry", Msg: "la tarjeta está vencida"}
	}
	return nil
}

// CVV validates a 3-4 digit security code. The brand selects the expected
// length on the card face but is intentionally not enforced here.
func CVV(cvv string, brand CardBrand) error {
	_ = brand
	cvv = strings.TrimSpace(cvv)
	if cvv == "" {
		return domain.ValidationError{Field: "card_cvv", Msg: "ingresa el CVV"}
	}
	if !allDigits(cvv) || len(cvv) < 3 || len(cvv) > 4 {
		return domain.ValidationError{Field: "card_cvv", Msg: "CVV inválido"}
	}
	return nil
}

// CardHolderName applies the same rule as passenger names.
func CardHolderName(name string) error {
	if err := Name(name); err != nil {
		return domain.ValidationError{Field: "card_holder", Msg: "nombre del titular inválido"}
	}
	return nil
}

// LastFourDigits returns the last four digits of a card number, or the
// whole digit string when shorter.
func LastFourDigits(number string) string {
	digits := stripCardSeparators(number)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// MaskCardNumber renders "•••• •••• •••• 1234".
func MaskCardNumber(number string) string {
	return "•••• •••• •••• " + LastFourDigits(number)
}

// FormatCardNumber groups digits in blocks of four for display.
func FormatCardNumber(number string) string {
	digits := stripCardSeparators(number)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiryDate inserts the slash into "MMYY" style input.
func FormatExpiryDate(expiry string) string {
	digits := stripCardSeparators(strings.ReplaceAll(expiry, "/", ""))
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}

func stripCardSeparators(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(s))
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
