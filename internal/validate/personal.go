package validate

import (
	"regexp"
	"strings"
	"unicode"

	"rutabus/internal/domain"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.ValidationError{Field: "email", Msg: "ingresa tu correo"}
	}
	if !emailRe.MatchString(email) {
		return domain.ValidationError{Field: "email", Msg: "correo inválido"}
	}
	return nil
}

func Password(password string) error {
	if password == "" {
		return domain.ValidationError{Field: "password", Msg: "ingresa tu contraseña"}
	}
	if len(password) < 6 {
		return domain.ValidationError{Field: "password", Msg: "la contraseña debe tener al menos 6 caracteres"}
	}
	return nil
}

// Name validates passenger and account names: 3-50 characters, letters and
// spaces only (accented Latin letters included).
func Name(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ValidationError{Field: "name", Msg: "ingresa el nombre"}
	}
	runes := []rune(name)
	if len(runes) < 3 || len(runes) > 50 {
		return domain.ValidationError{Field: "name", Msg: "el nombre debe tener entre 3 y 50 caracteres"}
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && r != ' ' {
			return domain.ValidationError{Field: "name", Msg: "el nombre solo puede contener letras y espacios"}
		}
	}
	return nil
}

// DNI validates a national identity document: exactly 8 digits, and not all
// the same digit.
func DNI(dni string) error {
	dni = strings.TrimSpace(dni)
	if dni == "" {
		return domain.ValidationError{Field: "dni", Msg: "ingresa el DNI"}
	}
	if len(dni) != 8 || !allDigits(dni) {
		return domain.ValidationError{Field: "dni", Msg: "el DNI debe tener 8 dígitos"}
	}
	same := true
	for i := 1; i < len(dni); i++ {
		if dni[i] != dni[0] {
			same = false
			break
		}
	}
	if same {
		return domain.ValidationError{Field: "dni", Msg: "DNI inválido"}
	}
	return nil
}

// PhoneNumber validates a local mobile number: 9 digits starting with 9.
func PhoneNumber(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.ValidationError{Field: "phone_number", Msg: "ingresa el número de celular"}
	}
	if len(phone) != 9 || !allDigits(phone) {
		return domain.ValidationError{Field: "phone_number", Msg: "el celular debe tener 9 dígitos"}
	}
	if phone[0] != '9' {
		return domain.ValidationError{Field: "phone_number", Msg: "el celular debe empezar con 9"}
	}
	return nil
}

// OriginDestination requires both endpoints and rejects a route to itself,
// comparing case-insensitively.
func OriginDestination(origin, destination string) error {
	origin = strings.TrimSpace(origin)
	destination = strings.TrimSpace(destination)
	if origin == "" {
		return domain.ValidationError{Field: "origin", Msg: "ingresa el origen"}
	}
	if destination == "" {
		return domain.ValidationError{Field: "destination", Msg: "ingresa el destino"}
	}
	if strings.EqualFold(origin, destination) {
		return domain.ValidationError{Field: "destination", Msg: "el origen y el destino deben ser distintos"}
	}
	return nil
}

// MaskPhoneNumber hides all but the last three digits.
func MaskPhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	if len(phone) <= 3 {
		return phone
	}
	return strings.Repeat("•", len(phone)-3) + phone[len(phone)-3:]
}
