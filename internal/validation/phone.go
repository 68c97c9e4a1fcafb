// Package validation содержит функции валидации пользовательского ввода.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrPhoneTooShort возвращается, когда после очистки номер короче национального формата.
var ErrPhoneTooShort = errors.New("phone number is too short")

// nationalDigits — длина национального номера без кода страны.
const nationalDigits = 10

// NormalizePhone очищает номер от нецифровых символов и приводит его
// к международному виду. Домашний префикс 8 переписывается на код страны +7.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) < nationalDigits {
		return "", ErrPhoneTooShort
	}

	switch {
	case len(digits) == nationalDigits:
		return "+7" + digits, nil
	case strings.HasPrefix(digits, "8"):
		return "+7" + digits[1:], nil
	default:
		return "+" + digits, nil
	}
}

// NormalizeContactPhone приводит номер из телеграм-контакта к виду с плюсом.
// Номеру из контакта доверяем и длину не проверяем.
func NormalizeContactPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "+") {
		return raw
	}
	return "+" + raw
}

// FormatPhoneDisplay форматирует нормализованный номер для показа:
// +7 999 123-45-67. Номера другой длины возвращаются как есть.
func FormatPhoneDisplay(normalized string) string {
	digits := strings.TrimPrefix(normalized, "+")
	if len(digits) != nationalDigits+1 {
		return normalized
	}
	return fmt.Sprintf("+%s %s %s-%s-%s",
		digits[:1], digits[1:4], digits[4:7], digits[7:9], digits[9:])
}
