package onboarding

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength     = 2
	MinPhoneDigits    = 7
	MinPasswordLength = 6
)

var (
	ErrOutOfOrder  = errors.New("onboarding: step submitted out of order")
	ErrUnknownStep = errors.New("onboarding: unknown step")
)

var (
	genders   = []string{"hombre", "mujer", "otro"}
	interests = []string{"hombres", "mujeres", "ambos"}

	photoExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".webp": true,
		".heic": true,
	}
)

// ValidationError is a rejected answer. Message is meant for the user.
type ValidationError struct {
	Step    Step
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(step Step, format string, args ...any) *ValidationError {
	return &ValidationError{Step: step, Message: fmt.Sprintf(format, args...)}
}

// Genders returns the accepted gender answers.
func Genders() []string { return append([]string(nil), genders...) }

// Interests returns the accepted interested-in answers.
func Interests() []string { return append([]string(nil), interests...) }

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

func validateName(name string) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < MinNameLength {
		return invalid(StepName, "El nombre debe tener al menos %d caracteres.", MinNameLength)
	}
	return nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if isDigit(r) {
			n++
		}
	}
	return n
}

func validatePhone(phone string) error {
	if countDigits(phone) < MinPhoneDigits {
		return invalid(StepPhone, "El teléfono debe tener al menos %d dígitos.", MinPhoneDigits)
	}
	return nil
}

// normalizePhone keeps the digits and a leading plus sign.
func normalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	var b strings.Builder
	if strings.HasPrefix(phone, "+") {
		b.WriteByte('+')
	}
	for _, r := range phone {
		if isDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validatePhoto(path string) error {
	if strings.TrimSpace(path) == "" {
		return invalid(StepPhoto, "Selecciona una foto.")
	}
	if !photoExtensions[strings.ToLower(filepath.Ext(path))] {
		return invalid(StepPhoto, "Formato de imagen no soportado. Usa jpg, png, webp o heic.")
	}

	fi, err := statFn(path)
	if err != nil || fi.IsDir() {
		return invalid(StepPhoto, "No se encuentra la foto %q.", path)
	}
	return nil
}
