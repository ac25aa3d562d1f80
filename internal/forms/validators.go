package forms

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	nameRe  = regexp.MustCompile(`^[a-zA-ZÀ-ÿ\s\-']{2,50}$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[\+\d\s\(\)\-]{10,20}$`)
)

// MinMessageLength is the minimum length of a non-empty message.
const MinMessageLength = 10

// ValidateName reports whether s is a plausible person name: 2 to 50 latin
// letters (including the Latin-1 accented range), spaces, hyphens or
// apostrophes.
func ValidateName(s string) bool {
	return nameRe.MatchString(s)
}

// ValidateEmail is a permissive shape check: one @ and a dot somewhere after it.
func ValidateEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidatePhone accepts 10 to 20 digits, spaces, parentheses, hyphens and plus signs.
func ValidatePhone(s string) bool {
	return phoneRe.MatchString(s)
}

// ValidateMessage accepts an empty message or one of at least MinMessageLength characters.
func ValidateMessage(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || utf8.RuneCountInString(s) >= MinMessageLength
}

// Validation tags registered by RegisterValidations.
const (
	TagPersonName  = "personname"
	TagLooseEmail  = "looseemail"
	TagPhoneNumber = "phonenumber"
	TagMessage     = "formmessage"
)

// RegisterValidations makes the field validators available as struct tags.
func RegisterValidations(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		TagPersonName:  ValidateName,
		TagLooseEmail:  ValidateEmail,
		TagPhoneNumber: ValidatePhone,
		TagMessage:     ValidateMessage,
	}
	for tag, fn := range rules {
		fn := fn
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return fn(strings.TrimSpace(fl.Field().String()))
		})
		if err != nil {
			return err
		}
	}
	return nil
}
