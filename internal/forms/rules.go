package forms

import (
	"github.com/drsite/drsite-web/internal/i18n"
)

// ValidationResult is the outcome of checking one field.
type ValidationResult struct {
	Valid   bool
	Message string
}

// Aggregate is the outcome of checking every applicable field of a form.
type Aggregate struct {
	Valid   bool
	Results map[FieldKey]ValidationResult
	// Order lists the checked keys in check order.
	Order []FieldKey
}

// Failed returns the keys of the invalid fields in check order.
func (a Aggregate) Failed() []FieldKey {
	var out []FieldKey
	for _, key := range a.Order {
		if !a.Results[key].Valid {
			out = append(out, key)
		}
	}
	return out
}

type textRule struct {
	validate      func(string) bool
	requiredMsg   string
	invalidMsgKey string
}

var textRules = map[FieldKey]textRule{
	FirstName: {ValidateName, i18n.FirstNameRequired, i18n.FirstNameInvalid},
	LastName:  {ValidateName, i18n.LastNameRequired, i18n.LastNameInvalid},
	Email:     {ValidateEmail, i18n.EmailRequired, i18n.EmailInvalid},
	Phone:     {ValidatePhone, i18n.PhoneRequired, i18n.PhoneInvalid},
}

var selectMessages = map[FieldKey]string{
	Service: i18n.ServiceRequired,
	Subject: i18n.SubjectRequired,
}

// CheckField validates one field. The second result is false when the field
// is not applicable (an optional select), in which case it is neither shown
// nor cleared.
func CheckField(f *Field, tr *i18n.Translator) (ValidationResult, bool) {
	in := f.input()
	key := f.Key()

	if rule, ok := textRules[key]; ok {
		switch {
		case in.Text == "":
			return ValidationResult{Message: tr.T(rule.requiredMsg)}, true
		case !rule.validate(in.Text):
			return ValidationResult{Message: tr.T(rule.invalidMsgKey)}, true
		}
		return ValidationResult{Valid: true}, true
	}

	switch key {
	case Message:
		if !ValidateMessage(in.Text) {
			return ValidationResult{Message: tr.T(i18n.MessageTooShort)}, true
		}
		return ValidationResult{Valid: true}, true
	case Service, Subject:
		if !f.Def.Required {
			return ValidationResult{Valid: true}, false
		}
		if in.Text == "" {
			return ValidationResult{Message: tr.T(selectMessages[key])}, true
		}
		return ValidationResult{Valid: true}, true
	case Privacy:
		if !in.Checked {
			return ValidationResult{Message: tr.T(i18n.PrivacyRequired)}, true
		}
		return ValidationResult{Valid: true}, true
	}

	return ValidationResult{Valid: true}, false
}

// Validate runs the full battery over reg without side effects.
// Every applicable field is checked; there is no short-circuit.
func Validate(reg *Registry, tr *i18n.Translator) Aggregate {
	agg := Aggregate{Valid: true, Results: make(map[FieldKey]ValidationResult)}
	for _, key := range CheckOrder {
		f := reg.Lookup(key)
		if f == nil {
			continue
		}
		res, applicable := CheckField(f, tr)
		if !applicable {
			continue
		}
		agg.Results[key] = res
		agg.Order = append(agg.Order, key)
		agg.Valid = agg.Valid && res.Valid
	}
	return agg
}
