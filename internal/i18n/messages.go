// Package i18n holds the localized user-facing strings of the site.
//
// Strings are registered in the golang.org/x/text message catalog under
// stable keys. Dutch is the site language; English is kept for the JSON API
// and tests.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys
const (
	FirstNameRequired = "field.firstName.required"
	FirstNameInvalid  = "field.firstName.invalid"
	LastNameRequired  = "field.lastName.required"
	LastNameInvalid   = "field.lastName.invalid"
	EmailRequired     = "field.email.required"
	EmailInvalid      = "field.email.invalid"
	PhoneRequired     = "field.phone.required"
	PhoneInvalid      = "field.phone.invalid"
	MessageTooShort   = "field.message.tooShort"
	ServiceRequired   = "field.service.required"
	SubjectRequired   = "field.subject.required"
	PrivacyRequired   = "field.privacy.required"

	FormInvalid      = "form.invalid"
	FormSent         = "form.sent"
	FormFailed       = "form.failed"
	SubmitBusyLabel  = "form.submit.busy"
	NoticeCloseLabel = "notice.close"
)

var catalog = map[language.Tag]map[string]string{
	language.Dutch: {
		FirstNameRequired: "Voornaam is verplicht",
		FirstNameInvalid:  "Ongeldige voornaam",
		LastNameRequired:  "Achternaam is verplicht",
		LastNameInvalid:   "Ongeldige achternaam",
		EmailRequired:     "E-mail is verplicht",
		EmailInvalid:      "Ongeldig e-mailadres",
		PhoneRequired:     "Telefoonnummer is verplicht",
		PhoneInvalid:      "Ongeldig telefoonnummer",
		MessageTooShort:   "Bericht moet minimaal 10 tekens bevatten",
		ServiceRequired:   "Selecteer een dienst",
		SubjectRequired:   "Selecteer een onderwerp",
		PrivacyRequired:   "U moet akkoord gaan met het privacybeleid",
		FormInvalid:       "Controleer de formuliervelden",
		FormSent:          "Bedankt! Uw bericht is verzonden.",
		FormFailed:        "Verzenden mislukt, probeer het later opnieuw",
		SubmitBusyLabel:   "Verzenden...",
		NoticeCloseLabel:  "Sluiten",
	},
	language.English: {
		FirstNameRequired: "First name is required",
		FirstNameInvalid:  "Invalid first name",
		LastNameRequired:  "Last name is required",
		LastNameInvalid:   "Invalid last name",
		EmailRequired:     "Email is required",
		EmailInvalid:      "Invalid email address",
		PhoneRequired:     "Phone number is required",
		PhoneInvalid:      "Invalid phone number",
		MessageTooShort:   "Message must be at least 10 characters",
		ServiceRequired:   "Select a service",
		SubjectRequired:   "Select a subject",
		PrivacyRequired:   "You must accept the privacy policy",
		FormInvalid:       "Please check the form fields",
		FormSent:          "Thank you! Your message has been sent.",
		FormFailed:        "Sending failed, please try again later",
		SubmitBusyLabel:   "Sending...",
		NoticeCloseLabel:  "Close",
	},
}

var supported = []language.Tag{language.Dutch, language.English}

var matcher = language.NewMatcher(supported)

func init() {
	for tag, entries := range catalog {
		for key, text := range entries {
			if err := message.SetString(tag, key, text); err != nil {
				panic(err)
			}
		}
	}
}

// Translator resolves message keys for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

// New returns a translator for the best supported match of lang.
// Unknown or empty languages fall back to Dutch.
func New(lang string) *Translator {
	tag := language.Dutch
	if lang != "" {
		if parsed, err := language.Parse(lang); err == nil {
			_, idx, confidence := matcher.Match(parsed)
			if confidence != language.No {
				tag = supported[idx]
			}
		}
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// T returns the localized text for key.
func (t *Translator) T(key string) string {
	return t.printer.Sprintf(key)
}

// Lang returns the BCP 47 tag of the translator.
func (t *Translator) Lang() string {
	return t.tag.String()
}
