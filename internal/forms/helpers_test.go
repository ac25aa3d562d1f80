package forms

import (
	"context"
	"fmt"
	"sync"

	"github.com/drsite/drsite-web/internal/notify"
)

type fakeRenderer struct{}

func (fakeRenderer) Field(f *Field) (string, error) {
	return fmt.Sprintf(`<input id="%s" value="%s" checked=%t invalid=%t>`, f.ElementID(), f.Value, f.Checked, f.Invalid), nil
}

func (fakeRenderer) FieldError(f *Field) (string, error) {
	return fmt.Sprintf(`<div id="%s" visible=%t>%s</div>`, f.ErrorID(), f.ErrorVisible, f.Error), nil
}

func (fakeRenderer) SubmitButton(b *SubmitButton) (string, error) {
	label := b.Label
	if b.Busy {
		label = b.BusyLabel
	}
	return fmt.Sprintf(`<button id="%s" disabled=%t>%s</button>`, b.ElementID(), b.Disabled, label), nil
}

type notice struct {
	text     string
	severity notify.Severity
}

type fakeNotifier struct {
	mu      sync.Mutex
	notices []notice
}

func (n *fakeNotifier) Notify(text string, severity notify.Severity) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice{text: text, severity: severity})
	return fmt.Sprintf("notice-%d", len(n.notices)), nil
}

func (n *fakeNotifier) all() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notice, len(n.notices))
	copy(out, n.notices)
	return out
}

type submitterFunc func(ctx context.Context, s *Submission) error

func (f submitterFunc) Submit(ctx context.Context, s *Submission) error {
	return f(ctx, s)
}

func contactDefinition() Definition {
	return Definition{
		ID:          "contact",
		Page:        "contact",
		SubmitLabel: "Versturen",
		Fields: []FieldDef{
			{Key: FirstName, Kind: KindText},
			{Key: LastName, Kind: KindText},
			{Key: Email, Kind: KindEmail},
			{Key: Phone, Kind: KindTel},
			{Key: Message, Kind: KindTextarea},
			{Key: Subject, Kind: KindSelect, Required: true, Options: []Option{{Value: "advies", Label: "Advies"}}},
			{Key: Privacy, Kind: KindCheckbox},
		},
	}
}

func validValues() map[FieldKey]Value {
	return map[FieldKey]Value{
		FirstName: {Text: "Jan"},
		LastName:  {Text: "de Vries"},
		Email:     {Text: "jan@example.nl"},
		Phone:     {Text: "0612345678"},
		Message:   {Text: ""},
		Subject:   {Text: "advies"},
		Privacy:   {Checked: true},
	}
}
