package forms

import (
	"fmt"
	"strings"
)

// FieldKey identifies a form field. Every key maps to exactly one rule.
type FieldKey string

const (
	FirstName FieldKey = "firstName"
	LastName  FieldKey = "lastName"
	Email     FieldKey = "email"
	Phone     FieldKey = "phone"
	Message   FieldKey = "message"
	Service   FieldKey = "service"
	Subject   FieldKey = "subject"
	Privacy   FieldKey = "privacy"
)

// CheckOrder is the order in which fields are validated on submit.
var CheckOrder = []FieldKey{FirstName, LastName, Email, Phone, Message, Service, Subject, Privacy}

// Known reports whether k is one of the supported field keys.
func (k FieldKey) Known() bool {
	for _, key := range CheckOrder {
		if key == k {
			return true
		}
	}
	return false
}

// Kind is the HTML control used to render a field.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindTel      Kind = "tel"
	KindTextarea Kind = "textarea"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
)

// Option is one choice of a select field.
type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

// FieldDef describes a field of a form definition.
type FieldDef struct {
	Key         FieldKey `yaml:"key"`
	Kind        Kind     `yaml:"kind"`
	Label       string   `yaml:"label"`
	Placeholder string   `yaml:"placeholder"`
	// Required only matters for select fields; the other keys have a fixed policy.
	Required bool     `yaml:"required"`
	Options  []Option `yaml:"options"`
}

// Definition describes one form of the site.
type Definition struct {
	ID          string     `yaml:"id"`
	Page        string     `yaml:"page"`
	Title       string     `yaml:"title"`
	SubmitLabel string     `yaml:"submit_label"`
	Fields      []FieldDef `yaml:"fields"`
}

// HasSubmit reports whether the form renders a submit control.
func (d Definition) HasSubmit() bool {
	return strings.TrimSpace(d.SubmitLabel) != ""
}

// Field returns the definition of key, if the form has it.
func (d Definition) Field(key FieldKey) (FieldDef, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldDef{}, false
}

// Validate checks the definition for unknown or duplicate keys.
func (d Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("form definition without id")
	}
	seen := make(map[FieldKey]bool, len(d.Fields))
	for _, f := range d.Fields {
		if !f.Key.Known() {
			return fmt.Errorf("form %s: unknown field key %q", d.ID, f.Key)
		}
		if seen[f.Key] {
			return fmt.Errorf("form %s: duplicate field key %q", d.ID, f.Key)
		}
		seen[f.Key] = true
		if f.Kind == KindSelect && len(f.Options) == 0 {
			return fmt.Errorf("form %s: select field %q has no options", d.ID, f.Key)
		}
	}
	return nil
}

// Value is the raw state of a control as reported by the browser.
type Value struct {
	Text    string
	Checked bool
}

// Field is the rendered state of one field on a page.
type Field struct {
	Def     FieldDef
	FormID  string
	BaseURL string

	Value   string
	Checked bool

	Invalid bool
	Error   string
	// HasErrorElement is set once the feedback element exists next to the field.
	HasErrorElement bool
	ErrorVisible    bool
}

// Key returns the field key.
func (f *Field) Key() FieldKey {
	return f.Def.Key
}

// ElementID is the DOM id of the field control.
func (f *Field) ElementID() string {
	return f.FormID + "-" + string(f.Def.Key)
}

// ErrorID is the DOM id of the field's feedback element.
func (f *Field) ErrorID() string {
	return f.ElementID() + "-error"
}

// Signal is the client-side signal path bound to the control.
func (f *Field) Signal() string {
	return "forms." + f.FormID + "." + string(f.Def.Key)
}

func (f *Field) set(v Value) {
	if f.Def.Kind == KindCheckbox {
		f.Checked = v.Checked
		return
	}
	f.Value = v.Text
}

func (f *Field) reset() {
	f.Value = ""
	f.Checked = false
}

func (f *Field) input() Value {
	return Value{Text: strings.TrimSpace(f.Value), Checked: f.Checked}
}

// SubmitButton is the rendered state of a form's submit control.
type SubmitButton struct {
	FormID    string
	Label     string
	BusyLabel string
	Disabled  bool
	Busy      bool
}

// ElementID is the DOM id of the button.
func (b *SubmitButton) ElementID() string {
	return b.FormID + "-submit"
}

// Registry maps field keys to the fields present in one bound form.
// It is built once when the form is bound and never re-queried.
type Registry struct {
	fields map[FieldKey]*Field
	order  []*Field
}

// NewRegistry builds the registry for def. baseURL prefixes the field event endpoints.
func NewRegistry(def Definition, baseURL string) *Registry {
	r := &Registry{fields: make(map[FieldKey]*Field, len(def.Fields))}
	for _, fd := range def.Fields {
		f := &Field{Def: fd, FormID: def.ID, BaseURL: baseURL}
		r.fields[fd.Key] = f
		r.order = append(r.order, f)
	}
	return r
}

// Lookup returns the field for key, or nil when the form does not have it.
func (r *Registry) Lookup(key FieldKey) *Field {
	return r.fields[key]
}

// Fields returns the fields in definition order.
func (r *Registry) Fields() []*Field {
	return r.order
}

// Assign copies browser values into the fields. Keys the form does not have are ignored.
func (r *Registry) Assign(values map[FieldKey]Value) {
	for key, v := range values {
		if f := r.fields[key]; f != nil {
			f.set(v)
		}
	}
}
