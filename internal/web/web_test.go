package web

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/notify"
	"github.com/drsite/drsite-web/internal/page"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer("nl")
	require.NoError(t, err)
	return r
}

func TestDefinitions_Embedded(t *testing.T) {
	defs, err := Definitions()
	require.NoError(t, err)

	contact, ok := FindDefinition(defs, "contact")
	require.True(t, ok)
	assert.Equal(t, "contact", contact.Page)
	assert.True(t, contact.HasSubmit())

	subject, ok := contact.Field(forms.Subject)
	require.True(t, ok)
	assert.True(t, subject.Required)

	quote, ok := FindDefinition(defs, "quote")
	require.True(t, ok)
	assert.Equal(t, "offerte", quote.Page)

	for _, def := range defs {
		_, ok := LookupPage(def.Page)
		assert.True(t, ok, "form %s is bound to an unknown page", def.ID)
	}
}

func TestParseDefinitions_Rejects(t *testing.T) {
	_, err := ParseDefinitions([]byte("forms: [{id: a, fields: [{key: company, kind: text}]}]"))
	assert.Error(t, err)

	_, err = ParseDefinitions([]byte("forms: [{id: a}, {id: a}]"))
	assert.Error(t, err)

	_, err = ParseDefinitions([]byte("forms: {"))
	assert.Error(t, err)
}

func TestIsActive(t *testing.T) {
	assert.True(t, IsActive("/", "/"))
	assert.True(t, IsActive("/", "/index.html"))
	assert.True(t, IsActive("/contact", "/contact"))
	assert.False(t, IsActive("/contact", "/"))
	assert.False(t, IsActive("/", "/contact"))
}

func TestRenderer_Field(t *testing.T) {
	r := newTestRenderer(t)

	f := &forms.Field{
		Def:     forms.FieldDef{Key: forms.Email, Kind: forms.KindEmail, Label: "E-mail"},
		FormID:  "contact",
		BaseURL: "/pages/p1/forms/contact",
		Value:   `"><script>`,
	}

	html, err := r.Field(f)
	require.NoError(t, err)
	assert.Contains(t, html, `id="contact-email"`)
	assert.Contains(t, html, `type="email"`)
	assert.Contains(t, html, `data-bind="forms.contact.email"`)
	assert.NotContains(t, html, "is-invalid")
	assert.NotContains(t, html, "<script>")

	f.Invalid = true
	html, err = r.Field(f)
	require.NoError(t, err)
	assert.Contains(t, html, "is-invalid")
}

func TestRenderer_FieldKinds(t *testing.T) {
	r := newTestRenderer(t)

	sel := &forms.Field{
		Def: forms.FieldDef{Key: forms.Subject, Kind: forms.KindSelect, Options: []forms.Option{
			{Value: "advies", Label: "Advies"},
			{Value: "overig", Label: "Overig"},
		}},
		FormID: "contact",
		Value:  "overig",
	}
	html, err := r.Field(sel)
	require.NoError(t, err)
	assert.Contains(t, html, "<select")
	assert.Contains(t, html, `<option value="overig" selected>`)

	box := &forms.Field{Def: forms.FieldDef{Key: forms.Privacy, Kind: forms.KindCheckbox}, FormID: "contact", Checked: true}
	html, err = r.Field(box)
	require.NoError(t, err)
	assert.Contains(t, html, `id="contact-privacy"`)
	assert.Contains(t, html, "checked")

	area := &forms.Field{Def: forms.FieldDef{Key: forms.Message, Kind: forms.KindTextarea}, FormID: "contact", Value: "Hallo"}
	html, err = r.Field(area)
	require.NoError(t, err)
	assert.Contains(t, html, ">Hallo</textarea>")
}

func TestRenderer_FieldError(t *testing.T) {
	r := newTestRenderer(t)
	f := &forms.Field{Def: forms.FieldDef{Key: forms.Email}, FormID: "contact", Error: "Ongeldig e-mailadres", ErrorVisible: true}

	html, err := r.FieldError(f)
	require.NoError(t, err)
	assert.Equal(t, `<div id="contact-email-error" class="invalid-feedback d-block">Ongeldig e-mailadres</div>`, html)

	f.ErrorVisible = false
	html, err = r.FieldError(f)
	require.NoError(t, err)
	assert.Contains(t, html, "hidden")
	assert.NotContains(t, html, "d-block")
}

func TestRenderer_SubmitButton(t *testing.T) {
	r := newTestRenderer(t)
	b := &forms.SubmitButton{FormID: "contact", Label: "Versturen", BusyLabel: "Verzenden..."}

	html, err := r.SubmitButton(b)
	require.NoError(t, err)
	assert.Contains(t, html, ">Versturen</button>")
	assert.NotContains(t, html, "disabled")

	b.Disabled, b.Busy = true, true
	html, err = r.SubmitButton(b)
	require.NoError(t, err)
	assert.Contains(t, html, "disabled")
	assert.Contains(t, html, "spinner-border")
	assert.Contains(t, html, "Verzenden...")
}

func TestRenderer_Notice(t *testing.T) {
	r := newTestRenderer(t)

	html, err := r.NoticeContainer()
	require.NoError(t, err)
	assert.Contains(t, html, `id="notification-container"`)

	n := &notify.Notice{ID: "notice-1", Text: "Bedankt!", Severity: notify.Success, Shown: true, DismissURL: "/pages/p1/notices/notice-1/dismiss"}
	html, err = r.Notice(n)
	require.NoError(t, err)
	assert.Contains(t, html, "alert alert-success alert-dismissible fade show")
	assert.Contains(t, html, `aria-label="Sluiten"`)
	assert.Contains(t, html, `data-on:click="@post('\/pages\/p1\/notices\/notice-1\/dismiss')"`)

	n.Shown = false
	html, err = r.Notice(n)
	require.NoError(t, err)
	assert.NotContains(t, html, "fade show")
}

type nopSubmitter struct{}

func (nopSubmitter) Submit(context.Context, *forms.Submission) error { return nil }

func TestRenderer_Page(t *testing.T) {
	r := newTestRenderer(t)
	defs, err := Definitions()
	require.NoError(t, err)

	store := page.NewStore(page.Config{Forms: defs, Renderer: r, Submitter: nopSubmitter{}, Timing: forms.DefaultTiming()})
	t.Cleanup(store.Close)

	s := store.Open("contact", "nl")
	info, _ := LookupPage("contact")

	data, err := NewPageData(s, info, "/contact", true)
	require.NoError(t, err)
	require.Len(t, data.Forms, 1)
	assert.Contains(t, data.Signals, `"contact":{`)
	assert.Contains(t, data.Signals, `"privacy":false`)

	w := httptest.NewRecorder()
	require.NoError(t, r.Instance("contact", data).Render(w))

	body := w.Body.String()
	assert.Contains(t, body, `<html lang="nl">`)
	assert.Contains(t, body, `id="contact-firstName"`)
	assert.Contains(t, body, `id="contact-submit"`)
	assert.Contains(t, body, "/pages/"+s.ID+"/stream")
	assert.Contains(t, body, `id="cookieBanner"`)
	assert.Contains(t, body, `aria-current="page"`)
}

func TestRenderer_PageWithoutBanner(t *testing.T) {
	r := newTestRenderer(t)
	store := page.NewStore(page.Config{Renderer: r, Submitter: nopSubmitter{}})
	t.Cleanup(store.Close)

	s := store.Open("index", "nl")
	info, _ := LookupPage("index")
	data, err := NewPageData(s, info, "/index.html", false)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, r.Instance("index", data).Render(w))

	assert.NotContains(t, w.Body.String(), "cookieBanner")
	assert.Contains(t, w.Body.String(), `class="c-nav__link active" href="/" aria-current="page"`)
}

func TestStatic(t *testing.T) {
	f, err := Static().Open("thank_you.html")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
