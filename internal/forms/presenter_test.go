package forms

import (
	"testing"

	"github.com/drsite/drsite-web/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestField() *Field {
	return &Field{Def: FieldDef{Key: Email, Kind: KindEmail}, FormID: "contact"}
}

func TestPresenter_ShowCreatesErrorElementOnce(t *testing.T) {
	rec := &dom.Recorder{}
	p := NewPresenter(rec, fakeRenderer{})
	f := newTestField()

	require.NoError(t, p.ShowFieldError(f, "E-mail is verplicht"))
	require.NoError(t, p.ShowFieldError(f, "Ongeldig e-mailadres"))

	created := 0
	for _, patch := range rec.Patches() {
		if patch.Mode == dom.ModeAfter {
			created++
			assert.Equal(t, "#contact-email", patch.Selector)
		}
	}
	assert.Equal(t, 1, created, "error element must be inserted exactly once")

	updates := rec.Matching("#contact-email-error")
	require.Len(t, updates, 1)
	assert.Equal(t, dom.ModeOuter, updates[0].Mode)
	assert.Contains(t, updates[0].HTML, "Ongeldig e-mailadres")

	assert.True(t, f.Invalid)
	assert.True(t, f.ErrorVisible)
	assert.Equal(t, "Ongeldig e-mailadres", f.Error)
}

func TestPresenter_ClearHidesButKeepsElement(t *testing.T) {
	rec := &dom.Recorder{}
	p := NewPresenter(rec, fakeRenderer{})
	f := newTestField()

	require.NoError(t, p.ShowFieldError(f, "E-mail is verplicht"))
	rec.Reset()

	require.NoError(t, p.ClearFieldError(f))

	assert.False(t, f.Invalid)
	assert.False(t, f.ErrorVisible)
	assert.True(t, f.HasErrorElement)

	hidden := rec.Matching("#contact-email-error")
	require.Len(t, hidden, 1)
	assert.Equal(t, dom.ModeOuter, hidden[0].Mode)
	assert.Contains(t, hidden[0].HTML, "visible=false")
	for _, patch := range rec.Patches() {
		assert.NotEqual(t, dom.ModeRemove, patch.Mode)
	}
}

func TestPresenter_ClearOnClearFieldIsNoop(t *testing.T) {
	rec := &dom.Recorder{}
	p := NewPresenter(rec, fakeRenderer{})
	f := newTestField()

	require.NoError(t, p.ClearFieldError(f))
	assert.Empty(t, rec.Patches())

	require.NoError(t, p.ShowFieldError(f, "E-mail is verplicht"))
	require.NoError(t, p.ClearFieldError(f))
	rec.Reset()

	require.NoError(t, p.ClearFieldError(f))
	assert.Empty(t, rec.Patches())
}

func TestPresenter_RoundTripReusesElement(t *testing.T) {
	rec := &dom.Recorder{}
	p := NewPresenter(rec, fakeRenderer{})
	f := newTestField()

	require.NoError(t, p.ShowFieldError(f, "Ongeldig e-mailadres"))
	first := rec.Patches()
	require.NoError(t, p.ClearFieldError(f))
	rec.Reset()

	require.NoError(t, p.ShowFieldError(f, "Ongeldig e-mailadres"))

	for _, patch := range rec.Patches() {
		assert.NotEqual(t, dom.ModeAfter, patch.Mode, "no second error element")
	}
	again := rec.Matching("#contact-email-error")
	require.Len(t, again, 1)

	var created dom.Patch
	for _, patch := range first {
		if patch.Mode == dom.ModeAfter {
			created = patch
		}
	}
	assert.Equal(t, created.HTML, again[0].HTML, "same message renders the same element")
}
