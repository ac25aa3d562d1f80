package forms

import (
	"fmt"

	"github.com/drsite/drsite-web/internal/dom"
)

// Renderer produces the HTML fragments of a form.
type Renderer interface {
	Field(f *Field) (string, error)
	FieldError(f *Field) (string, error)
	SubmitButton(b *SubmitButton) (string, error)
}

// Presenter reflects field validity on the page.
type Presenter struct {
	emit   dom.Emitter
	render Renderer
}

// NewPresenter creates a presenter writing to emit.
func NewPresenter(emit dom.Emitter, render Renderer) *Presenter {
	return &Presenter{emit: emit, render: render}
}

// ShowFieldError marks f invalid and shows msg in the feedback element right
// after it. The element is created on first use and reused afterwards.
func (p *Presenter) ShowFieldError(f *Field, msg string) error {
	f.Invalid = true
	f.Error = msg
	f.ErrorVisible = true

	if err := p.patchField(f); err != nil {
		return err
	}

	html, err := p.render.FieldError(f)
	if err != nil {
		return fmt.Errorf("render error of %s: %w", f.ElementID(), err)
	}
	if !f.HasErrorElement {
		p.emit.Emit(dom.Elements(dom.ID(f.ElementID()), dom.ModeAfter, html))
		f.HasErrorElement = true
		return nil
	}
	p.emit.Emit(dom.Elements(dom.ID(f.ErrorID()), dom.ModeOuter, html))
	return nil
}

// ClearFieldError removes the invalid marker and hides the feedback element.
// Clearing a field that shows no error emits nothing.
func (p *Presenter) ClearFieldError(f *Field) error {
	if !f.Invalid && !f.ErrorVisible {
		return nil
	}
	f.Invalid = false

	if err := p.patchField(f); err != nil {
		return err
	}

	if !f.HasErrorElement || !f.ErrorVisible {
		f.ErrorVisible = false
		return nil
	}
	f.ErrorVisible = false
	html, err := p.render.FieldError(f)
	if err != nil {
		return fmt.Errorf("render error of %s: %w", f.ElementID(), err)
	}
	p.emit.Emit(dom.Elements(dom.ID(f.ErrorID()), dom.ModeOuter, html))
	return nil
}

func (p *Presenter) patchField(f *Field) error {
	html, err := p.render.Field(f)
	if err != nil {
		return fmt.Errorf("render field %s: %w", f.ElementID(), err)
	}
	p.emit.Emit(dom.Elements(dom.ID(f.ElementID()), dom.ModeOuter, html))
	return nil
}

func (p *Presenter) patchButton(b *SubmitButton) error {
	html, err := p.render.SubmitButton(b)
	if err != nil {
		return fmt.Errorf("render button %s: %w", b.ElementID(), err)
	}
	p.emit.Emit(dom.Elements(dom.ID(b.ElementID()), dom.ModeOuter, html))
	return nil
}
