package forms

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/drsite/drsite-web/internal/dom"
	"github.com/drsite/drsite-web/internal/i18n"
	"github.com/drsite/drsite-web/internal/notify"
	"github.com/drsite/drsite-web/pkg/errors"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"go.uber.org/zap"
)

// ErrBusy is returned when a submit arrives while the form is not idle.
var ErrBusy = errors.ConflictError("form submission in progress")

// State of a form's submission lifecycle.
type State int

const (
	Idle State = iota
	Validating
	Invalid
	Submitting
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Invalid:
		return "invalid"
	case Submitting:
		return "submitting"
	case Settled:
		return "settled"
	}
	return "unknown"
}

// Outcome tells the caller what a submit event led to.
type Outcome string

const (
	OutcomeInvalid    Outcome = "invalid"
	OutcomeSubmitting Outcome = "submitting"
	// OutcomeValidated means the form was valid but has no submit control.
	OutcomeValidated Outcome = "validated"
)

// DefaultRedirectURL is where the browser goes after a successful submission.
const DefaultRedirectURL = "thank_you.html"

// Submission is the payload handed to a Submitter.
type Submission struct {
	FormID      string
	PageID      string
	Lang        string
	Values      map[FieldKey]string
	Consent     bool
	SubmittedAt time.Time
}

// Submitter delivers a valid submission to its destination.
type Submitter interface {
	Submit(ctx context.Context, s *Submission) error
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Notify(text string, severity notify.Severity) (string, error)
}

// Timing holds the user-visible delays of the submission lifecycle.
type Timing struct {
	// MinBusy is the minimum time the submit control stays busy.
	MinBusy time.Duration
	// RedirectDelay separates the success notice from the redirect.
	RedirectDelay time.Duration
	// SubmitTimeout bounds a single Submitter call.
	SubmitTimeout time.Duration
}

// DefaultTiming returns the delays the site was designed with.
func DefaultTiming() Timing {
	return Timing{
		MinBusy:       1500 * time.Millisecond,
		RedirectDelay: 1000 * time.Millisecond,
		SubmitTimeout: 10 * time.Second,
	}
}

// ControllerConfig wires a Controller.
type ControllerConfig struct {
	Definition  Definition
	PageID      string
	BaseURL     string
	Emitter     dom.Emitter
	Renderer    Renderer
	Notifier    Notifier
	Submitter   Submitter
	Translator  *i18n.Translator
	Timing      Timing
	RedirectURL string
}

// Controller owns the validation and submission lifecycle of one bound form.
type Controller struct {
	mu        sync.Mutex
	def       Definition
	pageID    string
	fields    *Registry
	button    *SubmitButton
	state     State
	presenter *Presenter
	emit      dom.Emitter
	notifier  Notifier
	submitter Submitter
	tr        *i18n.Translator
	timing    Timing
	redirect  string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewController binds a form. ctx bounds the lifetime of background work.
func NewController(ctx context.Context, cfg ControllerConfig) *Controller {
	ctx, cancel := context.WithCancel(ctx)
	c := &Controller{
		def:       cfg.Definition,
		pageID:    cfg.PageID,
		fields:    NewRegistry(cfg.Definition, cfg.BaseURL),
		presenter: NewPresenter(cfg.Emitter, cfg.Renderer),
		emit:      cfg.Emitter,
		notifier:  cfg.Notifier,
		submitter: cfg.Submitter,
		tr:        cfg.Translator,
		timing:    cfg.Timing,
		redirect:  cfg.RedirectURL,
		ctx:       ctx,
		cancel:    cancel,
	}
	if c.redirect == "" {
		c.redirect = DefaultRedirectURL
	}
	if cfg.Definition.HasSubmit() {
		c.button = &SubmitButton{
			FormID:    cfg.Definition.ID,
			Label:     cfg.Definition.SubmitLabel,
			BusyLabel: c.tr.T(i18n.SubmitBusyLabel),
		}
	}
	return c
}

// ID returns the form id.
func (c *Controller) ID() string {
	return c.def.ID
}

// Definition returns the bound form definition.
func (c *Controller) Definition() Definition {
	return c.def
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fields returns copies of the field states in definition order.
func (c *Controller) Fields() []Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Field, 0, len(c.fields.Fields()))
	for _, f := range c.fields.Fields() {
		out = append(out, *f)
	}
	return out
}

// Button returns a copy of the submit control, or nil when the form has none.
func (c *Controller) Button() *SubmitButton {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.button == nil {
		return nil
	}
	b := *c.button
	return &b
}

// Touch handles an input or blur event: the field's error is hidden without
// re-validating. current, when known, is the value the control holds now; it
// is recorded first so the cleared control is rendered with what the user
// typed. The next submit performs the authoritative check.
func (c *Controller) Touch(key FieldKey, current *Value) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.fields.Lookup(key)
	if f == nil {
		return nil
	}
	if current != nil {
		f.set(*current)
	}
	return c.presenter.ClearFieldError(f)
}

// Submit handles a submit event carrying the current control values.
// Submits arriving while a previous one is still running are rejected with ErrBusy.
func (c *Controller) Submit(values map[FieldKey]Value) (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		metrics.FormSubmissions.WithLabelValues(c.def.ID, "rejected_busy").Inc()
		return "", ErrBusy
	}

	c.state = Validating
	c.fields.Assign(values)

	agg := Validate(c.fields, c.tr)
	for _, key := range agg.Order {
		f := c.fields.Lookup(key)
		res := agg.Results[key]
		var err error
		if res.Valid {
			err = c.presenter.ClearFieldError(f)
		} else {
			metrics.FieldValidationFailures.WithLabelValues(c.def.ID, string(key)).Inc()
			err = c.presenter.ShowFieldError(f, res.Message)
		}
		if err != nil {
			c.state = Idle
			return "", err
		}
	}

	if !agg.Valid {
		c.state = Invalid
		metrics.FormSubmissions.WithLabelValues(c.def.ID, "invalid").Inc()
		logger.Debug("Form validation failed",
			zap.String("form_id", c.def.ID),
			zap.String("page_id", c.pageID),
			zap.Any("fields", agg.Failed()))
		c.notify(c.tr.T(i18n.FormInvalid), notify.Danger)
		c.state = Idle
		return OutcomeInvalid, nil
	}

	if c.button == nil {
		logger.Debug("Form valid but has no submit control", zap.String("form_id", c.def.ID))
		c.state = Idle
		return OutcomeValidated, nil
	}

	c.state = Submitting
	c.button.Disabled = true
	c.button.Busy = true
	if err := c.presenter.patchButton(c.button); err != nil {
		logger.Error("Failed to render busy submit control", zap.String("form_id", c.def.ID), zap.Error(err))
	}

	sub := c.snapshot()
	c.wg.Add(1)
	go c.run(sub)

	return OutcomeSubmitting, nil
}

func (c *Controller) snapshot() *Submission {
	sub := &Submission{
		FormID:      c.def.ID,
		PageID:      c.pageID,
		Lang:        c.tr.Lang(),
		Values:      make(map[FieldKey]string),
		SubmittedAt: time.Now(),
	}
	for _, f := range c.fields.Fields() {
		if f.Def.Kind == KindCheckbox {
			sub.Consent = f.Checked
			continue
		}
		sub.Values[f.Key()] = strings.TrimSpace(f.Value)
	}
	return sub
}

func (c *Controller) run(sub *Submission) {
	defer c.wg.Done()

	start := time.Now()
	ctx, cancel := context.WithTimeout(c.ctx, c.timing.SubmitTimeout)
	err := c.submitter.Submit(ctx, sub)
	cancel()

	if !c.wait(c.timing.MinBusy - time.Since(start)) {
		c.abandon()
		return
	}

	c.mu.Lock()
	c.state = Settled
	c.button.Disabled = false
	c.button.Busy = false
	if perr := c.presenter.patchButton(c.button); perr != nil {
		logger.Error("Failed to render submit control", zap.String("form_id", c.def.ID), zap.Error(perr))
	}

	if err != nil {
		metrics.FormSubmissions.WithLabelValues(c.def.ID, "error").Inc()
		logger.Error("Form submission failed",
			zap.String("form_id", c.def.ID),
			zap.String("page_id", c.pageID),
			zap.Error(err))
		c.notify(c.tr.T(i18n.FormFailed), notify.Danger)
		c.state = Idle
		c.mu.Unlock()
		return
	}

	metrics.FormSubmissions.WithLabelValues(c.def.ID, "success").Inc()
	c.notify(c.tr.T(i18n.FormSent), notify.Success)
	c.resetFields()
	c.mu.Unlock()

	if !c.wait(c.timing.RedirectDelay) {
		c.abandon()
		return
	}

	c.emit.Emit(dom.Redirect(c.redirect))

	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
}

// wait sleeps for d unless the controller is closed first.
func (c *Controller) wait(d time.Duration) bool {
	if d <= 0 {
		return c.ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-c.ctx.Done():
		return false
	}
}

func (c *Controller) abandon() {
	c.mu.Lock()
	c.state = Idle
	c.mu.Unlock()
	logger.Debug("Form submission abandoned", zap.String("form_id", c.def.ID), zap.String("page_id", c.pageID))
}

func (c *Controller) resetFields() {
	signals := make(map[string]any, len(c.fields.Fields()))
	for _, f := range c.fields.Fields() {
		f.reset()
		if f.Def.Kind == KindCheckbox {
			signals[string(f.Key())] = false
		} else {
			signals[string(f.Key())] = ""
		}
		if err := c.presenter.patchField(f); err != nil {
			logger.Error("Failed to render reset field", zap.String("field", f.ElementID()), zap.Error(err))
		}
	}
	c.emit.Emit(dom.Signals(map[string]any{
		"forms": map[string]any{c.def.ID: signals},
	}))
}

func (c *Controller) notify(text string, severity notify.Severity) {
	if c.notifier == nil {
		return
	}
	if _, err := c.notifier.Notify(text, severity); err != nil {
		logger.Warn("Failed to show notification", zap.String("form_id", c.def.ID), zap.Error(err))
	}
}

// Close stops background work and waits for it to finish.
func (c *Controller) Close() {
	c.cancel()
	c.wg.Wait()
}
