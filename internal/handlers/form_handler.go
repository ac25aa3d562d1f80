package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/page"
	apperrors "github.com/drsite/drsite-web/pkg/errors"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

// pageSignals is the signal tree sent by the browser with every event.
type pageSignals struct {
	Forms map[string]map[string]any `json:"forms"`
}

// FormHandler handles the browser events of forms and notices bound to a page session.
type FormHandler struct {
	store *page.Store
}

func NewFormHandler(store *page.Store) *FormHandler {
	return &FormHandler{store: store}
}

// Submit handles a submit event. The field values come from the datastar signals.
func (h *FormHandler) Submit(c *gin.Context) {
	ctrl, ok := h.form(c)
	if !ok {
		return
	}

	var signals pageSignals
	if err := datastar.ReadSignals(c.Request, &signals); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid signals", err)
		return
	}

	outcome, err := ctrl.Submit(FormValues(ctrl.Definition(), signals.Forms[ctrl.ID()]))
	if err != nil {
		respondAppError(c, "Form submission rejected", err)
		return
	}

	logger.Debug("Form submit handled",
		zap.String("page_id", c.Param("pageID")),
		zap.String("form_id", ctrl.ID()),
		zap.String("outcome", string(outcome)))
	c.Status(http.StatusNoContent)
}

// Touch handles input, blur and change events of a field.
func (h *FormHandler) Touch(c *gin.Context) {
	ctrl, ok := h.form(c)
	if !ok {
		return
	}

	key := forms.FieldKey(c.Param("field"))
	if _, exists := ctrl.Definition().Field(key); !exists {
		respondError(c, http.StatusNotFound, "Field not found", apperrors.NotFoundError("field "+string(key)))
		return
	}

	// The control is re-rendered without its error, so it must carry the
	// value the browser holds now rather than the one from the last submit.
	var current *forms.Value
	if c.Request.ContentLength != 0 {
		var signals pageSignals
		if err := datastar.ReadSignals(c.Request, &signals); err != nil {
			respondError(c, http.StatusBadRequest, "Invalid signals", err)
			return
		}
		if v, found := FormValues(ctrl.Definition(), signals.Forms[ctrl.ID()])[key]; found {
			current = &v
		}
	}

	if err := ctrl.Touch(key, current); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to update field", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Dismiss handles a click on the close button of a notice. Dismissing a
// notice that is already gone is not an error.
func (h *FormHandler) Dismiss(c *gin.Context) {
	s, err := h.store.Get(c.Param("pageID"))
	if err != nil {
		respondAppError(c, "Page session not found", err)
		return
	}

	s.Notices().Dismiss(c.Param("noticeID"))
	c.Status(http.StatusNoContent)
}

func (h *FormHandler) form(c *gin.Context) (*forms.Controller, bool) {
	s, err := h.store.Get(c.Param("pageID"))
	if err != nil {
		respondAppError(c, "Page session not found", err)
		return nil, false
	}

	ctrl, ok := s.Form(c.Param("formID"))
	if !ok {
		respondError(c, http.StatusNotFound, "Form not found", apperrors.NotFoundError("form "+c.Param("formID")))
		return nil, false
	}
	return ctrl, true
}

// FormValues converts the signal values of one form to field values.
// Signals for keys the form does not have are ignored.
func FormValues(def forms.Definition, raw map[string]any) map[forms.FieldKey]forms.Value {
	values := make(map[forms.FieldKey]forms.Value, len(def.Fields))
	for _, fd := range def.Fields {
		v, ok := raw[string(fd.Key)]
		if !ok {
			continue
		}
		if fd.Kind == forms.KindCheckbox {
			values[fd.Key] = forms.Value{Checked: truthy(v)}
			continue
		}
		values[fd.Key] = forms.Value{Text: text(v)}
	}
	return values
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true" || t == "on"
	default:
		return false
	}
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
