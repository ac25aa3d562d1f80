package handlers

import (
	"errors"
	"net/http"

	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/i18n"
	"github.com/drsite/drsite-web/internal/models"
	"github.com/drsite/drsite-web/internal/services"
	"github.com/drsite/drsite-web/internal/web"
	apperrors "github.com/drsite/drsite-web/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// SubmissionHandler serves the JSON submissions API used by clients
// that cannot run the page scripts.
type SubmissionHandler struct {
	service services.SubmissionServiceInterface
	defs    []forms.Definition
	lang    string
}

func NewSubmissionHandler(service services.SubmissionServiceInterface, defs []forms.Definition, lang string) *SubmissionHandler {
	return &SubmissionHandler{service: service, defs: defs, lang: lang}
}

func (h *SubmissionHandler) Create(c *gin.Context) {
	def, ok := web.FindDefinition(h.defs, c.Param("formID"))
	if !ok {
		respondError(c, http.StatusNotFound, "Form not found", apperrors.NotFoundError("form "+c.Param("formID")))
		return
	}

	var req models.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", ParseValidationErrors(err), err)
			return
		}
		respondError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.FormID = def.ID

	lang := req.Lang
	if lang == "" {
		lang = h.lang
	}
	if details := checkForm(def, &req, i18n.New(lang)); len(details) > 0 {
		respondErrorWithDetails(c, http.StatusUnprocessableEntity, "Validation failed", details, apperrors.InvalidInputError("form "+def.ID, "field checks failed"))
		return
	}

	resp, err := h.service.SubmitRequest(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		status := apperrors.HTTPStatus(err)
		message := "Failed to deliver submission"
		if status == http.StatusBadRequest {
			message = "Captcha verification failed"
		}
		respondError(c, status, message, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// checkForm runs the rules of the rendered form over a JSON request, so that
// both entry points accept exactly the same input.
func checkForm(def forms.Definition, req *models.SubmissionRequest, tr *i18n.Translator) []ValidationError {
	reg := forms.NewRegistry(def, "")
	reg.Assign(map[forms.FieldKey]forms.Value{
		forms.FirstName: {Text: req.FirstName},
		forms.LastName:  {Text: req.LastName},
		forms.Email:     {Text: req.Email},
		forms.Phone:     {Text: req.Phone},
		forms.Message:   {Text: req.Message},
		forms.Service:   {Text: req.Service},
		forms.Subject:   {Text: req.Subject},
		forms.Privacy:   {Checked: req.Privacy},
	})

	agg := forms.Validate(reg, tr)
	var details []ValidationError
	for _, key := range agg.Failed() {
		details = append(details, ValidationError{Field: string(key), Message: agg.Results[key].Message})
	}
	return details
}
