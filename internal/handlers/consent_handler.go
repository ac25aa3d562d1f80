package handlers

import (
	"net/http"

	"github.com/drsite/drsite-web/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/starfederation/datastar-go/datastar"
)

// Consent cookies. Either one hides the cookie banner.
const (
	CookieConsentAccepted = "cookiesAccepted"
	CookieConsentDeclined = "cookiesDeclined"

	consentMaxAge = 365 * 24 * 60 * 60
)

type ConsentHandler struct {
	cookieSecure bool
}

func NewConsentHandler(cookieSecure bool) *ConsentHandler {
	return &ConsentHandler{cookieSecure: cookieSecure}
}

// Choose stores the accept or decline choice and removes the banner.
func (h *ConsentHandler) Choose(c *gin.Context) {
	var set, unset string
	switch c.Param("choice") {
	case "accept":
		set, unset = CookieConsentAccepted, CookieConsentDeclined
	case "decline":
		set, unset = CookieConsentDeclined, CookieConsentAccepted
	default:
		respondError(c, http.StatusNotFound, "Unknown consent choice", nil)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(set, "true", consentMaxAge, "/", "", h.cookieSecure, false)
	c.SetCookie(unset, "", -1, "/", "", h.cookieSecure, false)
	metrics.ConsentChoices.WithLabelValues(c.Param("choice")).Inc()

	sse := datastar.NewSSE(c.Writer, c.Request)
	if err := sse.PatchElements("",
		datastar.WithSelector("#cookieBanner"),
		datastar.WithMode(datastar.ElementPatchModeRemove),
	); err != nil {
		attachError(c, err)
	}
}

func consentGiven(c *gin.Context) bool {
	for _, name := range []string{CookieConsentAccepted, CookieConsentDeclined} {
		if v, err := c.Cookie(name); err == nil && v == "true" {
			return true
		}
	}
	return false
}
