package handlers

import (
	"net/http"
	"time"

	"github.com/drsite/drsite-web/config"
	"github.com/drsite/drsite-web/internal/page"
	"github.com/drsite/drsite-web/internal/web"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"github.com/gin-gonic/gin"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"
)

// streamKeepAlive is how often a connected stream refreshes its session and
// writes an empty signals event so idle proxies keep the connection open.
var streamKeepAlive = 30 * time.Second

var keepAliveSignals = []byte("{}")

type PageHandler struct {
	store *page.Store
	site  config.SiteConfig
}

func NewPageHandler(store *page.Store, site config.SiteConfig) *PageHandler {
	return &PageHandler{store: store, site: site}
}

// Render serves a page. Every render opens a new page session.
func (h *PageHandler) Render(info web.PageInfo) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := h.store.Open(info.Name, h.site.Lang)

		data, err := web.NewPageData(s, info, c.Request.URL.Path, !consentGiven(c))
		if err != nil {
			h.store.Delete(s.ID)
			respondError(c, http.StatusInternalServerError, "Failed to render page", err)
			return
		}
		if h.site.DatastarURL != "" {
			data.DatastarURL = h.site.DatastarURL
		}

		c.Header("Cache-Control", "no-store")
		c.HTML(http.StatusOK, info.Name, data)
	}
}

// Stream delivers the patches of a page session as datastar events until
// the browser disconnects or the session is closed.
func (h *PageHandler) Stream(c *gin.Context) {
	s, err := h.store.Get(c.Param("pageID"))
	if err != nil {
		respondAppError(c, "Page session not found", err)
		return
	}

	sse := datastar.NewSSE(c.Writer, c.Request)
	metrics.PageStreams.Inc()
	defer metrics.PageStreams.Dec()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-keepAlive.C:
			if _, err := h.store.Get(s.ID); err != nil {
				return
			}
			if err := sse.PatchSignals(keepAliveSignals); err != nil {
				logger.Debug("Page stream keepalive failed",
					zap.String("page_id", s.ID),
					zap.Error(err))
				return
			}
		case p, ok := <-s.Patches():
			if !ok {
				return
			}
			if err := writePatch(sse, p); err != nil {
				logger.Debug("Page stream write failed",
					zap.String("page_id", s.ID),
					zap.Error(err))
				return
			}
		}
	}
}
