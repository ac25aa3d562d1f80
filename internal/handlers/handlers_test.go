package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/drsite/drsite-web/config"
	"github.com/drsite/drsite-web/internal/dom"
	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/page"
	"github.com/drsite/drsite-web/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := forms.RegisterValidations(v); err != nil {
			panic(err)
		}
	}
}

// blockingSubmitter holds every submission until release is called.
type blockingSubmitter struct {
	once    sync.Once
	release chan struct{}
}

func newBlockingSubmitter() *blockingSubmitter {
	return &blockingSubmitter{release: make(chan struct{})}
}

func (b *blockingSubmitter) Submit(ctx context.Context, _ *forms.Submission) error {
	select {
	case <-b.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingSubmitter) Release() {
	b.once.Do(func() { close(b.release) })
}

type testSite struct {
	router *gin.Engine
	store  *page.Store
}

func newTestSite(t *testing.T, submitter forms.Submitter) *testSite {
	t.Helper()

	renderer, err := web.NewRenderer("nl")
	require.NoError(t, err)
	defs, err := web.Definitions()
	require.NoError(t, err)

	store := page.NewStore(page.Config{
		Forms:     defs,
		Renderer:  renderer,
		Submitter: submitter,
		Timing: forms.Timing{
			MinBusy:       10 * time.Millisecond,
			RedirectDelay: 10 * time.Millisecond,
			SubmitTimeout: time.Second,
		},
	})
	t.Cleanup(store.Close)

	router := gin.New()
	router.HTMLRender = renderer

	pages := NewPageHandler(store, siteConfig())
	formEvents := NewFormHandler(store)
	consent := NewConsentHandler(false)

	for _, info := range web.Pages {
		router.GET(info.Path, pages.Render(info))
	}
	router.GET("/pages/:pageID/stream", pages.Stream)
	router.POST("/pages/:pageID/forms/:formID/submit", formEvents.Submit)
	router.POST("/pages/:pageID/forms/:formID/fields/:field/touch", formEvents.Touch)
	router.POST("/pages/:pageID/notices/:noticeID/dismiss", formEvents.Dismiss)
	router.POST("/consent/:choice", consent.Choose)

	return &testSite{router: router, store: store}
}

func siteConfig() config.SiteConfig {
	return config.SiteConfig{Lang: "nl", RedirectURL: "thank_you.html"}
}

var pageIDRe = regexp.MustCompile(`/pages/([0-9a-f-]{36})/stream`)

func (s *testSite) do(method, target string, body io.Reader, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// open renders pagePath and returns the id of the new page session.
func (s *testSite) open(t *testing.T, pagePath string) string {
	t.Helper()
	w := s.do(http.MethodGet, pagePath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := pageIDRe.FindStringSubmatch(w.Body.String())
	require.Len(t, m, 2, "page has no stream url")
	return m[1]
}

func signalsBody(formID string, values map[string]any) io.Reader {
	payload, _ := json.Marshal(map[string]any{ //nolint:errcheck
		"navOpen": false,
		"forms":   map[string]any{formID: values},
	})
	return bytes.NewReader(payload)
}

func validContact() map[string]any {
	return map[string]any{
		"firstName": "Jan",
		"lastName":  "Jansen",
		"email":     "jan@example.nl",
		"phone":     "06 12345678",
		"subject":   "advies",
		"message":   "",
		"privacy":   true,
	}
}

// drain returns the patches buffered in ch without waiting for more.
func drain(ch <-chan dom.Patch) []dom.Patch {
	var out []dom.Patch
	for {
		select {
		case p, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, p)
		default:
			return out
		}
	}
}
