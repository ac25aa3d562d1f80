// Package page keeps the server-side state of every open page.
//
// A Session lives from the initial page render until the browser goes away.
// It owns the bound forms and the notification surface of the page, and
// buffers the patches they emit until the page stream delivers them.
package page

import (
	"context"
	"sync"
	"time"

	"github.com/drsite/drsite-web/internal/dom"
	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/i18n"
	"github.com/drsite/drsite-web/internal/notify"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"go.uber.org/zap"
)

// Renderer renders every fragment a session may emit.
type Renderer interface {
	forms.Renderer
	notify.Renderer
}

// Session is the state of one page load.
type Session struct {
	ID        string
	Page      string
	Lang      string
	CreatedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	outbox  chan dom.Patch
	closed  bool
	forms   map[string]*forms.Controller
	order   []string
	notices *notify.Surface
	tr      *i18n.Translator

	closeOnce sync.Once
}

func newSession(id, pageName, lang string, outboxSize int) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	tr := i18n.New(lang)
	return &Session{
		ID:        id,
		Page:      pageName,
		Lang:      tr.Lang(),
		CreatedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		outbox:    make(chan dom.Patch, outboxSize),
		forms:     make(map[string]*forms.Controller),
		tr:        tr,
	}
}

// Emit queues a patch for the page stream. Patches are dropped when the
// session is closed or the outbox is full.
func (s *Session) Emit(p dom.Patch) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	select {
	case s.outbox <- p:
	default:
		metrics.DroppedPatches.Inc()
		logger.Warn("Page outbox full, dropping patch",
			zap.String("page_id", s.ID),
			zap.String("selector", p.Selector))
	}
}

// Patches returns the channel the page stream reads from. It is closed
// together with the session.
func (s *Session) Patches() <-chan dom.Patch {
	return s.outbox
}

// Done is closed when the session is closed.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) isClosed() bool {
	select {
	case <-s.ctx.Done():
		return true
	default:
		return false
	}
}

// Form returns the bound form with the given id.
func (s *Session) Form(id string) (*forms.Controller, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.forms[id]
	return c, ok
}

// Forms returns the bound forms in binding order.
func (s *Session) Forms() []*forms.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*forms.Controller, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.forms[id])
	}
	return out
}

// Notices returns the notification surface of the page.
func (s *Session) Notices() *notify.Surface {
	return s.notices
}

// Translator returns the translator of the page language.
func (s *Session) Translator() *i18n.Translator {
	return s.tr
}

func (s *Session) bind(c *forms.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[c.ID()] = c
	s.order = append(s.order, c.ID())
}

// Close stops the forms and notices of the page and closes the outbox.
// It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()

		// Background work may still emit while it winds down.
		for _, c := range s.Forms() {
			c.Close()
		}
		if s.notices != nil {
			s.notices.Close()
		}

		s.mu.Lock()
		s.closed = true
		close(s.outbox)
		s.mu.Unlock()

		logger.Debug("Page session closed", zap.String("page_id", s.ID), zap.String("page", s.Page))
	})
}
