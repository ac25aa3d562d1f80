// Package notify implements the transient notification area of a page.
package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/drsite/drsite-web/internal/dom"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity selects the look of a notice.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Danger  Severity = "danger"
)

// ContainerID is the DOM id of the notification container.
const ContainerID = "notification-container"

// Default timings, matching the browser behaviour the site was built with.
const (
	DefaultTTL  = 5 * time.Second
	DefaultFade = 150 * time.Millisecond
)

// Notice is one displayed message.
type Notice struct {
	ID       string
	Text     string
	Severity Severity
	// Shown is false while the notice fades out.
	Shown bool
	// DismissURL is the endpoint the close button posts to.
	DismissURL string

	timer *time.Timer
}

// Renderer produces the HTML fragments of the notification area.
type Renderer interface {
	NoticeContainer() (string, error)
	Notice(n *Notice) (string, error)
}

// Options configure a Surface.
type Options struct {
	TTL  time.Duration
	Fade time.Duration
	// DismissURL builds the dismiss endpoint of a notice.
	DismissURL func(id string) string
}

// Surface shows notices on one page. The container element is created on
// first use; notices stack in arrival order and expire independently.
type Surface struct {
	mu               sync.Mutex
	emit             dom.Emitter
	render           Renderer
	opts             Options
	containerCreated bool
	notices          map[string]*Notice
	order            []string
	closed           bool
}

// NewSurface creates a surface writing to emit.
func NewSurface(emit dom.Emitter, render Renderer, opts Options) *Surface {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Fade <= 0 {
		opts.Fade = DefaultFade
	}
	return &Surface{
		emit:    emit,
		render:  render,
		opts:    opts,
		notices: make(map[string]*Notice),
	}
}

// Notify appends a notice and schedules its removal. It returns the notice id.
func (s *Surface) Notify(text string, severity Severity) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", fmt.Errorf("notification surface closed")
	}

	if !s.containerCreated {
		html, err := s.render.NoticeContainer()
		if err != nil {
			return "", fmt.Errorf("render notification container: %w", err)
		}
		s.emit.Emit(dom.Elements("body", dom.ModeAppend, html))
		s.containerCreated = true
	}

	n := &Notice{
		ID:       "notice-" + uuid.NewString(),
		Text:     text,
		Severity: severity,
		Shown:    true,
	}
	if s.opts.DismissURL != nil {
		n.DismissURL = s.opts.DismissURL(n.ID)
	}

	html, err := s.render.Notice(n)
	if err != nil {
		return "", fmt.Errorf("render notice: %w", err)
	}
	s.emit.Emit(dom.Elements(dom.ID(ContainerID), dom.ModeAppend, html))

	s.notices[n.ID] = n
	s.order = append(s.order, n.ID)
	id := n.ID
	n.timer = time.AfterFunc(s.opts.TTL, func() { s.Dismiss(id) })

	metrics.NotificationsShown.WithLabelValues(string(severity)).Inc()
	return n.ID, nil
}

// Dismiss starts the fade-out of a notice. It reports false when the notice
// does not exist or is already fading.
func (s *Surface) Dismiss(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notices[id]
	if s.closed || !ok || !n.Shown {
		return false
	}
	n.timer.Stop()
	n.Shown = false

	html, err := s.render.Notice(n)
	if err != nil {
		logger.Error("Failed to render fading notice", zap.String("notice_id", id), zap.Error(err))
	} else {
		s.emit.Emit(dom.Elements(dom.ID(id), dom.ModeOuter, html))
	}

	n.timer = time.AfterFunc(s.opts.Fade, func() { s.detach(id) })
	return true
}

func (s *Surface) detach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if _, ok := s.notices[id]; !ok {
		return
	}
	delete(s.notices, id)
	for i, nid := range s.order {
		if nid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.emit.Emit(dom.Remove(dom.ID(id)))
}

// Active returns copies of the notices still attached, in display order.
func (s *Surface) Active() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Notice, 0, len(s.order))
	for _, id := range s.order {
		n := *s.notices[id]
		n.timer = nil
		out = append(out, n)
	}
	return out
}

// Close stops all pending timers. Further calls to Notify fail.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for _, n := range s.notices {
		if n.timer != nil {
			n.timer.Stop()
		}
	}
}
