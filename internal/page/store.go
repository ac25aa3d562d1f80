package page

import (
	"fmt"
	"time"

	"github.com/drsite/drsite-web/internal/forms"
	"github.com/drsite/drsite-web/internal/notify"
	"github.com/drsite/drsite-web/pkg/errors"
	"github.com/drsite/drsite-web/pkg/logger"
	"github.com/drsite/drsite-web/pkg/metrics"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	defaultTTL        = 30 * time.Minute
	defaultOutboxSize = 64
	cleanupInterval   = time.Minute
)

// Config wires the sessions created by a Store.
type Config struct {
	Forms       []forms.Definition
	Renderer    Renderer
	Submitter   forms.Submitter
	Timing      forms.Timing
	Notices     notify.Options
	RedirectURL string
	// OutboxSize bounds the patches buffered while no stream is attached.
	OutboxSize int
	// TTL is the idle time after which a session is evicted.
	TTL time.Duration
}

// Store holds the open page sessions. Sessions expire after TTL without
// activity and are closed on eviction.
type Store struct {
	cache *gocache.Cache
	cfg   Config
}

// NewStore creates a session store.
func NewStore(cfg Config) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.OutboxSize <= 0 {
		cfg.OutboxSize = defaultOutboxSize
	}

	interval := cleanupInterval
	if cfg.TTL < interval {
		interval = cfg.TTL
	}

	cache := gocache.New(cfg.TTL, interval)
	cache.OnEvicted(func(id string, v interface{}) {
		s, ok := v.(*Session)
		if !ok {
			return
		}
		metrics.ActivePageSessions.Dec()
		s.Close()
	})

	return &Store{cache: cache, cfg: cfg}
}

// Open creates a session for a render of pageName and binds every form
// that belongs to that page.
func (st *Store) Open(pageName, lang string) *Session {
	s := newSession(uuid.NewString(), pageName, lang, st.cfg.OutboxSize)

	opts := st.cfg.Notices
	opts.DismissURL = func(id string) string {
		return fmt.Sprintf("/pages/%s/notices/%s/dismiss", s.ID, id)
	}
	s.notices = notify.NewSurface(s, st.cfg.Renderer, opts)

	for _, def := range st.cfg.Forms {
		if def.Page != pageName {
			continue
		}
		s.bind(forms.NewController(s.ctx, forms.ControllerConfig{
			Definition:  def,
			PageID:      s.ID,
			BaseURL:     fmt.Sprintf("/pages/%s/forms/%s", s.ID, def.ID),
			Emitter:     s,
			Renderer:    st.cfg.Renderer,
			Notifier:    s.notices,
			Submitter:   st.cfg.Submitter,
			Translator:  s.tr,
			Timing:      st.cfg.Timing,
			RedirectURL: st.cfg.RedirectURL,
		}))
	}

	st.cache.Set(s.ID, s, gocache.DefaultExpiration)
	metrics.ActivePageSessions.Inc()

	logger.Debug("Page session opened",
		zap.String("page_id", s.ID),
		zap.String("page", pageName),
		zap.Int("forms", len(s.order)))

	return s
}

// Get returns a live session and extends its lifetime.
func (st *Store) Get(id string) (*Session, error) {
	v, found := st.cache.Get(id)
	if !found {
		return nil, errors.NotFoundError("page session")
	}
	s, ok := v.(*Session)
	if !ok {
		st.cache.Delete(id)
		return nil, errors.InternalError("invalid page session")
	}
	if s.isClosed() {
		st.cache.Delete(id)
		return nil, errors.NotFoundError("page session")
	}
	// Replace fails when the entry was evicted since the lookup, so a
	// closed session is never stored again.
	if err := st.cache.Replace(id, s, gocache.DefaultExpiration); err != nil {
		return nil, errors.NotFoundError("page session")
	}
	return s, nil
}

// Delete closes and forgets a session.
func (st *Store) Delete(id string) {
	st.cache.Delete(id)
}

// Count returns the number of live sessions.
func (st *Store) Count() int {
	return st.cache.ItemCount()
}

// Close closes every session.
func (st *Store) Close() {
	for id := range st.cache.Items() {
		st.cache.Delete(id)
	}
}
