package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aklujeats/aklujeats/internal/logger"
)

const contextKey = "aklujeats.session"

// Keys of the values stored for an authenticated admin
const (
	KeyAdminID   = "admin_id"
	KeyAdminName = "admin_name"
)

// Session is the server-side state attached to one browser
type Session struct {
	mu         sync.Mutex
	id         string
	values     map[string]string
	isNew      bool
	dirty      bool
	destroyed  bool
	cookieSent bool
	stale      []string
	cookie     func(id string, expire bool)
}

// ID returns the session id
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// IsNew reports whether the session was created by this request
func (s *Session) IsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isNew
}

// Get returns a value or ""
func (s *Session) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set stores a value. The first modification of a new session issues its cookie.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.touchLocked()
}

// Delete removes a value
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.values[key]; !ok {
		return
	}
	delete(s.values, key)
	s.touchLocked()
}

// Clear removes every value and ends the session
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]string)
	s.dirty = false
	s.destroyed = true
	if s.cookieSent {
		s.cookie(s.id, true)
		s.cookieSent = false
	}
}

// Renew moves the values to a fresh id, dropping the old one. Call it when
// the privilege level changes, such as on login.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isNew {
		s.stale = append(s.stale, s.id)
	}
	s.id = uuid.NewString()
	s.isNew = true
	s.cookieSent = false
	s.destroyed = false
	s.touchLocked()
}

func (s *Session) touchLocked() {
	s.dirty = true
	s.destroyed = false
	if !s.cookieSent {
		s.cookie(s.id, false)
		s.cookieSent = true
	}
}

// Default returns the session of the current request. It panics when the
// session middleware is not installed.
func Default(c *gin.Context) *Session {
	return c.MustGet(contextKey).(*Session)
}

// CookieWriter writes cookies subject to a consent policy. Essential cookies
// are always written.
type CookieWriter interface {
	Write(c *gin.Context, cookie *http.Cookie, essential bool) bool
}

// Options configures the session cookie and idle timeout
type Options struct {
	CookieName  string
	IdleTimeout time.Duration
	HTTPOnly    bool
	Secure      bool
	Essential   bool
}

// Manager loads and persists sessions around each request
type Manager struct {
	store   Store
	opts    Options
	cookies CookieWriter
}

// NewManager creates a session manager. A nil writer sets cookies directly.
func NewManager(store Store, opts Options, cookies CookieWriter) *Manager {
	return &Manager{store: store, opts: opts, cookies: cookies}
}

// Store returns the backing store
func (m *Manager) Store() Store {
	return m.store
}

// Middleware attaches a session to every request
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := m.load(c)
		c.Set(contextKey, sess)

		c.Next()

		m.finish(c.Request.Context(), sess)
	}
}

func (m *Manager) load(c *gin.Context) *Session {
	sess := &Session{values: make(map[string]string)}
	sess.cookie = func(id string, expire bool) { m.writeCookie(c, id, expire) }

	if id, err := c.Cookie(m.opts.CookieName); err == nil && id != "" {
		values, ok, err := m.store.Load(c.Request.Context(), id)
		if err != nil {
			logger.Warning("Failed to load session: %v", err)
		}
		if ok {
			sess.id = id
			sess.values = values
			sess.cookieSent = true
			return sess
		}
	}

	sess.id = uuid.NewString()
	sess.isNew = true
	return sess
}

func (m *Manager) finish(ctx context.Context, sess *Session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	for _, id := range sess.stale {
		if err := m.store.Delete(ctx, id); err != nil {
			logger.Warning("Failed to delete renewed session: %v", err)
		}
	}

	var err error
	switch {
	case sess.destroyed:
		if !sess.isNew {
			err = m.store.Delete(ctx, sess.id)
		}
	case sess.dirty:
		err = m.store.Save(ctx, sess.id, sess.values, m.opts.IdleTimeout)
	case !sess.isNew:
		err = m.store.Refresh(ctx, sess.id, m.opts.IdleTimeout)
	}
	if err != nil {
		logger.Error("Failed to persist session: %v", err)
	}
}

func (m *Manager) writeCookie(c *gin.Context, id string, expire bool) {
	cookie := &http.Cookie{
		Name:     m.opts.CookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: m.opts.HTTPOnly,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if expire {
		cookie.Value = ""
		cookie.MaxAge = -1
	}

	if m.cookies == nil {
		http.SetCookie(c.Writer, cookie)
		return
	}
	m.cookies.Write(c, cookie, m.opts.Essential)
}
