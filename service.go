package aclauth

import (
	"context"
	"text/template"
	"time"

	"github.com/acldev/aclauth/internal/audit"
	"github.com/acldev/aclauth/internal/metrics"
	"github.com/acldev/aclauth/internal/rate"
	"github.com/acldev/aclauth/jwt"
	"github.com/acldev/aclauth/password"
)

// Service is the authentication and authorization engine. The instance
// returned by Builder.Build is the long-lived base; ForRequest derives
// request-scoped copies bound to one session and cookie jar.
type Service struct {
	config     Config
	directory  UserDirectory
	hasher     *password.Hasher
	mailer     NotificationSender
	limiter    *rate.Limiter
	auditor    *audit.Dispatcher
	meters     *metrics.Metrics
	assertions *jwt.Manager
	resetTmpl  *template.Template
	now        func() time.Time

	// Request scope, set by ForRequest. Zero on the base instance.
	sessions SessionStore
	cookies  CookieTransport
	clientIP string
	codes    *codeRecorder
}

// RequestOption tunes a request-scoped Service copy.
type RequestOption func(*Service)

// WithClientIP records the caller's network address for the per-IP attempt
// budget and audit events.
func WithClientIP(ip string) RequestOption {
	return func(s *Service) {
		s.clientIP = ip
	}
}

// ForRequest returns a copy of the Service bound to one request's session
// store and cookie jar, with a fresh error-code recorder. When the session is
// anonymous and both remember cookies are present, the copy resumes the
// remembered login before it is returned, so callers observe LoggedIn
// immediately.
func (s *Service) ForRequest(ctx context.Context, sessions SessionStore, cookies CookieTransport, opts ...RequestOption) *Service {
	bound := *s
	bound.sessions = sessions
	bound.cookies = cookies
	bound.codes = &codeRecorder{}
	for _, opt := range opts {
		opt(&bound)
	}

	if bound.config.Remember.Enabled && sessions != nil && cookies != nil && !bound.LoggedIn(ctx) {
		identity, _ := cookies.Get(ctx, bound.config.Remember.IdentityCookie)
		token, _ := cookies.Get(ctx, bound.config.Remember.TokenCookie)
		if identity != "" && token != "" {
			_ = bound.ResumeRemembered(ctx)
		}
	}

	return &bound
}

// LoggedIn reports whether the bound session carries an authenticated
// principal. False on the unbound base instance.
func (s *Service) LoggedIn(ctx context.Context) bool {
	if s.sessions == nil {
		return false
	}
	v, err := s.sessions.Get(ctx, SessionLoggedIn)
	return err == nil && v == sessionLoggedInTrue
}

// CurrentUserID returns the authenticated principal's user id, or "" for an
// anonymous or unbound session.
func (s *Service) CurrentUserID(ctx context.Context) string {
	if s.sessions == nil || !s.LoggedIn(ctx) {
		return ""
	}
	id, err := s.sessions.Get(ctx, SessionUserID)
	if err != nil {
		return ""
	}
	return id
}

// SessionAttribute reads one mirrored user attribute from the bound session,
// e.g. SessionAttribute(ctx, "name") after a login that mirrored "name".
func (s *Service) SessionAttribute(ctx context.Context, field string) string {
	if s.sessions == nil {
		return ""
	}
	v, err := s.sessions.Get(ctx, SessionFieldPrefix+field)
	if err != nil {
		return ""
	}
	return v
}

// MetricsSnapshot returns a point-in-time copy of all counters. Empty when
// metrics are disabled.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	return s.meters.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatch buffer was full.
func (s *Service) AuditDropped() uint64 {
	return s.auditor.Dropped()
}

// Close flushes and stops the audit dispatcher. Call it on the base instance
// during shutdown, not on request-scoped copies.
func (s *Service) Close() {
	s.auditor.Close()
}

func (s *Service) sessionKey() string {
	type keyed interface{ Key() string }
	if k, ok := s.sessions.(keyed); ok {
		return k.Key()
	}
	return ""
}

func (s *Service) emitAudit(ctx context.Context, eventType, userID, identity string, success bool, cause error, meta map[string]string) {
	if s.auditor == nil {
		return
	}
	event := AuditEvent{
		Timestamp:  s.now(),
		EventType:  eventType,
		UserID:     userID,
		Identity:   identity,
		SessionKey: s.sessionKey(),
		Success:    success,
		Metadata:   meta,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	if s.clientIP != "" {
		if event.Metadata == nil {
			event.Metadata = map[string]string{}
		}
		event.Metadata["client_ip"] = s.clientIP
	}
	s.auditor.Emit(ctx, event)
}
