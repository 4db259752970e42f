package middleware

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/acldev/aclauth"
)

type serviceContextKey struct{}

// ServiceFromContext returns the request-scoped Service placed by
// Binder.Bind.
func ServiceFromContext(ctx context.Context) (*aclauth.Service, bool) {
	svc, ok := ctx.Value(serviceContextKey{}).(*aclauth.Service)
	return svc, ok
}

const defaultSessionCookie = "aclsession"

// Binder wires a base Service into the request pipeline: it locates the
// caller's session from a cookie, binds a request-scoped Service, and injects
// it into the request context.
type Binder struct {
	// Base is the long-lived Service from Builder.Build.
	Base *aclauth.Service
	// NewSession produces a SessionStore for a presented session key; key ""
	// means a fresh anonymous session. Typically session.NewRedisStore
	// partially applied over the redis client.
	NewSession func(key string) aclauth.SessionStore
	// SessionCookie names the cookie carrying the session key. Defaults to
	// "aclsession".
	SessionCookie string
	// SessionTTL is the cookie lifetime. Zero means a browser-session cookie.
	SessionTTL time.Duration
	// Cookies controls attributes of every cookie written for the request.
	Cookies CookieOptions
}

// Bind returns middleware that makes a bound Service available via
// ServiceFromContext. The session cookie is synced to the current session key
// right before the first response write, so key rotation during login or
// logout reaches the browser.
func (b *Binder) Bind(next http.Handler) http.Handler {
	cookieName := b.SessionCookie
	if cookieName == "" {
		cookieName = defaultSessionCookie
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Base == nil || b.NewSession == nil {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		key := ""
		if cookie, err := r.Cookie(cookieName); err == nil {
			key = cookie.Value
		}

		sessions := b.NewSession(key)
		sw := &cookieSyncWriter{ResponseWriter: w}
		cookies := NewHTTPCookies(sw, r, b.Cookies)

		svc := b.Base.ForRequest(r.Context(), sessions, cookies,
			aclauth.WithClientIP(clientIP(r)))

		sw.sync = func() {
			keyed, ok := sessions.(interface{ Key() string })
			if !ok {
				return
			}
			if current := keyed.Key(); current != key {
				_ = cookies.Set(r.Context(), cookieName, current, b.SessionTTL)
			}
		}

		ctx := context.WithValue(r.Context(), serviceContextKey{}, svc)
		next.ServeHTTP(sw, r.WithContext(ctx))
		sw.flush()
	})
}

// cookieSyncWriter runs sync once, before the first header or body write, so
// Set-Cookie still makes it out.
type cookieSyncWriter struct {
	http.ResponseWriter
	sync   func()
	synced bool
}

func (w *cookieSyncWriter) flush() {
	if w.synced || w.sync == nil {
		return
	}
	w.synced = true
	w.sync()
}

func (w *cookieSyncWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *cookieSyncWriter) Write(p []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(p)
}

// Guard returns middleware enforcing RestrictAccess for the named role. A
// redirect decision becomes 303 See Other; otherwise the decision's status
// code is written.
func Guard(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			svc, ok := ServiceFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			decision := svc.RestrictAccess(r.Context(), role)
			if decision.Permitted {
				next.ServeHTTP(w, r)
				return
			}
			if decision.Redirects() {
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}
			http.Error(w, http.StatusText(decision.StatusCode), decision.StatusCode)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
