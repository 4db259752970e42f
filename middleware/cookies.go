package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/acldev/aclauth"
)

// CookieOptions control the attributes of cookies written by HTTPCookies.
type CookieOptions struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// HTTPCookies implements aclauth.CookieTransport over one request/response
// pair. Reads consult values written during the same request first, so a
// Set followed by a Get observes the new value.
type HTTPCookies struct {
	w       http.ResponseWriter
	r       *http.Request
	opts    CookieOptions
	written map[string]*string
}

// NewHTTPCookies binds a transport to the given response writer and request.
func NewHTTPCookies(w http.ResponseWriter, r *http.Request, opts CookieOptions) *HTTPCookies {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &HTTPCookies{
		w:       w,
		r:       r,
		opts:    opts,
		written: make(map[string]*string),
	}
}

var _ aclauth.CookieTransport = (*HTTPCookies)(nil)

func (c *HTTPCookies) Set(_ context.Context, name, value string, ttl time.Duration) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		MaxAge:   int(ttl / time.Second),
		Secure:   c.opts.Secure,
		HttpOnly: true,
		SameSite: c.opts.SameSite,
	})
	c.written[name] = &value
	return nil
}

func (c *HTTPCookies) Get(_ context.Context, name string) (string, error) {
	if v, ok := c.written[name]; ok {
		if v == nil {
			return "", nil
		}
		return *v, nil
	}
	cookie, err := c.r.Cookie(name)
	if err != nil {
		return "", nil
	}
	return cookie.Value, nil
}

func (c *HTTPCookies) Delete(_ context.Context, name string) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		MaxAge:   -1,
		Secure:   c.opts.Secure,
		HttpOnly: true,
		SameSite: c.opts.SameSite,
	})
	c.written[name] = nil
	return nil
}
