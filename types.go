package aclauth

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/acldev/aclauth/internal/audit"
	internalmetrics "github.com/acldev/aclauth/internal/metrics"
)

// Well-known user record fields managed by this package. Directories must
// accept them in Update calls; an empty string value clears the field.
const (
	FieldRememberToken = "remember_token"
	FieldResetCode     = "reset_code"
	FieldResetTime     = "reset_time"
)

// Session attribute names written by Login and read back by the
// authorization operations. Mirrored user attributes are stored under
// "user_" + field name.
const (
	SessionUserID       = "user_id"
	SessionLoggedIn     = "logged_in"
	SessionFieldPrefix  = "user_"
	sessionLoggedInTrue = "true"
)

// User is the directory record consumed by the authentication flows.
// Attributes carries every schema column as a string, including the ones
// mirrored into the session on login; ResetSentAt is zero when no reset is
// pending.
type User struct {
	ID            string
	Identity      string
	PasswordHash  string
	RememberToken string
	ResetCode     string
	ResetSentAt   time.Time
	Attributes    map[string]string
}

// UserDirectory is the persistence collaborator. Implementations wrap
// whatever user storage the host application has; the directory package
// ships a Redis-backed reference implementation.
//
// FindOneBy returns (nil, nil) when no record matches — absence is not an
// error. Update receives string fields where an empty value means "clear".
type UserDirectory interface {
	FindOneBy(ctx context.Context, field, value string) (*User, error)
	CountBy(ctx context.Context, field, value string) (int, error)
	Insert(ctx context.Context, fields map[string]string) (string, error)
	Update(ctx context.Context, id string, fields map[string]string) error
	FieldIsKnown(ctx context.Context, name string) (bool, error)
	HasRole(ctx context.Context, userID, role string) (bool, error)
}

// SessionStore is the server-side session collaborator, bound to one
// request's session. Get returns "" for absent attributes. Recreate must
// rotate the underlying session identifier (fixation guard).
type SessionStore interface {
	Get(ctx context.Context, name string) (string, error)
	SetMany(ctx context.Context, values map[string]string) error
	Destroy(ctx context.Context) error
	Recreate(ctx context.Context) error
}

// NotificationSender delivers out-of-band messages, typically email.
type NotificationSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// CookieTransport abstracts the client-side cookie jar for the current
// request. Values and expiry are produced by aclauth; transport mechanics
// (Secure, HttpOnly, paths) belong to the implementation.
type CookieTransport interface {
	Set(ctx context.Context, name, value string, ttl time.Duration) error
	Get(ctx context.Context, name string) (string, error)
	Delete(ctx context.Context, name string) error
}

// Built-in pseudo-roles understood by RestrictAccess.
const (
	RoleGuest    = "guest"
	RoleLoggedIn = "logged_in"
)

// AccessDecision is the outcome of RestrictAccess. It is a value for the
// caller to act on, not an error: either the request is permitted, or it
// should be redirected, or it should be answered with StatusCode.
type AccessDecision struct {
	Permitted  bool
	RedirectTo string
	StatusCode int
}

// Redirects reports whether the caller should redirect rather than answer
// with StatusCode.
func (d AccessDecision) Redirects() bool {
	return !d.Permitted && d.RedirectTo != ""
}

// AuditEvent is a structured audit record emitted by the service.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the service's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// io.Writer, one object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] writing to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies one counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

// Counter identifiers, re-exported for exporters and tests.
const (
	MetricRegisterSuccess     = internalmetrics.MetricRegisterSuccess
	MetricRegisterFailure     = internalmetrics.MetricRegisterFailure
	MetricLoginSuccess        = internalmetrics.MetricLoginSuccess
	MetricLoginFailure        = internalmetrics.MetricLoginFailure
	MetricLoginThrottled      = internalmetrics.MetricLoginThrottled
	MetricAmbiguousIdentity   = internalmetrics.MetricAmbiguousIdentity
	MetricRememberIssued      = internalmetrics.MetricRememberIssued
	MetricRememberResumed     = internalmetrics.MetricRememberResumed
	MetricRememberRejected    = internalmetrics.MetricRememberRejected
	MetricLogout              = internalmetrics.MetricLogout
	MetricResetRequested      = internalmetrics.MetricResetRequested
	MetricResetRequestFailure = internalmetrics.MetricResetRequestFailure
	MetricResetCheckFailure   = internalmetrics.MetricResetCheckFailure
	MetricResetConsumed       = internalmetrics.MetricResetConsumed
	MetricAccessDenied        = internalmetrics.MetricAccessDenied
	MetricAssertionIssued     = internalmetrics.MetricAssertionIssued
)

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot = internalmetrics.Snapshot
