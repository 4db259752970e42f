package aclauth

import "errors"

var (
	// ErrValidation is returned by Register when the identity or password
	// field is missing from the input.
	ErrValidation = errors.New("required registration fields missing")
	// ErrPersistence is returned when a directory insert or update fails.
	ErrPersistence = errors.New("directory persistence failure")
	// ErrBadCredentials is returned by Login for an unknown identity AND for
	// a password mismatch. The two cases are deliberately merged so callers
	// cannot enumerate accounts.
	ErrBadCredentials = errors.New("identity unknown or password mismatch")
	// ErrThrottled is returned when the login or reset attempt budget for an
	// identity or client IP is exhausted.
	ErrThrottled = errors.New("too many attempts")
	// ErrUserNotFound is returned by the password-reset operations when the
	// identity has no directory record.
	ErrUserNotFound = errors.New("user not found")
	// ErrResetExpired is returned when the reset token's issue time is older
	// than the configured TTL.
	ErrResetExpired = errors.New("reset token expired")
	// ErrResetMismatch is returned when the presented reset token differs
	// from the stored one.
	ErrResetMismatch = errors.New("reset token mismatch")
	// ErrRememberInvalid is returned by ResumeRemembered when the cookie
	// pair is absent or does not match the stored remember token.
	ErrRememberInvalid = errors.New("remember token invalid")
	// ErrNotificationFailed is returned when the reset email could not be
	// handed to the notification sender.
	ErrNotificationFailed = errors.New("notification delivery failed")
	// ErrNoSession is returned by session-touching operations on a Service
	// that was never bound to a request via ForRequest.
	ErrNoSession = errors.New("service not bound to a request session")
	// ErrAssertionsDisabled is returned by IssueAssertion when no assertion
	// signing configuration was provided.
	ErrAssertionsDisabled = errors.New("session assertions disabled")
	// ErrServiceNotReady signals a Service used before Build wired its
	// collaborators.
	ErrServiceNotReady = errors.New("service not initialized")
)

// Error codes accumulated on the request-scoped recorder, matching the
// identifiers used in translation catalogs.
const (
	CodeRegisterFailed   = "register_failed"
	CodeLoginFailed      = "login_failed"
	CodeLoginThrottled   = "login_throttled"
	CodeResetNotFound    = "reset_user_not_found"
	CodeResetExpired     = "reset_token_expired"
	CodeResetCheckFailed = "reset_token_check_failed"
)
