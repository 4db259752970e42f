package aclauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strconv"

	"github.com/acldev/aclauth/internal"
	"github.com/acldev/aclauth/internal/flows"
	"github.com/acldev/aclauth/internal/metrics"
)

type loginOptions struct {
	remember  bool
	mirrorAll bool
	fields    []string
}

// LoginOption tunes one Login call.
type LoginOption func(*loginOptions)

// WithRemember issues a remember token on successful login and sets the two
// remember cookies, letting ResumeRemembered re-authenticate future visits.
func WithRemember() LoginOption {
	return func(o *loginOptions) {
		o.remember = true
	}
}

// WithSessionFields names extra user attributes to mirror into the session as
// user_<field> values. By default only the identity is mirrored.
func WithSessionFields(fields ...string) LoginOption {
	return func(o *loginOptions) {
		o.fields = fields
	}
}

// WithAllSessionFields mirrors every user attribute except the credential
// into the session.
func WithAllSessionFields() LoginOption {
	return func(o *loginOptions) {
		o.mirrorAll = true
	}
}

// Login authenticates identity and password against the directory and
// establishes the session. An unknown identity and a wrong password both
// return ErrBadCredentials; callers get no signal which one it was.
func (s *Service) Login(ctx context.Context, identity, plaintext string, opts ...LoginOption) error {
	if s.sessions == nil {
		return ErrNoSession
	}

	var o loginOptions
	for _, opt := range opts {
		opt(&o)
	}

	deps := flows.LoginDeps{
		ClientIP: s.clientIP,
		FindByIdentity: func(ctx context.Context, identity string) (*flows.LoginUser, error) {
			user, err := s.directory.FindOneBy(ctx, s.config.IdentityField, identity)
			if err != nil || user == nil {
				return nil, err
			}
			return &flows.LoginUser{
				ID:            user.ID,
				Identity:      user.Identity,
				PasswordHash:  user.PasswordHash,
				RememberToken: user.RememberToken,
				Attributes:    user.Attributes,
			}, nil
		},
		CountByIdentity: func(ctx context.Context, identity string) (int, error) {
			return s.directory.CountBy(ctx, s.config.IdentityField, identity)
		},
		VerifyPassword: s.hasher.Verify,
		OnAmbiguous: func(identity string, count int) {
			s.meters.Inc(metrics.MetricAmbiguousIdentity)
			s.emitAudit(ctx, "login_ambiguous_identity", "", identity, false, nil,
				map[string]string{"matches": strconv.Itoa(count)})
		},
		Errors: flows.LoginErrors{
			BadCredentials: ErrBadCredentials,
			Throttled:      ErrThrottled,
			Unavailable:    ErrPersistence,
		},
	}
	if s.limiter != nil {
		deps.CheckRate = s.limiter.CheckLogin
		deps.RecordFailure = s.limiter.RecordLoginFailure
		deps.ResetRate = s.limiter.ResetLogin
	}

	found, err := flows.RunLogin(ctx, identity, plaintext, deps)
	if err != nil {
		if errors.Is(err, ErrThrottled) {
			s.codes.add(CodeLoginThrottled)
			s.meters.Inc(metrics.MetricLoginThrottled)
		} else {
			s.codes.add(CodeLoginFailed)
			s.meters.Inc(metrics.MetricLoginFailure)
		}
		s.emitAudit(ctx, "login", "", identity, false, err, nil)
		return err
	}

	user := &User{
		ID:            found.ID,
		Identity:      found.Identity,
		PasswordHash:  found.PasswordHash,
		RememberToken: found.RememberToken,
		Attributes:    found.Attributes,
	}
	if err := s.establishSession(ctx, user, o.fields, o.mirrorAll); err != nil {
		s.codes.add(CodeLoginFailed)
		s.emitAudit(ctx, "login", user.ID, identity, false, err, nil)
		return err
	}

	if o.remember && s.config.Remember.Enabled && s.cookies != nil {
		if err := s.issueRemember(ctx, user); err != nil {
			// The session is established; losing the remember token only
			// costs a future auto-login.
			s.emitAudit(ctx, "remember_issue", user.ID, identity, false, err, nil)
		}
	}

	s.meters.Inc(metrics.MetricLoginSuccess)
	s.emitAudit(ctx, "login", user.ID, identity, true, nil, nil)
	return nil
}

// ResumeRemembered authenticates from the remember cookie pair: the identity
// cookie locates the user, the token cookie must match the stored remember
// token exactly. On success the session is populated like a password login.
// The token is not rotated.
func (s *Service) ResumeRemembered(ctx context.Context) error {
	if s.sessions == nil {
		return ErrNoSession
	}
	if s.cookies == nil || !s.config.Remember.Enabled {
		return ErrRememberInvalid
	}

	identity, _ := s.cookies.Get(ctx, s.config.Remember.IdentityCookie)
	token, _ := s.cookies.Get(ctx, s.config.Remember.TokenCookie)
	if identity == "" || token == "" {
		return ErrRememberInvalid
	}

	user, err := s.directory.FindOneBy(ctx, s.config.IdentityField, identity)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if user == nil || user.RememberToken == "" ||
		subtle.ConstantTimeCompare([]byte(user.RememberToken), []byte(token)) != 1 {
		s.meters.Inc(metrics.MetricRememberRejected)
		s.emitAudit(ctx, "remember_resume", "", identity, false, ErrRememberInvalid, nil)
		return ErrRememberInvalid
	}

	if err := s.establishSession(ctx, user, nil, false); err != nil {
		return err
	}

	s.meters.Inc(metrics.MetricRememberResumed)
	s.emitAudit(ctx, "remember_resume", user.ID, identity, true, nil, nil)
	return nil
}

// Logout clears the authenticated session and both remember cookies, and
// reports whether the caller ended up anonymous. The session key is rotated
// so the old identifier cannot be replayed.
func (s *Service) Logout(ctx context.Context) bool {
	if s.sessions == nil {
		return false
	}

	userID := s.CurrentUserID(ctx)

	if err := s.sessions.Recreate(ctx); err != nil {
		s.emitAudit(ctx, "logout", userID, "", false, err, nil)
		return !s.LoggedIn(ctx)
	}

	if s.cookies != nil && s.config.Remember.Enabled {
		_ = s.cookies.Delete(ctx, s.config.Remember.IdentityCookie)
		_ = s.cookies.Delete(ctx, s.config.Remember.TokenCookie)
	}

	s.meters.Inc(metrics.MetricLogout)
	s.emitAudit(ctx, "logout", userID, "", true, nil, nil)
	return !s.LoggedIn(ctx)
}

// establishSession rotates the session key and writes the principal's state.
// Only the identity is mirrored unless extra fields are named or all is set;
// the credential never is.
func (s *Service) establishSession(ctx context.Context, user *User, fields []string, all bool) error {
	if err := s.sessions.Recreate(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	values := map[string]string{
		SessionUserID:   user.ID,
		SessionLoggedIn: sessionLoggedInTrue,
	}
	if all {
		for field, v := range user.Attributes {
			if field == s.config.PasswordField {
				continue
			}
			values[SessionFieldPrefix+field] = v
		}
	} else {
		for _, field := range fields {
			if field == s.config.PasswordField {
				continue
			}
			if v, ok := user.Attributes[field]; ok {
				values[SessionFieldPrefix+field] = v
			}
		}
	}
	values[SessionFieldPrefix+s.config.IdentityField] = user.Identity

	if err := s.sessions.SetMany(ctx, values); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (s *Service) issueRemember(ctx context.Context, user *User) error {
	token, err := internal.NewRememberToken()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	err = s.directory.Update(ctx, user.ID, map[string]string{FieldRememberToken: token})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	ttl := s.config.Remember.CookieTTL
	if err := s.cookies.Set(ctx, s.config.Remember.IdentityCookie, user.Identity, ttl); err != nil {
		return err
	}
	if err := s.cookies.Set(ctx, s.config.Remember.TokenCookie, token, ttl); err != nil {
		return err
	}

	s.meters.Inc(metrics.MetricRememberIssued)
	return nil
}
