package aclauth

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/acldev/aclauth/internal"
	"github.com/acldev/aclauth/internal/flows"
	"github.com/acldev/aclauth/internal/metrics"
)

func (s *Service) resetDeps() flows.ResetDeps {
	deps := flows.ResetDeps{
		TTL:           s.config.Reset.TokenTTL,
		Now:           s.now,
		CodeField:     FieldResetCode,
		TimeField:     FieldResetTime,
		PasswordField: s.config.PasswordField,
		FindByIdentity: func(ctx context.Context, identity string) (*flows.ResetUser, error) {
			user, err := s.directory.FindOneBy(ctx, s.config.IdentityField, identity)
			if err != nil || user == nil {
				return nil, err
			}
			return &flows.ResetUser{
				ID:          user.ID,
				Identity:    user.Identity,
				ResetCode:   user.ResetCode,
				ResetSentAt: user.ResetSentAt,
				Attributes:  user.Attributes,
			}, nil
		},
		NewCode: func() (string, error) {
			if s.config.Reset.LegacyCharset {
				return internal.NewLegacyResetCode(internal.ResetCodeLength)
			}
			return internal.NewResetCode(internal.ResetCodeLength)
		},
		HashPassword: s.hasher.Hash,
		Update:       s.directory.Update,
		Errors: flows.ResetErrors{
			NotFound:    ErrUserNotFound,
			Expired:     ErrResetExpired,
			Mismatch:    ErrResetMismatch,
			Persistence: ErrPersistence,
			Throttled:   ErrThrottled,
		},
	}
	if s.limiter != nil {
		deps.CheckRate = s.limiter.CheckResetRequest
	}
	return deps
}

func (s *Service) recordResetFailure(err error) {
	switch {
	case errors.Is(err, ErrUserNotFound):
		s.codes.add(CodeResetNotFound)
	case errors.Is(err, ErrResetExpired):
		s.codes.add(CodeResetExpired)
	default:
		s.codes.add(CodeResetCheckFailed)
	}
}

// RequestPasswordReset issues a single-use reset token for the identity,
// stamps it on the user record, and mails it through the configured sender.
// The token is returned so hosts without a mailer can deliver it themselves.
// A repeated request overwrites the previous token.
func (s *Service) RequestPasswordReset(ctx context.Context, identity string) (string, error) {
	code, user, err := flows.RunIssueReset(ctx, identity, s.resetDeps())
	if err != nil {
		s.recordResetFailure(err)
		s.meters.Inc(metrics.MetricResetRequestFailure)
		s.emitAudit(ctx, "reset_request", "", identity, false, err, nil)
		return "", err
	}

	if s.mailer != nil {
		body, renderErr := s.renderResetEmail(user, code)
		if renderErr == nil {
			renderErr = s.mailer.Send(ctx, user.Identity, s.config.Reset.EmailSubject, body)
		}
		if renderErr != nil {
			s.meters.Inc(metrics.MetricResetRequestFailure)
			s.emitAudit(ctx, "reset_request", user.ID, identity, false, renderErr, nil)
			return "", fmt.Errorf("%w: %v", ErrNotificationFailed, renderErr)
		}
	}

	s.meters.Inc(metrics.MetricResetRequested)
	s.emitAudit(ctx, "reset_request", user.ID, identity, true, nil, nil)
	return code, nil
}

// CheckResetToken validates a presented token without consuming it: the
// identity must exist, the token must be inside its TTL, and it must match
// the stored one exactly.
func (s *Service) CheckResetToken(ctx context.Context, identity, token string) error {
	_, err := flows.RunCheckReset(ctx, identity, token, s.resetDeps())
	if err != nil {
		s.recordResetFailure(err)
		s.meters.Inc(metrics.MetricResetCheckFailure)
		s.emitAudit(ctx, "reset_check", "", identity, false, err, nil)
		return err
	}
	return nil
}

// ConfirmPasswordReset consumes the token: it re-validates, replaces the
// credential with the hash of newPassword, and clears the token fields so the
// code cannot be replayed. When bound to a request, the user is then logged
// in with the new credential, with every attribute mirrored into the session.
func (s *Service) ConfirmPasswordReset(ctx context.Context, identity, token, newPassword string) error {
	user, err := flows.RunConsumeReset(ctx, identity, token, newPassword, s.resetDeps())
	if err != nil {
		s.recordResetFailure(err)
		s.meters.Inc(metrics.MetricResetCheckFailure)
		s.emitAudit(ctx, "reset_confirm", "", identity, false, err, nil)
		return err
	}

	s.meters.Inc(metrics.MetricResetConsumed)
	s.emitAudit(ctx, "reset_confirm", user.ID, identity, true, nil, nil)

	if s.sessions != nil {
		return s.Login(ctx, user.Identity, newPassword, WithAllSessionFields())
	}
	return nil
}

func (s *Service) renderResetEmail(user *flows.ResetUser, code string) (string, error) {
	var buf bytes.Buffer
	err := s.resetTmpl.Execute(&buf, struct {
		Identity string
		Token    string
		User     map[string]string
	}{
		Identity: user.Identity,
		Token:    code,
		User:     user.Attributes,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
