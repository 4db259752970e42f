package aclauth

import (
	"context"

	"github.com/acldev/aclauth/internal/metrics"
	"github.com/acldev/aclauth/jwt"
)

// IssueAssertion mints a short-lived signed statement that the bound session
// is authenticated, for handing to downstream services. Requires
// AssertionConfig.Enabled and a logged-in session.
func (s *Service) IssueAssertion(ctx context.Context) (string, error) {
	if s.assertions == nil {
		return "", ErrAssertionsDisabled
	}
	if !s.LoggedIn(ctx) {
		return "", ErrNoSession
	}

	uid := s.CurrentUserID(ctx)
	identity := s.SessionAttribute(ctx, s.config.IdentityField)

	token, err := s.assertions.Issue(uid, identity, s.sessionKey())
	if err != nil {
		s.emitAudit(ctx, "assertion_issue", uid, identity, false, err, nil)
		return "", err
	}

	s.meters.Inc(metrics.MetricAssertionIssued)
	s.emitAudit(ctx, "assertion_issue", uid, identity, true, nil, nil)
	return token, nil
}

// ValidateAssertion verifies a token issued by IssueAssertion and returns its
// claims.
func (s *Service) ValidateAssertion(token string) (*jwt.SessionClaims, error) {
	if s.assertions == nil {
		return nil, ErrAssertionsDisabled
	}
	return s.assertions.Parse(token)
}
