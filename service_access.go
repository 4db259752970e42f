package aclauth

import (
	"context"
	"net/http"

	"github.com/acldev/aclauth/internal/metrics"
)

// HasRole reports whether a user holds the named role. Without an explicit
// userID it checks the authenticated principal; an anonymous session yields
// false, never an error.
func (s *Service) HasRole(ctx context.Context, role string, userID ...string) bool {
	id := ""
	if len(userID) > 0 {
		id = userID[0]
	} else {
		id = s.CurrentUserID(ctx)
	}
	if id == "" {
		return false
	}

	ok, err := s.directory.HasRole(ctx, id, role)
	return err == nil && ok
}

// RestrictAccess decides whether the current principal may proceed under the
// named role. "guest" is permitted in every session state, "logged_in"
// requires authentication, and any other role requires authentication plus
// directory role membership.
//
// The decision is a value, not an error: a denied anonymous principal is
// pointed at the login target, a denied authenticated principal at the denied
// target, and without configured targets the caller gets a 401 status.
func (s *Service) RestrictAccess(ctx context.Context, role string) AccessDecision {
	loggedIn := s.LoggedIn(ctx)

	permitted := false
	switch role {
	case RoleGuest:
		permitted = true
	case RoleLoggedIn:
		permitted = loggedIn
	default:
		permitted = loggedIn && s.HasRole(ctx, role)
	}
	if permitted {
		return AccessDecision{Permitted: true}
	}

	s.meters.Inc(metrics.MetricAccessDenied)
	s.emitAudit(ctx, "access_denied", s.CurrentUserID(ctx), "", false, nil,
		map[string]string{"role": role})

	if !loggedIn && s.config.Access.LoginTarget != "" {
		return AccessDecision{RedirectTo: s.config.Access.LoginTarget}
	}
	if s.config.Access.DeniedTarget != "" {
		return AccessDecision{RedirectTo: s.config.Access.DeniedTarget}
	}
	return AccessDecision{StatusCode: http.StatusUnauthorized}
}
