package aclauth

import (
	"context"

	"github.com/acldev/aclauth/internal/flows"
	"github.com/acldev/aclauth/internal/metrics"
)

// Register creates a user from the given field map and returns the new user
// id. The identity and password fields are required; fields the directory
// does not know are dropped. The password is hashed before it leaves this
// package.
//
// When the Service is bound to a request, a successful registration also logs
// the new user in with a remember token, so the caller lands in an
// authenticated session.
func (s *Service) Register(ctx context.Context, fields map[string]string) (string, error) {
	identity := fields[s.config.IdentityField]

	id, err := flows.RunRegister(ctx, fields, flows.RegisterDeps{
		IdentityField: s.config.IdentityField,
		PasswordField: s.config.PasswordField,
		FieldIsKnown:  s.directory.FieldIsKnown,
		HashPassword:  s.hasher.Hash,
		Insert:        s.directory.Insert,
		Errors: flows.RegisterErrors{
			Validation:  ErrValidation,
			Persistence: ErrPersistence,
		},
	})
	if err != nil {
		s.codes.add(CodeRegisterFailed)
		s.meters.Inc(metrics.MetricRegisterFailure)
		s.emitAudit(ctx, "register", "", identity, false, err, nil)
		return "", err
	}

	s.meters.Inc(metrics.MetricRegisterSuccess)
	s.emitAudit(ctx, "register", id, identity, true, nil, nil)

	// Session establishment is best effort here; the account exists either
	// way and the caller can always log in explicitly.
	if s.sessions != nil {
		_ = s.Login(ctx, identity, fields[s.config.PasswordField], WithRemember())
	}

	return id, nil
}
