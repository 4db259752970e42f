package flows

import "context"

// LoginUser is the flow-local user model produced by a successful credential
// check.
type LoginUser struct {
	ID            string
	Identity      string
	PasswordHash  string
	RememberToken string
	Attributes    map[string]string
}

// LoginErrors carries host-level sentinel errors used by the login flow.
type LoginErrors struct {
	BadCredentials error
	Throttled      error
	Unavailable    error
}

// LoginDeps captures credential-check dependencies. The rate hooks are
// optional; leaving them nil disables throttling.
type LoginDeps struct {
	ClientIP string

	CheckRate     func(ctx context.Context, identity, ip string) error
	RecordFailure func(ctx context.Context, identity, ip string) error
	ResetRate     func(ctx context.Context, identity, ip string) error

	FindByIdentity  func(context.Context, string) (*LoginUser, error)
	CountByIdentity func(context.Context, string) (int, error)
	VerifyPassword  func(plaintext, hash string) bool

	// OnAmbiguous fires when more than one directory row matches the
	// identity. The caller still receives BadCredentials, since duplicates
	// must not be observable from outside, but operators need to know.
	OnAmbiguous func(identity string, count int)

	Errors LoginErrors
}

// RunLogin authenticates identity+password and returns the matched user.
// Unknown identity and password mismatch produce the same error.
func RunLogin(ctx context.Context, identity, plaintext string, deps LoginDeps) (*LoginUser, error) {
	if deps.FindByIdentity == nil || deps.VerifyPassword == nil {
		return nil, deps.Errors.Unavailable
	}

	if deps.CheckRate != nil {
		if err := deps.CheckRate(ctx, identity, deps.ClientIP); err != nil {
			return nil, deps.Errors.Throttled
		}
	}

	if identity == "" || plaintext == "" {
		return nil, deps.fail(ctx, identity)
	}

	if deps.CountByIdentity != nil {
		count, err := deps.CountByIdentity(ctx, identity)
		if err != nil {
			return nil, deps.Errors.Unavailable
		}
		if count > 1 {
			if deps.OnAmbiguous != nil {
				deps.OnAmbiguous(identity, count)
			}
			return nil, deps.fail(ctx, identity)
		}
	}

	user, err := deps.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, deps.Errors.Unavailable
	}
	if user == nil {
		return nil, deps.fail(ctx, identity)
	}

	if !deps.VerifyPassword(plaintext, user.PasswordHash) {
		return nil, deps.fail(ctx, identity)
	}

	if deps.ResetRate != nil {
		_ = deps.ResetRate(ctx, identity, deps.ClientIP)
	}

	return user, nil
}

func (deps LoginDeps) fail(ctx context.Context, identity string) error {
	if deps.RecordFailure != nil {
		if err := deps.RecordFailure(ctx, identity, deps.ClientIP); err != nil {
			return deps.Errors.Throttled
		}
	}
	return deps.Errors.BadCredentials
}
