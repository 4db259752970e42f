package flows

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// ResetUser is the flow-local view of the user a reset token belongs to.
type ResetUser struct {
	ID          string
	Identity    string
	ResetCode   string
	ResetSentAt time.Time
	Attributes  map[string]string
}

// ResetErrors carries host-level sentinel errors used by the reset flows.
type ResetErrors struct {
	NotFound    error
	Expired     error
	Mismatch    error
	Persistence error
	Throttled   error
}

// ResetDeps captures reset-lifecycle dependencies.
type ResetDeps struct {
	TTL time.Duration
	Now func() time.Time

	CodeField string
	TimeField string

	CheckRate      func(ctx context.Context, identity string) error
	FindByIdentity func(context.Context, string) (*ResetUser, error)
	NewCode        func() (string, error)
	HashPassword   func(string) (string, error)
	PasswordField  string
	Update         func(ctx context.Context, id string, fields map[string]string) error

	Errors ResetErrors
}

// RunIssueReset stamps a fresh single-use token on the user record and
// returns it together with the user, so the caller can deliver it out of
// band. Re-issuing overwrites any outstanding token.
func RunIssueReset(ctx context.Context, identity string, deps ResetDeps) (string, *ResetUser, error) {
	if deps.CheckRate != nil {
		if err := deps.CheckRate(ctx, identity); err != nil {
			return "", nil, deps.Errors.Throttled
		}
	}

	user, err := deps.FindByIdentity(ctx, identity)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}
	if user == nil {
		return "", nil, deps.Errors.NotFound
	}

	code, err := deps.NewCode()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	now := deps.Now()
	err = deps.Update(ctx, user.ID, map[string]string{
		deps.CodeField: code,
		deps.TimeField: strconv.FormatInt(now.Unix(), 10),
	})
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	user.ResetCode = code
	user.ResetSentAt = now
	return code, user, nil
}

// RunCheckReset validates a presented token without consuming it. The token
// must belong to the identity, be inside its TTL, and match byte for byte.
func RunCheckReset(ctx context.Context, identity, token string, deps ResetDeps) (*ResetUser, error) {
	user, err := deps.FindByIdentity(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}
	if user == nil {
		return nil, deps.Errors.NotFound
	}

	if user.ResetCode == "" || user.ResetSentAt.IsZero() {
		return nil, deps.Errors.Mismatch
	}
	if deps.Now().Sub(user.ResetSentAt) > deps.TTL {
		return nil, deps.Errors.Expired
	}
	if token == "" || token != user.ResetCode {
		return nil, deps.Errors.Mismatch
	}

	return user, nil
}

// RunConsumeReset validates the token, replaces the credential, and clears
// the token fields so the code cannot be replayed.
func RunConsumeReset(ctx context.Context, identity, token, newPassword string, deps ResetDeps) (*ResetUser, error) {
	user, err := RunCheckReset(ctx, identity, token, deps)
	if err != nil {
		return nil, err
	}

	hashed, err := deps.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	err = deps.Update(ctx, user.ID, map[string]string{
		deps.PasswordField: hashed,
		deps.CodeField:     "",
		deps.TimeField:     "",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}

	user.ResetCode = ""
	user.ResetSentAt = time.Time{}
	return user, nil
}
