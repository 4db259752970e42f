package flows

import (
	"context"
	"fmt"
)

// RegisterErrors carries host-level sentinel errors used by the register flow.
type RegisterErrors struct {
	Validation  error
	Persistence error
}

// RegisterDeps captures registration dependencies.
type RegisterDeps struct {
	IdentityField string
	PasswordField string

	FieldIsKnown func(context.Context, string) (bool, error)
	HashPassword func(string) (string, error)
	Insert       func(context.Context, map[string]string) (string, error)

	Errors RegisterErrors
}

// RunRegister validates the input, hashes the credential, filters the field
// map down to the directory schema, and inserts the record. It returns the
// new user id. Unknown fields are dropped silently; that allow-list is the
// mass-assignment guard.
func RunRegister(ctx context.Context, fields map[string]string, deps RegisterDeps) (string, error) {
	if deps.FieldIsKnown == nil || deps.HashPassword == nil || deps.Insert == nil {
		return "", deps.Errors.Persistence
	}

	if fields[deps.IdentityField] == "" || fields[deps.PasswordField] == "" {
		return "", deps.Errors.Validation
	}

	insert := make(map[string]string, len(fields))
	for field, value := range fields {
		known, err := deps.FieldIsKnown(ctx, field)
		if err != nil {
			return "", fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
		}
		if !known {
			continue
		}

		if field == deps.PasswordField {
			hashed, err := deps.HashPassword(value)
			if err != nil {
				return "", fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
			}
			value = hashed
		}
		insert[field] = value
	}

	id, err := deps.Insert(ctx, insert)
	if err != nil {
		return "", fmt.Errorf("%w: %v", deps.Errors.Persistence, err)
	}
	if id == "" {
		return "", deps.Errors.Persistence
	}

	return id, nil
}
