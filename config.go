package aclauth

import (
	"errors"
	"strings"
	"time"

	"github.com/acldev/aclauth/password"
)

// Config is the immutable service configuration. It is cloned on Build and
// validated once at startup; nothing reads configuration dynamically after
// that.
type Config struct {
	// IdentityField names the user attribute used as login name, e.g.
	// "email" or "username".
	IdentityField string
	// PasswordField names the attribute that carries the credential in
	// registration input. Its value is hashed before it reaches the
	// directory.
	PasswordField string

	Remember   RememberConfig
	Reset      ResetConfig
	Access     AccessConfig
	Password   password.Config
	Security   SecurityConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
	Assertions AssertionConfig

	// Translations maps error codes to human-readable messages, read lazily
	// by Service.Errors.
	Translations map[string]string
}

// RememberConfig controls remember-me resumption.
type RememberConfig struct {
	Enabled        bool
	IdentityCookie string
	TokenCookie    string
	CookieTTL      time.Duration
}

// ResetConfig controls the password-reset token lifecycle and notification.
type ResetConfig struct {
	// TokenTTL bounds reset token validity from issue time.
	TokenTTL time.Duration
	// LegacyCharset switches the token generator to the historical
	// three-class draw for installations that must verify codes issued by
	// the predecessor system. Leave off for uniform alphanumeric tokens.
	LegacyCharset bool
	EmailSubject  string
	// EmailTemplate is a text/template body. It renders with
	// {{.Identity}}, {{.Token}}, and {{.User}} (the attribute map).
	EmailTemplate string
}

// AccessConfig names the redirect targets used when RestrictAccess denies.
type AccessConfig struct {
	// LoginTarget receives anonymous principals, e.g. "/login".
	LoginTarget string
	// DeniedTarget receives authenticated principals lacking the role; it is
	// also the anonymous fallback when LoginTarget is empty.
	DeniedTarget string
}

// SecurityConfig tunes the optional Redis-backed attempt budgets. All
// throttling is off unless a Redis client is supplied to the Builder.
type SecurityConfig struct {
	EnableIPThrottle bool
	MaxLoginAttempts int
	LoginCooldown    time.Duration
	MaxResetRequests int
	ResetCooldown    time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// AssertionSigningMethod selects the signature algorithm for session
// assertions.
type AssertionSigningMethod string

const (
	AssertionHS256   AssertionSigningMethod = "hs256"
	AssertionEd25519 AssertionSigningMethod = "ed25519"
)

// AssertionConfig configures short-lived signed assertions minted from an
// authenticated session for downstream services. Disabled when Enabled is
// false.
type AssertionConfig struct {
	Enabled       bool
	TTL           time.Duration
	SigningMethod AssertionSigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
}

const (
	defaultRememberTTL = 2 * 365 * 24 * time.Hour
	defaultResetTTL    = 1200 * time.Second
)

func defaultConfig() Config {
	return Config{
		IdentityField: "email",
		PasswordField: "password",
		Remember: RememberConfig{
			Enabled:        true,
			IdentityCookie: "identity",
			TokenCookie:    "remember_token",
			CookieTTL:      defaultRememberTTL,
		},
		Reset: ResetConfig{
			TokenTTL:     defaultResetTTL,
			EmailSubject: "Password reset",
			EmailTemplate: "A password reset was requested for {{.Identity}}.\n" +
				"Your reset code is: {{.Token}}\n" +
				"The code expires shortly. If you did not request this, ignore this message.\n",
		},
		Password: password.DefaultConfig(),
		Security: SecurityConfig{
			MaxLoginAttempts: 10,
			LoginCooldown:    15 * time.Minute,
			MaxResetRequests: 5,
			ResetCooldown:    time.Hour,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Assertions: AssertionConfig{
			TTL:           2 * time.Minute,
			SigningMethod: AssertionHS256,
		},
	}
}

// Validate checks invariants that would otherwise surface as runtime
// surprises. Build calls it; callers constructing a Config by hand may call
// it directly.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.IdentityField) == "" {
		return errors.New("IdentityField must be set")
	}
	if strings.TrimSpace(c.PasswordField) == "" {
		return errors.New("PasswordField must be set")
	}
	if c.IdentityField == c.PasswordField {
		return errors.New("IdentityField and PasswordField must differ")
	}
	if c.Reset.TokenTTL <= 0 {
		return errors.New("Reset.TokenTTL must be positive")
	}
	if c.Remember.Enabled {
		if c.Remember.IdentityCookie == "" || c.Remember.TokenCookie == "" {
			return errors.New("remember cookies must be named when Remember is enabled")
		}
		if c.Remember.IdentityCookie == c.Remember.TokenCookie {
			return errors.New("remember cookie names must differ")
		}
		if c.Remember.CookieTTL <= 0 {
			return errors.New("Remember.CookieTTL must be positive")
		}
	}
	if c.Assertions.Enabled {
		if c.Assertions.TTL <= 0 {
			return errors.New("Assertions.TTL must be positive")
		}
		switch c.Assertions.SigningMethod {
		case AssertionHS256:
			if len(c.Assertions.PrivateKey) == 0 {
				return errors.New("hs256 assertions require a private key")
			}
		case AssertionEd25519:
			if len(c.Assertions.PrivateKey) == 0 || len(c.Assertions.PublicKey) == 0 {
				return errors.New("ed25519 assertions require a key pair")
			}
		default:
			return errors.New("unsupported assertion signing method")
		}
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Assertions.PrivateKey = cloneBytes(cfg.Assertions.PrivateKey)
	out.Assertions.PublicKey = cloneBytes(cfg.Assertions.PublicKey)
	if cfg.Translations != nil {
		out.Translations = make(map[string]string, len(cfg.Translations))
		for k, v := range cfg.Translations {
			out.Translations[k] = v
		}
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
