package aclauth

import (
	"errors"
	"fmt"
	"text/template"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acldev/aclauth/internal/audit"
	"github.com/acldev/aclauth/internal/metrics"
	"github.com/acldev/aclauth/internal/rate"
	"github.com/acldev/aclauth/jwt"
	"github.com/acldev/aclauth/password"
)

// Builder assembles a Service. Collaborators are attached with With* calls;
// Build validates the configuration and wires everything once.
type Builder struct {
	config    Config
	hasConfig bool
	directory UserDirectory
	mailer    NotificationSender
	redis     redis.UniversalClient
	auditSink AuditSink
}

// New starts a Builder with the default configuration.
func New() *Builder {
	return &Builder{}
}

// WithConfig replaces the default configuration. The config is cloned on
// Build; later mutation of cfg has no effect. A zero-value Password section
// is filled with password.DefaultConfig.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	b.hasConfig = true
	return b
}

// WithDirectory attaches the user persistence collaborator. Required.
func (b *Builder) WithDirectory(d UserDirectory) *Builder {
	b.directory = d
	return b
}

// WithMailer attaches the notification sender used for reset emails.
// Without one, RequestPasswordReset still issues tokens but delivers nothing.
func (b *Builder) WithMailer(m NotificationSender) *Builder {
	b.mailer = m
	return b
}

// WithRedis attaches a Redis client and enables the login and reset attempt
// budgets from SecurityConfig. Throttling stays off without it.
func (b *Builder) WithRedis(c redis.UniversalClient) *Builder {
	b.redis = c
	return b
}

// WithAuditSink attaches the audit event receiver. Events flow only when
// AuditConfig.Enabled is also set.
func (b *Builder) WithAuditSink(s AuditSink) *Builder {
	b.auditSink = s
	return b
}

// Build validates and wires the Service. The returned Service is the base
// instance; bind it per request with ForRequest before touching sessions or
// cookies.
func (b *Builder) Build() (*Service, error) {
	cfg := defaultConfig()
	if b.hasConfig {
		cfg = cloneConfig(b.config)
	}
	if cfg.Password == (password.Config{}) {
		cfg.Password = password.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if b.directory == nil {
		return nil, errors.New("a UserDirectory is required")
	}

	hasher, err := password.New(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("password config: %w", err)
	}

	resetTmpl, err := template.New("reset_email").Parse(cfg.Reset.EmailTemplate)
	if err != nil {
		return nil, fmt.Errorf("reset email template: %w", err)
	}

	var limiter *rate.Limiter
	if b.redis != nil {
		limiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle: cfg.Security.EnableIPThrottle,
			MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
			LoginCooldown:    cfg.Security.LoginCooldown,
			MaxResetRequests: cfg.Security.MaxResetRequests,
			ResetCooldown:    cfg.Security.ResetCooldown,
		})
	}

	var assertions *jwt.Manager
	if cfg.Assertions.Enabled {
		assertions, err = jwt.NewManager(jwt.Config{
			TTL:           cfg.Assertions.TTL,
			SigningMethod: jwt.SigningMethod(cfg.Assertions.SigningMethod),
			PrivateKey:    cfg.Assertions.PrivateKey,
			PublicKey:     cfg.Assertions.PublicKey,
			Issuer:        cfg.Assertions.Issuer,
		})
		if err != nil {
			return nil, fmt.Errorf("assertion config: %w", err)
		}
	}

	return &Service{
		config:    cfg,
		directory: b.directory,
		hasher:    hasher,
		mailer:    b.mailer,
		limiter:   limiter,
		auditor: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
		meters:     metrics.New(metrics.Config{Enabled: cfg.Metrics.Enabled}),
		assertions: assertions,
		resetTmpl:  resetTmpl,
		now:        time.Now,
	}, nil
}
