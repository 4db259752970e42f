package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acldev/aclauth"
)

// ErrRedisUnavailable wraps connectivity and protocol failures from the
// underlying client.
var ErrRedisUnavailable = errors.New("directory redis unavailable")

const defaultPrefix = "aldir"

// Config declares the user schema for a Redis directory.
type Config struct {
	// Prefix namespaces every key. Defaults to "aldir".
	Prefix string
	// Fields lists the schema columns, e.g. "email", "password", "name".
	// The managed token fields are always part of the schema.
	Fields []string
	// IdentityField and PasswordField name the login and credential columns.
	// Default "email" and "password".
	IdentityField string
	PasswordField string
}

// Redis implements aclauth.UserDirectory on top of a Redis client.
type Redis struct {
	redis         redis.UniversalClient
	prefix        string
	fields        map[string]bool
	identityField string
	passwordField string
}

// NewRedis validates the schema and returns a ready directory.
func NewRedis(client redis.UniversalClient, cfg Config) (*Redis, error) {
	if client == nil {
		return nil, errors.New("a redis client is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = defaultPrefix
	}
	if cfg.IdentityField == "" {
		cfg.IdentityField = "email"
	}
	if cfg.PasswordField == "" {
		cfg.PasswordField = "password"
	}

	fields := map[string]bool{
		cfg.IdentityField:          true,
		cfg.PasswordField:          true,
		aclauth.FieldRememberToken: true,
		aclauth.FieldResetCode:     true,
		aclauth.FieldResetTime:     true,
	}
	for _, f := range cfg.Fields {
		if f == "" {
			return nil, errors.New("schema contains an empty field name")
		}
		fields[f] = true
	}

	return &Redis{
		redis:         client,
		prefix:        cfg.Prefix,
		fields:        fields,
		identityField: cfg.IdentityField,
		passwordField: cfg.PasswordField,
	}, nil
}

func (d *Redis) seqKey() string            { return d.prefix + ":seq" }
func (d *Redis) userKey(id string) string  { return d.prefix + ":user:" + id }
func (d *Redis) rolesKey(id string) string { return d.prefix + ":roles:" + id }
func (d *Redis) indexKey(field, value string) string {
	return d.prefix + ":idx:" + field + ":" + value
}

// FindOneBy returns the user with the lowest id whose field equals value, or
// (nil, nil) when none matches.
func (d *Redis) FindOneBy(ctx context.Context, field, value string) (*aclauth.User, error) {
	ids, err := d.redis.SMembers(ctx, d.indexKey(field, value)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})

	record, err := d.redis.HGetAll(ctx, d.userKey(ids[0])).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(record) == 0 {
		return nil, nil
	}
	return d.buildUser(ids[0], record), nil
}

// CountBy reports how many users carry value in field.
func (d *Redis) CountBy(ctx context.Context, field, value string) (int, error) {
	n, err := d.redis.SCard(ctx, d.indexKey(field, value)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(n), nil
}

// Insert stores a new user and returns its id. Fields outside the schema are
// rejected; the caller is expected to have filtered them already.
func (d *Redis) Insert(ctx context.Context, fields map[string]string) (string, error) {
	for field := range fields {
		if !d.fields[field] {
			return "", fmt.Errorf("unknown field %q", field)
		}
	}

	seq, err := d.redis.Incr(ctx, d.seqKey()).Result()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	id := strconv.FormatInt(seq, 10)

	pipe := d.redis.TxPipeline()
	values := make([]interface{}, 0, len(fields)*2)
	for field, value := range fields {
		values = append(values, field, value)
		pipe.SAdd(ctx, d.indexKey(field, value), id)
	}
	pipe.HSet(ctx, d.userKey(id), values...)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return id, nil
}

// Update writes the given fields on an existing user. An empty value clears
// the field. Index sets are kept in step with the value changes.
func (d *Redis) Update(ctx context.Context, id string, fields map[string]string) error {
	exists, err := d.redis.Exists(ctx, d.userKey(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if exists == 0 {
		return fmt.Errorf("no user %q", id)
	}

	names := make([]string, 0, len(fields))
	for field := range fields {
		if !d.fields[field] {
			return fmt.Errorf("unknown field %q", field)
		}
		names = append(names, field)
	}
	if len(names) == 0 {
		return nil
	}

	current, err := d.redis.HMGet(ctx, d.userKey(id), names...).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	pipe := d.redis.TxPipeline()
	for i, field := range names {
		if old, ok := current[i].(string); ok && old != "" {
			pipe.SRem(ctx, d.indexKey(field, old), id)
		}
		value := fields[field]
		if value == "" {
			pipe.HDel(ctx, d.userKey(id), field)
			continue
		}
		pipe.HSet(ctx, d.userKey(id), field, value)
		pipe.SAdd(ctx, d.indexKey(field, value), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// FieldIsKnown reports schema membership.
func (d *Redis) FieldIsKnown(_ context.Context, name string) (bool, error) {
	return d.fields[name], nil
}

// HasRole reports role membership.
func (d *Redis) HasRole(ctx context.Context, userID, role string) (bool, error) {
	ok, err := d.redis.SIsMember(ctx, d.rolesKey(userID), role).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ok, nil
}

// GrantRole adds the user to a role.
func (d *Redis) GrantRole(ctx context.Context, userID, role string) error {
	if err := d.redis.SAdd(ctx, d.rolesKey(userID), role).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RevokeRole removes the user from a role.
func (d *Redis) RevokeRole(ctx context.Context, userID, role string) error {
	if err := d.redis.SRem(ctx, d.rolesKey(userID), role).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (d *Redis) buildUser(id string, record map[string]string) *aclauth.User {
	user := &aclauth.User{
		ID:            id,
		Identity:      record[d.identityField],
		PasswordHash:  record[d.passwordField],
		RememberToken: record[aclauth.FieldRememberToken],
		ResetCode:     record[aclauth.FieldResetCode],
		Attributes:    make(map[string]string),
	}
	if raw := record[aclauth.FieldResetTime]; raw != "" {
		if sec, err := strconv.ParseInt(raw, 10, 64); err == nil {
			user.ResetSentAt = time.Unix(sec, 0)
		}
	}
	for field, value := range record {
		switch field {
		case d.passwordField, aclauth.FieldRememberToken, aclauth.FieldResetCode, aclauth.FieldResetTime:
			continue
		}
		user.Attributes[field] = value
	}
	return user
}
