package aclauth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/acldev/aclauth/session"
)

// mockDirectory is an in-memory UserDirectory with a fixed schema of
// email / password / name plus the managed token fields.
type mockDirectory struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*User
	roles      map[string]map[string]bool
	failInsert bool
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		users: make(map[string]*User),
		roles: make(map[string]map[string]bool),
	}
}

func (d *mockDirectory) fieldValue(u *User, field string) (string, bool) {
	switch field {
	case "email":
		return u.Identity, true
	case FieldRememberToken:
		return u.RememberToken, true
	case FieldResetCode:
		return u.ResetCode, true
	default:
		v, ok := u.Attributes[field]
		return v, ok
	}
}

func cloneUser(u *User) *User {
	out := *u
	out.Attributes = make(map[string]string, len(u.Attributes))
	for k, v := range u.Attributes {
		out.Attributes[k] = v
	}
	return &out
}

func (d *mockDirectory) FindOneBy(_ context.Context, field, value string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if v, ok := d.fieldValue(u, field); ok && v == value {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (d *mockDirectory) CountBy(_ context.Context, field, value string) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	count := 0
	for _, u := range d.users {
		if v, ok := d.fieldValue(u, field); ok && v == value {
			count++
		}
	}
	return count, nil
}

func (d *mockDirectory) Insert(_ context.Context, fields map[string]string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failInsert {
		return "", errors.New("insert refused")
	}

	d.seq++
	id := strconv.Itoa(d.seq)
	u := &User{
		ID:           id,
		Identity:     fields["email"],
		PasswordHash: fields["password"],
		Attributes:   make(map[string]string),
	}
	for k, v := range fields {
		if k == "password" {
			continue
		}
		u.Attributes[k] = v
	}
	d.users[id] = u
	return id, nil
}

func (d *mockDirectory) Update(_ context.Context, id string, fields map[string]string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return errors.New("no such user")
	}
	for k, v := range fields {
		switch k {
		case "password":
			u.PasswordHash = v
		case FieldRememberToken:
			u.RememberToken = v
		case FieldResetCode:
			u.ResetCode = v
		case FieldResetTime:
			if v == "" {
				u.ResetSentAt = time.Time{}
			} else {
				sec, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return err
				}
				u.ResetSentAt = time.Unix(sec, 0)
			}
		default:
			if v == "" {
				delete(u.Attributes, k)
			} else {
				u.Attributes[k] = v
			}
		}
	}
	return nil
}

func (d *mockDirectory) FieldIsKnown(_ context.Context, name string) (bool, error) {
	switch name {
	case "email", "password", "name", FieldRememberToken, FieldResetCode, FieldResetTime:
		return true, nil
	}
	return false, nil
}

func (d *mockDirectory) HasRole(_ context.Context, userID, role string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.roles[userID][role], nil
}

func (d *mockDirectory) grantRole(userID, role string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.roles[userID] == nil {
		d.roles[userID] = make(map[string]bool)
	}
	d.roles[userID][role] = true
}

// cookieJar is an in-memory CookieTransport shared across request bindings,
// standing in for a browser.
type cookieJar struct {
	mu     sync.Mutex
	values map[string]string
}

func newCookieJar() *cookieJar {
	return &cookieJar{values: make(map[string]string)}
}

func (j *cookieJar) Set(_ context.Context, name, value string, _ time.Duration) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.values[name] = value
	return nil
}

func (j *cookieJar) Get(_ context.Context, name string) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.values[name], nil
}

func (j *cookieJar) Delete(_ context.Context, name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.values, name)
	return nil
}

func (j *cookieJar) value(name string) string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.values[name]
}

// recordingSender captures the last notification instead of delivering it.
type recordingSender struct {
	mu      sync.Mutex
	to      string
	subject string
	body    string
	fail    bool
}

func (r *recordingSender) Send(_ context.Context, to, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("smtp down")
	}
	r.to, r.subject, r.body = to, subject, body
	return nil
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.Metrics.Enabled = true
	// Cheap hashing keeps the suite fast; production defaults are far above
	// the minimums.
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1
	cfg.Password.Parallelism = 1
	cfg.Access.LoginTarget = "/login"
	cfg.Access.DeniedTarget = "/denied"
	return cfg
}

type testEnv struct {
	dir    *mockDirectory
	sender *recordingSender
	jar    *cookieJar
	base   *Service
}

func newTestEnv(t *testing.T, edit func(*Config), build func(*Builder)) *testEnv {
	t.Helper()

	cfg := testConfig()
	if edit != nil {
		edit(&cfg)
	}

	env := &testEnv{
		dir:    newMockDirectory(),
		sender: &recordingSender{},
		jar:    newCookieJar(),
	}

	b := New().WithConfig(cfg).WithDirectory(env.dir).WithMailer(env.sender)
	if build != nil {
		build(b)
	}

	svc, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(svc.Close)
	env.base = svc
	return env
}

// bind simulates a new request from the same browser: fresh session, shared
// cookie jar.
func (e *testEnv) bind(ctx context.Context, opts ...RequestOption) *Service {
	return e.base.ForRequest(ctx, session.NewMemoryStore(), e.jar, opts...)
}

func seedUser(t *testing.T, env *testEnv, email, plaintext string, extra map[string]string) string {
	t.Helper()

	hash, err := env.base.hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	fields := map[string]string{"email": email, "password": hash}
	for k, v := range extra {
		fields[k] = v
	}
	id, err := env.dir.Insert(context.Background(), fields)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return id
}

func newTestRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}
