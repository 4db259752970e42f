package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"
	"time"
)

func hs256Manager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		TTL:           ttl,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("0123456789abcdef0123456789abcdef"),
		Issuer:        "aclauth-test",
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueParseRoundtripHS256(t *testing.T) {
	m := hs256Manager(t, time.Minute)

	token, err := m.Issue("42", "a@b.c", "sess-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UID != "42" || claims.Identity != "a@b.c" || claims.SID != "sess-1" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Issuer != "aclauth-test" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestIssueParseRoundtripEd25519(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	m, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodEd25519,
		PrivateKey:    priv,
		PublicKey:     pub,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := m.Issue("7", "x@y.z", "sess-2")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UID != "7" {
		t.Fatalf("uid = %q", claims.UID)
	}
}

func TestParseRejectsExpired(t *testing.T) {
	m := hs256Manager(t, time.Nanosecond)

	token, err := m.Issue("42", "a@b.c", "sess-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := m.Parse(token); err == nil {
		t.Fatal("expired assertion parsed")
	}
}

func TestParseRejectsTamperedSignature(t *testing.T) {
	m := hs256Manager(t, time.Minute)

	token, err := m.Issue("42", "a@b.c", "sess-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token parts = %d", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := m.Parse(tampered); err == nil {
		t.Fatal("tampered assertion parsed")
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	issuer := hs256Manager(t, time.Minute)
	verifier, err := NewManager(Config{
		TTL:           time.Minute,
		SigningMethod: MethodHS256,
		PrivateKey:    []byte("another-secret-another-secret-ab"),
		Issuer:        "aclauth-test",
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	token, err := issuer.Issue("42", "a@b.c", "sess-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Parse(token); err == nil {
		t.Fatal("assertion verified under wrong key")
	}
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero ttl", Config{SigningMethod: MethodHS256, PrivateKey: []byte("k")}},
		{"hs256 without key", Config{TTL: time.Minute, SigningMethod: MethodHS256}},
		{"unknown method", Config{TTL: time.Minute, SigningMethod: "rs512", PrivateKey: []byte("k")}},
		{"ed25519 malformed keys", Config{TTL: time.Minute, SigningMethod: MethodEd25519, PrivateKey: []byte("short"), PublicKey: []byte("short")}},
		{"excessive leeway", Config{TTL: time.Minute, SigningMethod: MethodHS256, PrivateKey: []byte("k"), Leeway: time.Hour}},
	}
	for _, tc := range cases {
		if _, err := NewManager(tc.cfg); err == nil {
			t.Errorf("%s: config accepted", tc.name)
		}
	}
}
