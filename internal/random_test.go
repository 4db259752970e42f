package internal

import (
	"strings"
	"testing"
)

func TestNewRememberTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		token, err := NewRememberToken()
		if err != nil {
			t.Fatalf("NewRememberToken failed: %v", err)
		}
		if token == "" {
			t.Fatal("expected non-empty token")
		}
		if seen[token] {
			t.Fatalf("duplicate remember token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestNewResetCodeCharset(t *testing.T) {
	code, err := NewResetCode(ResetCodeLength)
	if err != nil {
		t.Fatalf("NewResetCode failed: %v", err)
	}
	if len(code) != ResetCodeLength {
		t.Fatalf("expected %d chars, got %d", ResetCodeLength, len(code))
	}
	for i := 0; i < len(code); i++ {
		if !strings.ContainsRune(alphanumerics, rune(code[i])) {
			t.Fatalf("character %q outside alphanumeric set", code[i])
		}
	}
}

func TestNewResetCodeInvalidLength(t *testing.T) {
	if _, err := NewResetCode(0); err == nil {
		t.Fatal("expected error for zero length")
	}
	if _, err := NewLegacyResetCode(-1); err == nil {
		t.Fatal("expected error for negative length")
	}
}

func TestNewLegacyResetCodeByteRanges(t *testing.T) {
	code, err := NewLegacyResetCode(ResetCodeLength)
	if err != nil {
		t.Fatalf("NewLegacyResetCode failed: %v", err)
	}
	if len(code) != ResetCodeLength {
		t.Fatalf("expected %d chars, got %d", ResetCodeLength, len(code))
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		inDigits := c >= 48 && c <= 57
		inUpper := c >= 64 && c <= 90
		inLower := c >= 97 && c <= 122
		if !inDigits && !inUpper && !inLower {
			t.Fatalf("byte %d outside legacy ranges", c)
		}
	}
}

func TestNewSessionKeyUnique(t *testing.T) {
	a := NewSessionKey()
	b := NewSessionKey()
	if a == "" || a == b {
		t.Fatalf("expected distinct non-empty session keys, got %q and %q", a, b)
	}
}
