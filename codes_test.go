package aclauth

import (
	"context"
	"testing"
)

func TestErrorsTranslateWithFallback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, func(cfg *Config) {
		cfg.Translations = map[string]string{
			CodeLoginFailed: "wrong email or password",
		}
	}, nil)

	svc := env.bind(ctx)
	_ = svc.Login(ctx, "nobody@example.com", "whatever")
	_, _ = svc.RequestPasswordReset(ctx, "nobody@example.com")

	got := svc.Errors()
	want := []string{
		"wrong email or password",
		"##" + CodeResetNotFound + "##",
	}
	if len(got) != len(want) {
		t.Fatalf("Errors() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Errors()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestErrorCodesPreserveOrder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)

	svc := env.bind(ctx)
	_, _ = svc.Register(ctx, map[string]string{"email": "x@y.z"})
	_ = svc.Login(ctx, "x@y.z", "whatever")

	codes := svc.ErrorCodes()
	if len(codes) != 2 || codes[0] != CodeRegisterFailed || codes[1] != CodeLoginFailed {
		t.Fatalf("codes = %v", codes)
	}
}

func TestRequestCopiesDoNotShareCodes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil, nil)

	first := env.bind(ctx)
	_ = first.Login(ctx, "nobody@example.com", "whatever")

	second := env.bind(ctx)
	if len(second.ErrorCodes()) != 0 {
		t.Fatal("fresh request copy inherited error codes")
	}
	if len(first.ErrorCodes()) != 1 {
		t.Fatal("original request copy lost its codes")
	}
}
