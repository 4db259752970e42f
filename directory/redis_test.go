package directory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/acldev/aclauth"
)

func newTestDirectory(t *testing.T) *Redis {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	dir, err := NewRedis(client, Config{Fields: []string{"name"}})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	return dir
}

func TestInsertAndFindOneBy(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	id, err := dir.Insert(ctx, map[string]string{
		"email":    "ada@example.com",
		"password": "$argon2id$hash",
		"name":     "Ada",
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	user, err := dir.FindOneBy(ctx, "email", "ada@example.com")
	if err != nil {
		t.Fatalf("FindOneBy: %v", err)
	}
	if user == nil {
		t.Fatal("user not found")
	}
	if user.ID != id || user.Identity != "ada@example.com" {
		t.Fatalf("user = %+v", user)
	}
	if user.PasswordHash != "$argon2id$hash" {
		t.Fatalf("hash = %q", user.PasswordHash)
	}
	if user.Attributes["name"] != "Ada" {
		t.Fatalf("attributes = %v", user.Attributes)
	}
	if _, ok := user.Attributes["password"]; ok {
		t.Fatal("credential leaked into attributes")
	}
}

func TestFindOneByAbsenceIsNotAnError(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	user, err := dir.FindOneBy(ctx, "email", "nobody@example.com")
	if err != nil {
		t.Fatalf("FindOneBy: %v", err)
	}
	if user != nil {
		t.Fatalf("user = %+v, want nil", user)
	}
}

func TestCountByTracksDuplicates(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	for i := 0; i < 2; i++ {
		if _, err := dir.Insert(ctx, map[string]string{"email": "dup@example.com", "password": "h"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	n, err := dir.CountBy(ctx, "email", "dup@example.com")
	if err != nil {
		t.Fatalf("CountBy: %v", err)
	}
	if n != 2 {
		t.Fatalf("count = %d, want 2", n)
	}
}

func TestUpdateMovesIndexAndClearsFields(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	id, err := dir.Insert(ctx, map[string]string{"email": "old@example.com", "password": "h"})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	err = dir.Update(ctx, id, map[string]string{
		"email":                    "new@example.com",
		aclauth.FieldRememberToken: "tok-1",
		aclauth.FieldResetCode:     "CODE",
		aclauth.FieldResetTime:     "1700000000",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if u, _ := dir.FindOneBy(ctx, "email", "old@example.com"); u != nil {
		t.Fatal("old index entry survived")
	}
	user, err := dir.FindOneBy(ctx, "email", "new@example.com")
	if err != nil || user == nil {
		t.Fatalf("FindOneBy after move: %v, %v", user, err)
	}
	if user.RememberToken != "tok-1" || user.ResetCode != "CODE" {
		t.Fatalf("user = %+v", user)
	}
	if user.ResetSentAt != time.Unix(1700000000, 0) {
		t.Fatalf("reset time = %v", user.ResetSentAt)
	}

	// Empty values clear.
	err = dir.Update(ctx, id, map[string]string{
		aclauth.FieldResetCode: "",
		aclauth.FieldResetTime: "",
	})
	if err != nil {
		t.Fatalf("clearing Update: %v", err)
	}
	user, _ = dir.FindOneBy(ctx, "email", "new@example.com")
	if user.ResetCode != "" || !user.ResetSentAt.IsZero() {
		t.Fatalf("token fields not cleared: %+v", user)
	}
}

func TestUpdateUnknownUserOrField(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	if err := dir.Update(ctx, "999", map[string]string{"name": "X"}); err == nil {
		t.Fatal("update of missing user accepted")
	}

	id, _ := dir.Insert(ctx, map[string]string{"email": "a@b.c", "password": "h"})
	if err := dir.Update(ctx, id, map[string]string{"is_admin": "1"}); err == nil {
		t.Fatal("unknown field accepted")
	}
}

func TestFieldIsKnown(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	for _, field := range []string{"email", "password", "name", aclauth.FieldRememberToken} {
		if ok, _ := dir.FieldIsKnown(ctx, field); !ok {
			t.Errorf("%s unexpectedly unknown", field)
		}
	}
	if ok, _ := dir.FieldIsKnown(ctx, "is_admin"); ok {
		t.Error("undeclared field known")
	}
}

func TestRoles(t *testing.T) {
	ctx := context.Background()
	dir := newTestDirectory(t)

	id, _ := dir.Insert(ctx, map[string]string{"email": "a@b.c", "password": "h"})

	if ok, _ := dir.HasRole(ctx, id, "admin"); ok {
		t.Fatal("role held before grant")
	}
	if err := dir.GrantRole(ctx, id, "admin"); err != nil {
		t.Fatalf("GrantRole: %v", err)
	}
	if ok, _ := dir.HasRole(ctx, id, "admin"); !ok {
		t.Fatal("granted role not reported")
	}
	if err := dir.RevokeRole(ctx, id, "admin"); err != nil {
		t.Fatalf("RevokeRole: %v", err)
	}
	if ok, _ := dir.HasRole(ctx, id, "admin"); ok {
		t.Fatal("revoked role still reported")
	}
}
