package store

import (
	"errors"
	"testing"
)

func TestUserCreateDuplicateEmail(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	first := testUser(t, db)

	// Second insert with the same email must surface the unique index as
	// ErrDuplicate, not an opaque SQL error. This is the path taken when
	// two registrations race past the handler's existence check.
	_, err := users.Create("racer", first.Email, "secret456")
	if err == nil {
		t.Fatal("expected an error on duplicate email")
	}
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("got %v, want ErrDuplicate", err)
	}
}

func TestUserCreateAndAuthenticate(t *testing.T) {
	db := testDB(t)
	users := NewUserStore(db)
	u := testUser(t, db)

	t.Run("password hashed, not stored", func(t *testing.T) {
		if u.PasswordHash == "secret123" {
			t.Error("password stored in plaintext")
		}
		if !users.CheckPassword(u, "secret123") {
			t.Error("correct password rejected")
		}
		if users.CheckPassword(u, "wrong") {
			t.Error("wrong password accepted")
		}
	})

	t.Run("find by email", func(t *testing.T) {
		got, err := users.FindByEmail(u.Email)
		if err != nil {
			t.Fatalf("find by email: %v", err)
		}
		if got == nil || got.ID != u.ID {
			t.Error("lookup by email did not return the created user")
		}
	})

	t.Run("unknown email is nil, nil", func(t *testing.T) {
		got, err := users.FindByEmail("nobody@diyhub.test")
		if err != nil {
			t.Fatalf("find by email: %v", err)
		}
		if got != nil {
			t.Errorf("got %v, want nil", got)
		}
	})
}
