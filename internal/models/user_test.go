package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestUserJSONShape(t *testing.T) {
	u := User{
		ID:           uuid.New(),
		Username:     "maker",
		Email:        "maker@diyhub.local",
		PasswordHash: "bcrypt-hash",
	}

	raw, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}

	// Timestamps are camelCase like every other API field.
	for _, key := range []string{"id", "username", "email", "createdAt", "updatedAt"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing field %q in %s", key, raw)
		}
	}
	if _, ok := fields["passwordHash"]; ok {
		t.Error("password hash must never serialize")
	}
	if _, ok := fields["created_at"]; ok {
		t.Error("snake_case timestamp leaked")
	}
}

func TestUserSummary(t *testing.T) {
	u := User{ID: uuid.New(), Username: "maker", Email: "maker@diyhub.local"}
	s := u.Summary()
	if s.ID != u.ID || s.Username != u.Username || s.Email != u.Email {
		t.Errorf("summary mismatch: %+v", s)
	}
}
