package handlers

import (
	"errors"
	"net/http"
	"strings"

	"diyhub/internal/auth"
	"diyhub/internal/store"
)

// Auth groups the registration and login HTTP handlers.
type Auth struct {
	users  *store.UserStore
	tokens *auth.Tokens
}

// NewAuth creates a new Auth handler group.
func NewAuth(users *store.UserStore, tokens *auth.Tokens) *Auth {
	return &Auth{users: users, tokens: tokens}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new account. No session is issued; the client logs
// in afterwards.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, r, errValidation("All fields are required"))
		return
	}

	existing, err := a.users.FindByEmail(req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing != nil {
		writeError(w, r, errConflict("Email already exists"))
		return
	}

	if _, err := a.users.Create(req.Username, req.Email, req.Password); err != nil {
		// A concurrent registration can slip past the lookup above; the
		// unique index reports it here.
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, r, errConflict("Email already exists"))
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered successfully",
	})
}

// Login verifies credentials and issues a signed 24-hour session token.
// Unknown email and wrong password produce the identical failure.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeError(w, r, errValidation("Email and password are required"))
		return
	}

	user, err := a.users.FindByEmail(req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		writeError(w, r, errCredentials())
		return
	}

	token, err := a.tokens.Issue(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user.Summary(),
	})
}
