package models

import "strings"

// Role is the access role carried by a user profile.
type Role string

const (
	RoleClient       Role = "cliente"
	RoleProfessional Role = "profissional"
	RoleAdmin        Role = "admin"
)

// User is the profile returned by /users/me and the login endpoint.
type User struct {
	ID      string `json:"id"`
	Name    string `json:"nome,omitempty"`
	Email   string `json:"email"`
	Role    Role   `json:"role"`
	Phone   string `json:"telefone,omitempty"`
	Address string `json:"morada,omitempty"`
}

// DisplayName falls back to the email when no name was registered.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

// Session is the authenticated state persisted between runs.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Valid reports whether the session carries both a token and a user.
func (s *Session) Valid() bool {
	return s != nil && s.Token != "" && s.User.ID != ""
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Name     string `json:"nome" validate:"required"`
	Phone    string `json:"telefone"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"morada"`
	Password string `json:"senha" validate:"required,min=6"`
}

// LoginResponse is what /auth/login returns. Some backend revisions embed the
// user, others require a follow-up /users/me call.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}
