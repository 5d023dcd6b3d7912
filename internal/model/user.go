package model

import "time"

// Role is a closed set. Anything outside it is rejected at the boundary so a
// typo can never widen access.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthUser is the projection of a User that handlers see after the access
// gate has resolved a bearer token.
type AuthUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

type ForensicReport struct {
	ID         string         `json:"id"`
	Details    map[string]any `json:"details"`
	ReportedBy string         `json:"reported_by,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
