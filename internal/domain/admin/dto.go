package admin

import "time"

// LoginRequest is the form body of POST /login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse is returned on successful login
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CheckTokenResponse names the admin a token belongs to
type CheckTokenResponse struct {
	User string `json:"user"`
}

const (
	DefaultActionLimit = 50
	MaxActionLimit     = 500
)

// ActionFilter pages the audit log
type ActionFilter struct {
	Action string
	Offset int
	Limit  int
}

// Normalized clamps limit and offset into range
func (f ActionFilter) Normalized() ActionFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultActionLimit
	}
	if f.Limit > MaxActionLimit {
		f.Limit = MaxActionLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ActionResponse represents an audit entry in API
type ActionResponse struct {
	Admin     string    `json:"admin"`
	Action    string    `json:"action"`
	TargetID  int64     `json:"target_id"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

func ActionFromEntity(a *ActionLog) ActionResponse {
	return ActionResponse{
		Admin:     a.User,
		Action:    a.Action,
		TargetID:  a.TargetID,
		Detail:    a.Detail,
		Timestamp: a.Timestamp,
	}
}
