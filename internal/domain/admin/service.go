package admin

import (
	"context"
	"time"

	"github.com/cloudban/cloudban-api/internal/pkg/jwt"
	"github.com/cloudban/cloudban-api/internal/pkg/logger"
	"github.com/cloudban/cloudban-api/internal/pkg/password"
)

// Credentials is the single configured admin identity.
// Password may be plaintext or a bcrypt hash.
type Credentials struct {
	Username string
	Password string
}

// Service handles admin business logic
type Service struct {
	repo   Repository
	jwtSvc *jwt.Service
	creds  Credentials
}

// NewService creates admin service
func NewService(repo Repository, jwtSvc *jwt.Service, creds Credentials) *Service {
	return &Service{repo: repo, jwtSvc: jwtSvc, creds: creds}
}

// Login checks the submitted pair against the configured identity and issues an access token
func (s *Service) Login(ctx context.Context, username, pass string) (*TokenResponse, error) {
	userOK := username == s.creds.Username
	passOK := password.Matches(pass, s.creds.Password)
	if !userOK || !passOK {
		logger.LogWarn(ctx, "Admin login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.jwtSvc.GenerateAccessToken(username)
	if err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Admin logged in", "username", username)
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// TokenTTL is how long issued tokens stay valid
func (s *Service) TokenTTL() time.Duration {
	return s.jwtSvc.GetAccessTTL()
}

// ListActions returns audit entries newest first
func (s *Service) ListActions(ctx context.Context, filter ActionFilter) ([]ActionResponse, int, error) {
	logs, total, err := s.repo.ListActions(ctx, filter.Normalized())
	if err != nil {
		return nil, 0, err
	}

	items := make([]ActionResponse, len(logs))
	for i, l := range logs {
		items[i] = ActionFromEntity(l)
	}
	return items, total, nil
}
