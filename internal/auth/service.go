package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/nutridesk/internal/config"
	"github.com/fdg312/nutridesk/internal/userctx"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
	ErrDevDisabled  = errors.New("dev auth disabled")
)

// Service issues and verifies access tokens.
type Service struct {
	config *config.Config
	now    func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, now: time.Now}
}

// SignInDev issues a token for any user id and role. Only available in
// AUTH_MODE=dev.
func (s *Service) SignInDev(ctx context.Context, req DevAuthRequest) (*DevAuthResponse, error) {
	_ = ctx

	if s.config.AuthMode != config.AuthModeDev {
		return nil, ErrDevDisabled
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = "dev-user"
	}
	role := strings.ToLower(strings.TrimSpace(req.Role))
	if role == "" {
		role = userctx.RoleNutritionist
	}
	if !userctx.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	ttl := time.Duration(s.config.JWTTTLMinutes) * time.Minute
	accessToken, err := s.IssueToken(userID, role, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dev JWT: %w", err)
	}

	return &DevAuthResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(ttl.Seconds()),
		UserID:      userID,
		Role:        role,
	}, nil
}

// IssueToken signs an HS256 token carrying the user id and role.
func (s *Service) IssueToken(userID, role string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"iss":  s.config.JWTIssuer,
		"exp":  now.Add(ttl).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// VerifyJWT checks signature, expiry and issuer. Tokens without a role
// claim are treated as plain users.
func (s *Service) VerifyJWT(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, jwt.WithIssuer(s.config.JWTIssuer), jwt.WithTimeFunc(s.now))

	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}
	role, _ := claims["role"].(string)
	if role == "" {
		role = userctx.RoleUser
	}
	if !userctx.ValidRole(role) {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: sub, Role: role}, nil
}
