package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cabin/internal/apperrors"
	"cabin/internal/models"

	"github.com/dgrijalva/jwt-go"
)

// PrincipalHeader carries the base64 JSON identity set by the front door.
const PrincipalHeader = "x-ms-client-principal"

// ErrTokensDisabled is returned when no token secret is configured.
var ErrTokensDisabled = errors.New("token issuing is disabled")

// AuthConfig configures identity resolution.
type AuthConfig struct {
	// DemoFallback resolves requests without credentials to models.DemoUser.
	DemoFallback bool
	// TokenSecret enables HS256 bearer tokens when non-empty.
	TokenSecret   string
	TokenDuration time.Duration
}

// Credentials are the raw identity-bearing request headers.
type Credentials struct {
	Principal     string // x-ms-client-principal
	Authorization string // Authorization
}

// AuthService resolves the caller identity from request credentials.
// The principal header is decoded, not verified: the front door that sets it
// is trusted to have authenticated the caller.
type AuthService struct {
	demoFallback bool
	jwtSecret    []byte
	tokenDurat   time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthConfig) *AuthService {
	durat := cfg.TokenDuration
	if durat <= 0 {
		durat = 24 * time.Hour
	}
	return &AuthService{
		demoFallback: cfg.DemoFallback,
		jwtSecret:    []byte(cfg.TokenSecret),
		tokenDurat:   durat,
	}
}

// DemoFallbackEnabled reports whether anonymous requests become the demo user.
func (s *AuthService) DemoFallbackEnabled() bool { return s.demoFallback }

// TokensEnabled reports whether bearer tokens are accepted and issued.
func (s *AuthService) TokensEnabled() bool { return len(s.jwtSecret) > 0 }

// ResolveIdentity returns the caller identity, or nil if none resolves.
// Order: principal header, bearer token, demo fallback.
func (s *AuthService) ResolveIdentity(creds Credentials) *models.User {
	if creds.Principal != "" {
		user, err := DecodePrincipal(creds.Principal)
		if err == nil {
			return user
		}
		log.Printf("Error parsing client principal: %v", err)
	}

	if token, ok := bearerToken(creds.Authorization); ok && s.TokensEnabled() {
		user, err := s.ValidateToken(token)
		if err == nil {
			return user
		}
		log.Printf("Bearer token rejected: %v", err)
	}

	if s.demoFallback {
		return models.DemoUser()
	}
	return nil
}

// RequireAuth is ResolveIdentity for callers that reject anonymous requests.
func (s *AuthService) RequireAuth(creds Credentials) (*models.User, error) {
	user := s.ResolveIdentity(creds)
	if user == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	return user, nil
}

// DecodePrincipal decodes a base64 JSON client principal.
func DecodePrincipal(encoded string) (*models.User, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 principal: %w", err)
		}
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("invalid principal JSON: %w", err)
	}
	if user.UserID == "" {
		return nil, fmt.Errorf("principal has no userId")
	}
	return &user, nil
}

// EncodePrincipal is the inverse of DecodePrincipal.
func EncodePrincipal(user *models.User) (string, error) {
	raw, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("failed to marshal principal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// IssueToken signs a bearer token for user.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	if !s.TokensEnabled() {
		return "", ErrTokensDisabled
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":      user.UserID,
		"user_details": user.UserDetails,
		"roles":        user.UserRoles,
		"idp":          user.IdentityProvider,
		"exp":          time.Now().Add(s.tokenDurat).Unix(),
		"iat":          time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// IssueDemoToken signs a token for the demo identity. It is only available
// while the demo fallback is enabled.
func (s *AuthService) IssueDemoToken() (string, error) {
	if !s.demoFallback {
		return "", apperrors.ErrUnauthenticated
	}
	return s.IssueToken(models.DemoUser())
}

// ValidateToken parses and validates a bearer token, returning its identity.
func (s *AuthService) ValidateToken(tokenString string) (*models.User, error) {
	if !s.TokensEnabled() {
		return nil, ErrTokensDisabled
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("invalid token: missing user_id")
	}
	user := &models.User{
		UserID:    userID,
		UserRoles: []string{},
		Claims:    []any{},
	}
	user.UserDetails, _ = claims["user_details"].(string)
	user.IdentityProvider, _ = claims["idp"].(string)
	if roles, ok := claims["roles"].([]interface{}); ok {
		for _, r := range roles {
			if role, ok := r.(string); ok {
				user.UserRoles = append(user.UserRoles, role)
			}
		}
	}
	return user, nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
