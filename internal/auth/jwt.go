package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service issues and verifies bearer tokens for callers of the API. The
// caller proves possession of the shared service credential, whose bcrypt
// hash is the only form the server holds.
type Service struct {
	secret         []byte
	credentialHash string
	ttl            time.Duration
}

type Claims struct {
	Client string `json:"client"`
	jwt.RegisteredClaims
}

type Principal struct {
	Client string
}

func NewService(secret, credentialHash string, ttl time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), credentialHash: credentialHash, ttl: ttl}, nil
}

// VerifyCredential compares a presented service credential against the
// configured bcrypt hash.
func (s *Service) VerifyCredential(credential string) error {
	if s.credentialHash == "" {
		return errors.New("no service credential configured")
	}
	return bcrypt.CompareHashAndPassword([]byte(s.credentialHash), []byte(credential))
}

func (s *Service) GenerateToken(client string) (string, error) {
	now := time.Now()
	claims := Claims{
		Client: client,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) ParseToken(token string) (Principal, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return Principal{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Principal{}, errors.New("invalid token")
	}
	return Principal{Client: claims.Client}, nil
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, principal)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(ctxKey{}).(Principal)
	return principal, ok
}
