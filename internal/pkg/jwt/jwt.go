package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"driveconnect/internal/domain"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	UID   int64  `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

func (s *Service) GenerateToken(ident domain.Identity) (string, error) {
	claims := Claims{
		UID:   ident.UID,
		Email: ident.Email,
		Name:  ident.Name,
		Role:  string(ident.Role),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken decodes a bearer token into the caller identity. An expired
// token is reported separately from a malformed or forged one so the API can
// tell the client to re-login.
func (s *Service) ValidateToken(tokenStr string) (*domain.Identity, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return &domain.Identity{
		UID:   claims.UID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  domain.UserRole(claims.Role),
	}, nil
}
