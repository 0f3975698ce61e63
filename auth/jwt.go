package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims identify the caller. ID (jti) is what logout revokes.
type Claims struct {
	UserID uint `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

func (s *TokenService) SigningKey() []byte {
	return s.secret
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token for userID valid for the configured TTL.
func (s *TokenService) Issue(userID uint) (string, *Claims, error) {
	return s.issue(userID, s.ttl)
}

func (s *TokenService) issue(userID uint, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry. Failures are ErrTokenExpired for an
// authentic token past its expiry and ErrInvalidToken for everything else.
func (s *TokenService) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc)
	if err != nil {
		return nil, ClassifyError(err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, ErrInvalidToken
	}
	return s.secret, nil
}

// ClassifyError reduces a jwt parse error to ErrTokenExpired or
// ErrInvalidToken. Expiry only counts when it is the sole failure, so a
// forged token that also happens to be expired stays invalid.
func ClassifyError(err error) error {
	var vErr *jwt.ValidationError
	if errors.As(err, &vErr) && vErr.Errors == jwt.ValidationErrorExpired {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}
