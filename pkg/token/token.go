package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is what the API needs back from a verified bearer token.
type Claims struct {
	UserID    uint
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs a new HS256 token for userID with a fresh jti.
func (m *Manager) Issue(userID uint) (string, *Claims, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	registered := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, registered).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, &Claims{
		UserID:    userID,
		TokenID:   registered.ID,
		IssuedAt:  registered.IssuedAt.Time,
		ExpiresAt: registered.ExpiresAt.Time,
	}, nil
}

// Parse verifies the signature and expiry of tokenString.
func (m *Manager) Parse(tokenString string) (*Claims, error) {
	registered := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, registered, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(registered.Subject, 10, 64)
	if err != nil || userID == 0 || registered.ID == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		UserID:  uint(userID),
		TokenID: registered.ID,
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}
	return claims, nil
}

// TTL is the lifetime given to newly issued tokens.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}
