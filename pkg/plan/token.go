package plan

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tripkas/tripkas/internal/utils"
)

// AccessClaims grant read access to one password protected plan.
type AccessClaims struct {
	PlanId int `json:"plan_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates the short-lived tokens handed out by the unlock endpoint.
type TokenManager struct {
	secretKey     []byte
	tokenDuration time.Duration
	clock         utils.Clock
}

func NewTokenManager(secretKey string, tokenDuration time.Duration, clock utils.Clock) *TokenManager {
	return &TokenManager{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		clock:         clock,
	}
}

func (m *TokenManager) Generate(plan Plan) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.tokenDuration)
	claims := &AccessClaims{
		PlanId: plan.Id,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   plan.ShareSlug,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(m.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Validate checks the signature and expiry of tokenString and that it was issued for plan.
func (m *TokenManager) Validate(tokenString string, plan Plan) error {
	if tokenString == "" {
		return ErrPasswordRequired
	}
	token, err := jwt.ParseWithClaims(
		tokenString,
		&AccessClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return m.secretKey, nil
		},
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithSubject(plan.ShareSlug),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.PlanId != plan.Id {
		return ErrInvalidToken
	}
	return nil
}
