package auth

import (
	"errors"
	"fmt"
	"time"

	"delliapp/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// TrackingClaims let an anonymous visitor follow one order without an account.
type TrackingClaims struct {
	OrderID string `json:"order_id"`
	TeamID  string `json:"team_id"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a session token for a profile.
func (t *Tokens) Issue(p *models.Profile) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		UserID: p.ID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates a session token.
func (t *Tokens) Parse(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if err := t.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// IssueTracking creates a long-lived token bound to one order.
func (t *Tokens) IssueTracking(orderID, teamID string) (string, error) {
	now := t.now()
	claims := TrackingClaims{
		OrderID: orderID,
		TeamID:  teamID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "order:" + orderID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(30 * 24 * time.Hour)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) ParseTracking(tokenStr string) (*TrackingClaims, error) {
	claims := &TrackingClaims{}
	if err := t.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.OrderID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (t *Tokens) parse(tokenStr string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
