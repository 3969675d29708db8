package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/s21platform/group-chat-service/internal/model"
)

type Generator struct {
	accessSecret  []byte
	connectSecret []byte
	connectTTL    time.Duration
	now           func() time.Time
}

func New(accessSecret, connectSecret string, connectTTL time.Duration) *Generator {
	return &Generator{
		accessSecret:  []byte(accessSecret),
		connectSecret: []byte(connectSecret),
		connectTTL:    connectTTL,
		now:           time.Now,
	}
}

// GenerateConnectToken issues a short-lived token a client presents when
// opening a live connection.
func (g *Generator) GenerateConnectToken(identity model.Identity) (string, int64, error) {
	now := g.now()
	expiresAt := now.Add(g.connectTTL)

	claims := model.ConnectClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Premium: identity.Premium,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(g.connectSecret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign connect JWT token: %w", err)
	}

	return tokenString, expiresAt.Unix(), nil
}

// ValidateAccessToken checks a bearer credential issued by the identity
// provider.
func (g *Generator) ValidateAccessToken(tokenString string) (model.Identity, time.Time, error) {
	claims := &model.AccessClaims{}
	if err := g.parse(tokenString, claims, g.accessSecret); err != nil {
		return model.Identity{}, time.Time{}, fmt.Errorf("failed to parse access JWT token: %w", err)
	}
	return identityOf(claims.Subject, claims.Premium, claims.ExpiresAt)
}

func (g *Generator) ValidateConnectToken(tokenString string) (model.Identity, time.Time, error) {
	claims := &model.ConnectClaims{}
	if err := g.parse(tokenString, claims, g.connectSecret); err != nil {
		return model.Identity{}, time.Time{}, fmt.Errorf("failed to parse connect JWT token: %w", err)
	}
	return identityOf(claims.Subject, claims.Premium, claims.ExpiresAt)
}

func (g *Generator) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil {
		return err
	}
	if !token.Valid {
		return fmt.Errorf("invalid JWT token")
	}
	return nil
}

func identityOf(subject string, premium bool, exp *jwt.NumericDate) (model.Identity, time.Time, error) {
	if subject == "" {
		return model.Identity{}, time.Time{}, fmt.Errorf("token has no subject")
	}
	var expiresAt time.Time
	if exp != nil {
		expiresAt = exp.Time
	}
	return model.Identity{UserID: subject, Premium: premium}, expiresAt, nil
}
