// Package auth verifies the bearer tokens that identify the calling account.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fastprodman/luxwallet/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// legacyAccountClaim is read when a token has no "sub".
const legacyAccountClaim = "userId"

type JWTVerifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

func NewJWTVerifier(cfg config.AuthConfig) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{
			jwt.SigningMethodHS256.Alg(),
			jwt.SigningMethodHS384.Alg(),
			jwt.SigningMethodHS512.Alg(),
		}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5 * time.Second),
	}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	return &JWTVerifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		parser: jwt.NewParser(opts...),
	}
}

// Verify checks the token signature and expiry and returns the account id
// it was issued for.
func (v *JWTVerifier) Verify(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrUnauthenticated)
	}

	claims := jwt.MapClaims{}

	_, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	accountID, err := accountFromClaims(claims)
	if err != nil {
		return "", err
	}

	return accountID, nil
}

// IssueToken signs an HS256 token for accountID. Used by tooling and tests;
// production tokens come from the login service sharing the secret.
func (v *JWTVerifier) IssueToken(accountID string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.issuer != "" {
		claims.Issuer = v.issuer
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

func accountFromClaims(claims jwt.MapClaims) (string, error) {
	sub, err := claims.GetSubject()
	if err == nil && sub != "" {
		return sub, nil
	}

	switch id := claims[legacyAccountClaim].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		if id > 0 && id == float64(int64(id)) {
			return strconv.FormatInt(int64(id), 10), nil
		}
	}

	return "", fmt.Errorf("%w: token has no account id", ErrUnauthenticated)
}

type ctxKey struct{}

func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, accountID)
}

// AccountIDFrom returns the authenticated account id stored by WithAccountID.
func AccountIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}
