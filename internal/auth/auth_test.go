package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fastprodman/luxwallet/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()

	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	return s
}

func TestVerify(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(config.AuthConfig{JWTSecret: testSecret})
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{
			name:  "subject_claim",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "acc-1", "exp": exp}),
			want:  "acc-1",
		},
		{
			name:  "numeric_user_id_claim",
			token: sign(t, jwt.SigningMethodHS512, []byte(testSecret), jwt.MapClaims{"userId": 42, "exp": exp}),
			want:  "42",
		},
		{
			name:  "string_user_id_claim",
			token: sign(t, jwt.SigningMethodHS384, []byte(testSecret), jwt.MapClaims{"userId": "acc-7", "exp": exp}),
			want:  "acc-7",
		},
		{
			name:    "wrong_secret",
			token:   sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "acc-1", "exp": exp}),
			wantErr: true,
		},
		{
			name:    "expired",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "acc-1", "exp": time.Now().Add(-time.Hour).Unix()}),
			wantErr: true,
		},
		{
			name:    "missing_exp",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "acc-1"}),
			wantErr: true,
		},
		{
			name:    "no_account",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"exp": exp}),
			wantErr: true,
		},
		{
			name:    "fractional_user_id",
			token:   sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"userId": 1.5, "exp": exp}),
			wantErr: true,
		},
		{
			name:    "alg_none",
			token:   sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "acc-1", "exp": exp}),
			wantErr: true,
		},
		{name: "empty", token: "", wantErr: true},
		{name: "garbage", token: "not.a.jwt", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := v.Verify(tt.token)
			if tt.wantErr {
				if !errors.Is(err, ErrUnauthenticated) {
					t.Fatalf("want ErrUnauthenticated, got %v (account %q)", err, got)
				}
				return
			}

			if err != nil {
				t.Fatalf("verify: %v", err)
			}
			if got != tt.want {
				t.Fatalf("account: want %q, got %q", tt.want, got)
			}
		})
	}
}

func TestVerify_Issuer(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "luxury-clicker"})
	exp := time.Now().Add(time.Hour).Unix()

	_, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "acc-1", "exp": exp, "iss": "someone-else"}))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated for foreign issuer, got %v", err)
	}

	got, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{"sub": "acc-1", "exp": exp, "iss": "luxury-clicker"}))
	if err != nil || got != "acc-1" {
		t.Fatalf("want acc-1, got %q (%v)", got, err)
	}
}

func TestIssueTokenRoundTrip(t *testing.T) {
	t.Parallel()

	v := NewJWTVerifier(config.AuthConfig{JWTSecret: testSecret, JWTIssuer: "luxury-clicker"})

	tok, err := v.IssueToken("acc-9", time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	got, err := v.Verify(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got != "acc-9" {
		t.Fatalf("want acc-9, got %q", got)
	}
}

func TestAccountIDContext(t *testing.T) {
	t.Parallel()

	_, ok := AccountIDFrom(context.Background())
	if ok {
		t.Fatalf("expected no account in empty context")
	}

	id, ok := AccountIDFrom(WithAccountID(context.Background(), "acc-3"))
	if !ok || id != "acc-3" {
		t.Fatalf("want acc-3, got %q (%v)", id, ok)
	}
}
