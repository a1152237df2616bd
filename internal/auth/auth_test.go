package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"consult-broker/internal/model"
)

const secret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	for _, a := range []model.Actor{model.UserActor(12), model.WorkerActor(3)} {
		tok, err := MakeToken(a, secret, time.Minute)
		if err != nil {
			t.Fatalf("make: %v", err)
		}
		got, err := ActorFromToken(tok, secret)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if got != a {
			t.Errorf("expected %s, got %s", a, got)
		}
	}
}

func TestParseTokenRejects(t *testing.T) {
	good, _ := MakeToken(model.UserActor(1), secret, time.Minute)

	// MakeToken never issues an expired token, so build one by hand
	c := Claims{Role: "user", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}
	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name, raw, secret string
	}{
		{"wrong secret", good, "other"},
		{"expired", expired, secret},
		{"alg none", none, secret},
		{"garbage", "not.a.jwt", secret},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ActorFromToken(tt.raw, tt.secret); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTokenWithUnknownRole(t *testing.T) {
	c := Claims{Role: "admin", RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "4",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))

	if _, err := ActorFromToken(raw, secret); err != ErrBadToken {
		t.Fatalf("expected ErrBadToken, got %v", err)
	}
}

func TestPasswordHash(t *testing.T) {
	h, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(h, "correct horse") {
		t.Error("password should match")
	}
	if CheckPassword(h, "battery staple") {
		t.Error("wrong password matched")
	}
}

func TestRefreshTokenHash(t *testing.T) {
	raw, hash, err := GenerateRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 64 {
		t.Errorf("raw token length %d", len(raw))
	}
	if HashRefreshToken(raw) != hash {
		t.Error("hash mismatch")
	}
}
