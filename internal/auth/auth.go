package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"consult-broker/internal/model"
)

var ErrBadToken = errors.New("invalid token")

// DefaultAccessTTL keeps access tokens short-lived; refresh tokens renew them.
const DefaultAccessTTL = 15 * time.Minute

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Claims identify the actor; the subject is the account id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Actor resolves the claims into a typed actor.
func (c *Claims) Actor() (model.Actor, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return model.Actor{}, ErrBadToken
	}
	return model.ParseActor(c.Role, id)
}

func MakeToken(a model.Actor, secret string, ttl time.Duration) (string, error) {
	if !a.Valid() {
		return "", ErrBadToken
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	now := time.Now()
	c := Claims{
		Role: string(a.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(a.ID(), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}

func ParseToken(raw, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrBadToken
	}
	return c, nil
}

// ActorFromToken verifies raw and returns the actor it names.
func ActorFromToken(raw, secret string) (model.Actor, error) {
	c, err := ParseToken(raw, secret)
	if err != nil {
		return model.Actor{}, err
	}
	a, err := c.Actor()
	if err != nil {
		return model.Actor{}, ErrBadToken
	}
	return a, nil
}

func GenerateRefreshToken() (raw string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashRefreshToken(raw), nil
}

func HashRefreshToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
