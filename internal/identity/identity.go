// Package identity registers accounts and issues the tokens that the
// transports resolve into actors.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"consult-broker/internal/apperr"
	"consult-broker/internal/auth"
	"consult-broker/internal/model"
	"consult-broker/internal/store"
)

var (
	// ErrInvalidCredentials is returned for unknown accounts and bad passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRegistrationFailed = errors.New("registration failed")
	ErrBadRefreshToken    = errors.New("invalid refresh token")
)

const MinPasswordLen = 8

type Config struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Service struct {
	accounts store.AccountStore
	tokens   store.TokenStore
	cfg      Config
	log      *slog.Logger
}

func New(accounts store.AccountStore, tokens store.TokenStore, cfg Config, log *slog.Logger) *Service {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = auth.DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	return &Service{accounts: accounts, tokens: tokens, cfg: cfg, log: log}
}

type Session struct {
	Account      *model.Account
	AccessToken  string
	RefreshToken string
}

type RegisterInput struct {
	Role     string
	Name     string
	Email    string
	Password string

	// Worker profile; ignored for users.
	Specialization string
	Experience     int
	ClinicLocation string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	role := model.Role(strings.ToLower(strings.TrimSpace(in.Role)))
	if !role.Valid() {
		return nil, apperr.BadRequest("role must be user or worker")
	}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("all fields required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("invalid email")
	}
	if len(in.Password) < MinPasswordLen {
		return nil, apperr.Validation("password too short")
	}
	if in.Experience < 0 {
		return nil, apperr.Validation("experience cannot be negative")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	acct := &model.Account{Role: role, Email: email, Name: name, PasswordHash: hash}
	if role == model.RoleWorker {
		acct.Profile = model.WorkerProfile{
			Specialization: strings.TrimSpace(in.Specialization),
			Experience:     in.Experience,
			ClinicLocation: strings.TrimSpace(in.ClinicLocation),
		}
	}
	if err := s.accounts.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// duplicate email, but don't reveal that
			return nil, ErrRegistrationFailed
		}
		return nil, err
	}
	s.log.InfoContext(ctx, "account registered", "role", role, "account_id", acct.ID)
	return s.issue(ctx, acct)
}

func (s *Service) Login(ctx context.Context, role, email, password string) (*Session, error) {
	r := model.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return nil, apperr.BadRequest("role must be user or worker")
	}
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password required")
	}

	acct, err := s.accounts.AccountByEmail(ctx, r, strings.TrimSpace(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(acct.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, acct)
}

// Refresh exchanges a refresh token for a new pair. Presenting a token that
// was already rotated revokes every token of the account.
func (s *Service) Refresh(ctx context.Context, raw string) (*Session, error) {
	if raw == "" {
		return nil, apperr.Validation("refresh token required")
	}
	rt, err := s.tokens.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(raw))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadRefreshToken
	}
	if err != nil {
		return nil, err
	}
	if rt.Revoked {
		s.log.WarnContext(ctx, "refresh token reuse", "account_id", rt.AccountID)
		if err := s.tokens.RevokeAllRefreshTokens(ctx, rt.AccountID); err != nil {
			return nil, err
		}
		return nil, ErrBadRefreshToken
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, ErrBadRefreshToken
	}

	acct, err := s.accounts.GetAccount(ctx, rt.AccountID)
	if err != nil {
		return nil, err
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	newID := uuid.New().String()
	err = s.tokens.RotateRefreshToken(ctx, rt.ID, newID, acct.ID, newHash, time.Now().Add(s.cfg.RefreshTTL))
	if errors.Is(err, store.ErrConflict) {
		// lost a race with a concurrent refresh of the same token
		return nil, ErrBadRefreshToken
	}
	if err != nil {
		return nil, err
	}

	access, err := s.accessToken(acct)
	if err != nil {
		return nil, err
	}
	return &Session{Account: acct, AccessToken: access, RefreshToken: newRaw}, nil
}

func (s *Service) issue(ctx context.Context, acct *model.Account) (*Session, error) {
	access, err := s.accessToken(acct)
	if err != nil {
		return nil, err
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	if _, err := s.tokens.CreateRefreshToken(ctx, acct.ID, hash, time.Now().Add(s.cfg.RefreshTTL)); err != nil {
		return nil, err
	}
	return &Session{Account: acct, AccessToken: access, RefreshToken: raw}, nil
}

func (s *Service) accessToken(acct *model.Account) (string, error) {
	var a model.Actor
	switch acct.Role {
	case model.RoleUser:
		a = model.UserActor(acct.ID)
	case model.RoleWorker:
		a = model.WorkerActor(acct.ID)
	default:
		return "", auth.ErrBadToken
	}
	return auth.MakeToken(a, s.cfg.Secret, s.cfg.AccessTTL)
}

// PurgeExpired drops refresh tokens that expired before now.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.tokens.PurgeRefreshTokens(ctx, time.Now())
}
