package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/invorahq/invora/internal/auth/domain"
	"github.com/invorahq/invora/internal/auth/password"
	"github.com/invorahq/invora/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionTTL = 30 * 24 * time.Hour

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return domain.User{}, domain.ErrInvalidPassword
	}

	existing, err := s.repo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.User{}, err
	}
	if existing != nil {
		return domain.User{}, domain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	now := s.clock.Now()
	user := domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.InsertUser(ctx, s.db, &user); err != nil {
		return domain.User{}, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, domain.User, string, error) {
	user, err := s.repo.FindUserByEmail(ctx, s.db, req.Email)
	if err != nil {
		return domain.Session{}, domain.User{}, "", err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		return domain.Session{}, domain.User{}, "", domain.ErrInvalidCredentials
	}

	rawToken, err := generateSessionToken()
	if err != nil {
		return domain.Session{}, domain.User{}, "", err
	}

	now := s.clock.Now()
	session := domain.Session{
		ID:        s.genID.Generate(),
		UserID:    user.ID,
		TokenHash: hashSessionToken(rawToken),
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	}

	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return domain.Session{}, domain.User{}, "", err
	}

	return session, *user, rawToken, nil
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (domain.Session, error) {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken == "" {
		return domain.Session{}, domain.ErrInvalidSession
	}

	session, err := s.repo.FindSessionByTokenHash(ctx, s.db, hashSessionToken(rawToken))
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, domain.ErrInvalidSession
	}
	if session.RevokedAt != nil {
		return domain.Session{}, domain.ErrSessionRevoked
	}
	if !session.ExpiresAt.After(s.clock.Now()) {
		return domain.Session{}, domain.ErrSessionExpired
	}

	return *session, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	session, err := s.repo.FindSessionByTokenHash(ctx, s.db, hashSessionToken(strings.TrimSpace(rawToken)))
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	return s.repo.RevokeSession(ctx, s.db, session.ID)
}

func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}

	user, err := s.repo.FindUserByID(ctx, s.db, parsed)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return *user, nil
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func hashSessionToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
