package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/rutujak-bora/crm/internal/auth/domain"
	"github.com/rutujak-bora/crm/internal/auth/password"
	"github.com/rutujak-bora/crm/internal/auth/token"
	"github.com/rutujak-bora/crm/internal/clock"
	"github.com/rutujak-bora/crm/internal/config"
	"github.com/rutujak-bora/crm/internal/observability/metrics"
	"github.com/rutujak-bora/crm/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Cfg     config.Config
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    domain.Repository
	Limiter *ratelimit.LoginLimiter `optional:"true"`
	Metrics *metrics.Metrics        `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	repo    domain.Repository
	issuer  *token.Issuer
	limiter *ratelimit.LoginLimiter
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("auth.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		issuer:  token.NewIssuer(p.Cfg.Auth.JWTSecret, p.Cfg.Auth.TokenTTL, p.Clock),
		limiter: p.Limiter,
		metrics: p.Metrics,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	if !req.Namespace.Valid() {
		return nil, domain.ErrInvalidNamespace
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		s.recordLogin(ctx, req.Namespace, "invalid")
		return nil, domain.ErrInvalidCredentials
	}

	allowed, _, err := s.limiter.Allow(ctx, string(req.Namespace), email)
	if err != nil {
		s.log.Warn("login limiter unavailable", zap.Error(err))
	} else if !allowed {
		s.recordLogin(ctx, req.Namespace, "throttled")
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, s.db, req.Namespace, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !password.Verify(req.Password, user.PasswordHash) {
		s.recordLogin(ctx, req.Namespace, "invalid")
		return nil, domain.ErrInvalidCredentials
	}

	raw, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, req.Namespace, "success")
	return &domain.LoginResult{
		Token: raw,
		User:  domain.UserView{Email: user.Email, Name: user.Name},
	}, nil
}

func (s *Service) Verify(ctx context.Context, namespace domain.Namespace, rawToken string) (*domain.UserView, error) {
	claims, err := s.issuer.Parse(namespace, rawToken)
	if err != nil {
		return nil, err
	}
	return &domain.UserView{Email: claims.Email, Name: claims.Name}, nil
}

func (s *Service) EnsureUser(ctx context.Context, req domain.EnsureUserRequest) (*domain.User, error) {
	if !req.Namespace.Valid() {
		return nil, domain.ErrInvalidNamespace
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidUser
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = email
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	var user *domain.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByEmail(ctx, tx, req.Namespace, email)
		if err != nil {
			return err
		}
		if existing != nil {
			existing.Name = name
			existing.PasswordHash = hash
			existing.UpdatedAt = now
			user = existing
			return s.repo.UpdatePassword(ctx, tx, existing)
		}

		user = &domain.User{
			ID:           s.genID.Generate(),
			Namespace:    req.Namespace,
			Email:        email,
			Name:         name,
			PasswordHash: hash,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return s.repo.Create(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) recordLogin(ctx context.Context, namespace domain.Namespace, outcome string) {
	s.metrics.RecordLogin(ctx, string(namespace), outcome)
}

// IsAuthError reports whether err should surface as 401.
func IsAuthError(err error) bool {
	return errors.Is(err, domain.ErrInvalidCredentials) ||
		errors.Is(err, domain.ErrTokenMissing) ||
		errors.Is(err, domain.ErrTokenInvalid) ||
		errors.Is(err, domain.ErrTokenExpired) ||
		errors.Is(err, domain.ErrWrongNamespace)
}
