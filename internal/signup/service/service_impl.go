package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/invorahq/invora/internal/auth/domain"
	"github.com/invorahq/invora/internal/auth/password"
	"github.com/invorahq/invora/internal/clock"
	companydomain "github.com/invorahq/invora/internal/company/domain"
	creditsdomain "github.com/invorahq/invora/internal/credits/domain"
	"github.com/invorahq/invora/internal/signup/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	signupPlan = "free"

	defaultCurrency = "GEL"
	defaultVATRate  = 18.0
	defaultPrefix   = "INV"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	AuthRepo    authdomain.Repository
	CompanyRepo companydomain.Repository
	Credits     creditsdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	authRepo    authdomain.Repository
	companyRepo companydomain.Repository
	credits     creditsdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("signup.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		authRepo:    p.AuthRepo,
		companyRepo: p.CompanyRepo,
		credits:     p.Credits,
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return domain.RegisterResponse{}, authdomain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return domain.RegisterResponse{}, authdomain.ErrInvalidPassword
	}
	companyName := strings.TrimSpace(req.CompanyName)
	if companyName == "" {
		return domain.RegisterResponse{}, companydomain.ErrInvalidName
	}

	existing, err := s.authRepo.FindUserByEmail(ctx, s.db, email)
	if err != nil {
		return domain.RegisterResponse{}, err
	}
	if existing != nil {
		return domain.RegisterResponse{}, authdomain.ErrUserExists
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	now := s.clock.Now()
	user := authdomain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(req.FullName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	company := companydomain.Company{
		ID:              s.genID.Generate(),
		OwnerUserID:     user.ID,
		Name:            companyName,
		Email:           email,
		DefaultCurrency: defaultCurrency,
		DefaultVATRate:  defaultVATRate,
		InvoicePrefix:   defaultPrefix,
		Metadata:        datatypes.JSONMap{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var credits creditsdomain.UserCredits
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.authRepo.InsertUser(ctx, tx, &user); err != nil {
			return err
		}
		if err := s.companyRepo.Insert(ctx, tx, &company); err != nil {
			return err
		}
		credits, err = s.credits.Provision(ctx, tx, user.ID, signupPlan)
		return err
	})
	if err != nil {
		return domain.RegisterResponse{}, err
	}

	s.log.Info("account provisioned",
		zap.String("user_id", user.ID.String()),
		zap.String("company_id", company.ID.String()),
	)
	return domain.RegisterResponse{User: user, Company: company, Credits: credits}, nil
}
