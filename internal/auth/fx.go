package auth

import (
	"github.com/invorahq/invora/internal/auth/repository"
	"github.com/invorahq/invora/internal/auth/service"
	"github.com/invorahq/invora/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
