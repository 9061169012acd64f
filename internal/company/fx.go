package company

import (
	"github.com/invorahq/invora/internal/company/repository"
	"github.com/invorahq/invora/internal/company/service"
	"go.uber.org/fx"
)

var Module = fx.Module("company.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
