package credits

import (
	"github.com/invorahq/invora/internal/credits/repository"
	"github.com/invorahq/invora/internal/credits/service"
	"go.uber.org/fx"
)

var Module = fx.Module("credits.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
