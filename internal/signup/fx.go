package signup

import (
	"github.com/invorahq/invora/internal/signup/service"
	"go.uber.org/fx"
)

var Module = fx.Module("signup.service",
	fx.Provide(service.New),
)
