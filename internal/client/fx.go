package client

import (
	"github.com/invorahq/invora/internal/client/repository"
	"github.com/invorahq/invora/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
