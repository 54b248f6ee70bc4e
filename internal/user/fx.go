package user

import (
	"github.com/pedidofacil/pedidofacil/internal/user/repository"
	"github.com/pedidofacil/pedidofacil/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(repository.ProvideSessions),
	fx.Provide(service.New),
)
