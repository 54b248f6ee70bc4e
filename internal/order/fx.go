package order

import (
	"github.com/pedidofacil/pedidofacil/internal/order/repository"
	"github.com/pedidofacil/pedidofacil/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
