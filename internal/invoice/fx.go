package invoice

import (
	"github.com/pedidofacil/pedidofacil/internal/invoice/repository"
	"github.com/pedidofacil/pedidofacil/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
