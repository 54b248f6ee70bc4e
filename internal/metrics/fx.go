package metrics

import (
	"github.com/pedidofacil/pedidofacil/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

func NewFromConfig(cfg config.Config) *HTTPMetrics {
	return New(prometheus.DefaultRegisterer, Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})
}

var Module = fx.Module("metrics",
	fx.Provide(NewFromConfig),
)
