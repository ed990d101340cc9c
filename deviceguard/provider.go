package deviceguard

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type metricsParams struct {
	fx.In
	Registerer prometheus.Registerer `optional:"true"`
}

func provideMetrics(p metricsParams) *Metrics {
	return NewMetrics(p.Registerer)
}

var Module = fx.Options(
	fx.Provide(provideMetrics),
)
