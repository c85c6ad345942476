package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/db"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/geocode"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/logger"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/metrics"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/proto"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/ratelimit"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/service"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/transport"
)

func main() {
	fx.New(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			db.NewGormClient,
			func(cfg *config.Config) service.Geocoder {
				return geocode.NewClientFromConfig(cfg)
			},
			ratelimit.NewRedisClient,
			ratelimit.NewLoginLimiter,
			newRegistry,
			func(reg *prometheus.Registry) *metrics.HTTPMetrics {
				return metrics.NewHTTPMetrics(reg)
			},
			service.NewGeneral,
			transport.NewHTTPServer,
		),
		proto.Module,
		fx.WithLogger(func(l *zap.SugaredLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Desugar()}
		}),
		fx.Invoke(func(*transport.HTTPServer) {}),
	).Run()
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
