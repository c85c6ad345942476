package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/config"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/metrics"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/ratelimit"
	"github.com/Rogue-Bear-Innovations/shopmap-back/internal/service"
)

type HTTPServer struct {
	e       *echo.Echo
	svc     *service.General
	limiter *ratelimit.Limiter
	metrics *metrics.HTTPMetrics
	logger  *zap.SugaredLogger
}

func NewHTTPServer(
	lc fx.Lifecycle,
	cfg *config.Config,
	svc *service.General,
	limiter *ratelimit.Limiter,
	m *metrics.HTTPMetrics,
	reg *prometheus.Registry,
	logger *zap.SugaredLogger,
) *HTTPServer {
	instance := New(svc, limiter, m, reg, cfg.TrustProxy, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				logger.Infow("starting HTTP server", "listen", listen)
				if err := instance.e.Start(listen); err != nil && err != http.ErrServerClosed {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.e.Shutdown(ctx)
		},
	})

	return instance
}

// New builds the echo app with every route registered; it does not listen.
func New(
	svc *service.General,
	limiter *ratelimit.Limiter,
	m *metrics.HTTPMetrics,
	reg *prometheus.Registry,
	trustProxy bool,
	logger *zap.SugaredLogger,
) *HTTPServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// client-supplied forwarding headers must not pick the rate limit key
	e.IPExtractor = echo.ExtractIPDirect()
	if trustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	}

	instance := &HTTPServer{
		e:       e,
		svc:     svc,
		limiter: limiter,
		metrics: m,
		logger:  logger,
	}

	e.Validator = NewCustomValidator()
	e.HTTPErrorHandler = instance.ErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, headerToken},
	}))
	e.Use(instance.MetricsMiddleware)
	e.Use(instance.RequestLogger())
	e.Use(instance.BodyDump())
	e.Use(instance.AuthMiddleware)

	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	if reg != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	authG := e.Group("/auth")
	authG.POST("/login", instance.Login)
	authG.POST("/register", instance.Register)
	authG.POST("/logout", instance.Logout)

	shopG := e.Group("/shops")
	shopG.GET("", instance.ShopList)
	shopG.POST("", instance.ShopCreate)
	shopG.GET("/:id", instance.ShopGet)
	shopG.PUT("/:id", instance.ShopUpdate, instance.RequireUser)
	shopG.PATCH("/:id", instance.ShopUpdate, instance.RequireUser)
	shopG.DELETE("/:id", instance.ShopDelete, instance.RequireUser)
	shopG.GET("/:id/reviews", instance.ReviewList)
	shopG.POST("/:id/reviews", instance.ReviewCreate)

	favoriteG := e.Group("/favorite-shops", instance.RequireUser)
	favoriteG.GET("", instance.FavoriteList)
	favoriteG.POST("/:shopId", instance.FavoriteAdd)
	favoriteG.DELETE("/:shopId", instance.FavoriteRemove)

	return instance
}

func (s *HTTPServer) Handler() http.Handler {
	return s.e
}

func (s *HTTPServer) MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			status, _ = toErrorResp(err)
		}
		s.metrics.Observe(c.Request().Method, c.Path(), status, time.Since(start))
		return err
	}
}

func (s *HTTPServer) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil {
				status, _ = toErrorResp(v.Error)
			}
			s.logger.Infow("request",
				"method", v.Method,
				"uri", v.URI,
				"status", status,
				"latency", v.Latency,
			)
			return nil
		},
	})
}

// BodyDump logs request bodies at debug level with passwords censored.
func (s *HTTPServer) BodyDump() echo.MiddlewareFunc {
	return middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(c echo.Context) bool {
			return !s.logger.Desugar().Core().Enabled(zap.DebugLevel)
		},
		Handler: func(c echo.Context, reqBody, resBody []byte) {
			s.logger.Debugw("request body",
				"path", c.Path(),
				"body", string(censorBody(reqBody)),
			)
		},
	})
}
