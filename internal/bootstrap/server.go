package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/skybooking/api"
	"github.com/Domenick1991/skybooking/config"
	bookingsapi "github.com/Domenick1991/skybooking/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/skybooking/internal/api/flights_service_api"
	"github.com/Domenick1991/skybooking/internal/middleware"
	"github.com/Domenick1991/skybooking/internal/service/auth"
	"github.com/Domenick1991/skybooking/internal/service/booking"
	"github.com/Domenick1991/skybooking/internal/service/flights"
	"github.com/Domenick1991/skybooking/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
)

const swaggerSpecPath = "/swagger/bookings.swagger.json"

// Services bundles everything the transport layer serves.
type Services struct {
	Flights  flights.FlightUseCase
	Bookings booking.BookingUseCase
	Auth     auth.AuthUseCase
	Tokens   *jwt.Service
	// HealthChecks are probed by GET /health, keyed by dependency name.
	HealthChecks map[string]func(ctx context.Context) error
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the gRPC and HTTP servers and blocks until ctx is canceled or
// a server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services, logger *logrus.Logger) error {
	s := newServers(cfg, svc, logger)

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() {
		logger.WithField("address", cfg.GRPC.Address).Info("gRPC server starting")
		errCh <- s.grpcServer.Serve(lis)
	}()

	go func() {
		logger.WithField("address", cfg.HTTP.Address).Info("HTTP server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("Servers stopped")
		return nil
	}
}

func newServers(cfg *config.Config, svc Services, logger *logrus.Logger) *Servers {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(middleware.UnaryServerInterceptor(logger)))
	bookingsapi.Register(grpcSrv, bookingsapi.NewServer(svc.Bookings))
	flightsapi.Register(grpcSrv, flightsapi.NewServer(svc.Flights))

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      NewRouter(cfg, svc, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
	}
}

// NewRouter builds the gin engine with every HTTP route mounted.
func NewRouter(cfg *config.Config, svc Services, logger *logrus.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.HTTP.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler(svc.HealthChecks))

	requireAuth := middleware.AuthMiddleware(svc.Tokens, logger)
	optionalAuth := middleware.OptionalAuth(svc.Tokens)

	api.NewAuthHandler(svc.Auth, logger).Register(router.Group("/auth"), requireAuth)
	api.NewFlightHandler(svc.Flights, logger).Register(router.Group("/flights"))
	api.NewBookingHandler(svc.Bookings, logger).Register(router.Group("/bookings"), requireAuth, optionalAuth)

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile(swaggerSpecPath, filepath.Join(cfg.HTTP.SwaggerDir, "bookings.swagger.json"))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerSpecPath))))
	}

	return router
}

func healthCheckHandler(checks map[string]func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				deps[name] = "unhealthy"
				continue
			}
			deps[name] = "healthy"
		}

		state := "healthy"
		if status != http.StatusOK {
			state = "unhealthy"
		}
		c.JSON(status, gin.H{
			"status":       state,
			"dependencies": deps,
			"time":         time.Now().UTC().Format(time.RFC3339),
		})
	}
}
