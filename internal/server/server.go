package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amankumarsingh77/vidhost/internal/config"
	"github.com/amankumarsingh77/vidhost/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

const (
	maxHeaderBytes = 1 << 20
	ctxTimeout     = 30
)

type Server struct {
	echo        *echo.Echo
	cfg         *config.Config
	db          *sqlx.DB
	redisClient *redis.Client
	s3Client    *s3.Client
	logger      logger.Logger
	startedAt   time.Time
	// closers run in reverse order on shutdown.
	closers []func() error
}

// NewServer builds the HTTP server. s3Client may be nil when S3 storage is disabled.
func NewServer(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, s3Client *s3.Client, logger logger.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	return &Server{
		echo:        e,
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		s3Client:    s3Client,
		logger:      logger,
		startedAt:   time.Now(),
	}
}

func (s *Server) onShutdown(fn func() error) {
	s.closers = append(s.closers, fn)
}

func (s *Server) Run() error {
	if err := s.MapHandlers(s.echo); err != nil {
		return errors.Wrap(err, "map handlers")
	}

	server := &http.Server{
		Addr:           s.cfg.Server.Port,
		ReadTimeout:    s.cfg.Server.ReadTimeout,
		WriteTimeout:   s.cfg.Server.WriteTimeout,
		MaxHeaderBytes: maxHeaderBytes,
	}

	go func() {
		s.logger.Infof("Server is listening on PORT: %s", s.cfg.Server.Port)
		if err := s.echo.StartServer(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Fatalf("Error starting Server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, os.Interrupt)
	<-quit

	ctx, shutdown := context.WithTimeout(context.Background(), ctxTimeout*time.Second)
	defer shutdown()

	s.logger.Info("Server Exited Properly")
	err := s.echo.Shutdown(ctx)
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i]())
	}
	return err
}
