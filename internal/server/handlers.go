package server

import (
	"net/http"
	"path/filepath"

	authHttp "github.com/amankumarsingh77/vidhost/internal/auth/delivery/http"
	authRepository "github.com/amankumarsingh77/vidhost/internal/auth/repository"
	authUsecase "github.com/amankumarsingh77/vidhost/internal/auth/usecase"
	"github.com/amankumarsingh77/vidhost/internal/media"
	"github.com/amankumarsingh77/vidhost/internal/middleware"
	"github.com/amankumarsingh77/vidhost/internal/models"
	"github.com/amankumarsingh77/vidhost/internal/videos"
	videoHttp "github.com/amankumarsingh77/vidhost/internal/videos/delivery/http"
	videoRepository "github.com/amankumarsingh77/vidhost/internal/videos/repository"
	videoUsecase "github.com/amankumarsingh77/vidhost/internal/videos/usecase"
	"github.com/amankumarsingh77/vidhost/internal/worker"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) MapHandlers(e *echo.Echo) error {
	storage, err := s.storage()
	if err != nil {
		return err
	}
	pipeline, stager, err := s.pipeline()
	if err != nil {
		return err
	}

	sweeper := worker.NewSweeper(stager, s.cfg.Upload.SweepSchedule, s.cfg.Upload.StaleAfter, s.logger)
	sweeper.Sweep()
	if err = sweeper.Start(); err != nil {
		return errors.Wrap(err, "start staging sweeper")
	}
	s.onShutdown(func() error {
		sweeper.Stop()
		return nil
	})

	aRepo := authRepository.NewAuthRepo(s.db)
	aRedisRepo := authRepository.NewAuthRedisRepo(s.redisClient)
	vRepo := videoRepository.NewVideoRepo(s.db)
	vRedisRepo := videoRepository.NewVideoRedisRepo(s.redisClient)

	authUC := authUsecase.NewAuthUseCase(s.cfg, aRepo, aRedisRepo, s.logger)
	videoUC := videoUsecase.NewVideoUseCase(s.cfg, vRepo, vRedisRepo, storage, pipeline, s.logger)

	authHandlers := authHttp.NewAuthHandler(s.cfg, authUC, s.logger)
	videoHandlers := videoHttp.NewVideoHandler(s.cfg, videoUC, s.logger)

	mw := middleware.NewMiddlewareManager(authUC, s.cfg, s.cfg.Server.AllowOrigins, s.logger)

	e.Use(echomw.RequestID())
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		StackSize:         1 << 10,
		DisablePrintStack: true,
		DisableStackAll:   true,
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     s.cfg.Server.AllowOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization, echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	e.Use(mw.RequestLoggerMiddleware)

	if !s.cfg.S3.Enabled {
		// Only the permanent directories are public; staging lives under the same root.
		for _, kind := range []videos.AssetKind{videos.AssetVideo, videos.AssetThumbnail} {
			e.Static(s.cfg.Upload.PublicPrefix+"/"+string(kind), filepath.Join(s.cfg.Upload.RootDir, string(kind)))
		}
	}
	if s.cfg.Metrics.Enabled {
		e.GET(s.cfg.Metrics.Path, echo.WrapHandler(promhttp.Handler()))
	}

	v1 := e.Group("/api/v1")
	authGroup := v1.Group("/auth")
	videoGroup := v1.Group("/videos")
	uploadGroup := v1.Group("/upload")

	authHttp.MapAuthRoutes(authGroup, authHandlers, mw)
	videoHttp.MapVideoRoutes(videoGroup, uploadGroup, videoHandlers, mw, s.cfg.Upload.BodyLimit)

	e.GET("/health", s.health)
	e.GET("/health/detailed", s.healthDetailed)
	return nil
}

func (s *Server) storage() (videos.Storage, error) {
	if !s.cfg.S3.Enabled {
		return videoRepository.NewLocalStorage(s.cfg.Upload.RootDir, s.cfg.Upload.PublicPrefix)
	}
	if s.s3Client == nil {
		return nil, errors.New("s3 storage enabled without a client")
	}
	return videoRepository.NewS3Storage(s.s3Client, s.cfg.S3.Bucket, s.cfg.S3.PublicURL, s.cfg.Upload.RootDir)
}

func (s *Server) pipeline() (videos.Pipeline, *media.Stager, error) {
	mc := s.cfg.Media
	validator := media.NewValidator(s.cfg.Upload.MaxPayloadBytes, s.cfg.Upload.SniffContent)
	stager, err := media.NewStager(s.cfg.Upload.TempDir, validator)
	if err != nil {
		return videos.Pipeline{}, nil, err
	}

	tc := media.TranscoderConfig{Binary: mc.FFmpegPath, Timeout: mc.TranscodeTimeout}
	if s.cfg.Worker.CgroupPath != "" {
		hook, cleanup, err := worker.NewCgroupHook(s.cfg.Worker.CgroupPath, s.cfg.Worker.CPUShares)
		if err != nil {
			return videos.Pipeline{}, nil, errors.Wrap(err, "transcode cgroup")
		}
		tc.StartHook = hook
		s.onShutdown(cleanup)
	}
	transcoder := worker.NewLimiter(media.NewTranscoder(tc, s.logger), s.cfg.Worker, s.logger)

	return videos.Pipeline{
		Validator:  validator,
		Stager:     stager,
		Prober:     media.NewProber(mc.FFprobePath, mc.ProbeTimeout),
		Transcoder: transcoder,
		Thumbnailer: media.NewThumbnailer(media.ThumbnailConfig{
			Binary:        mc.FFmpegPath,
			Timeout:       mc.ThumbnailTimeout,
			OffsetPercent: mc.ThumbnailOffsetPercent,
			Width:         mc.ThumbnailWidth,
			Height:        mc.ThumbnailHeight,
			Quality:       mc.ThumbnailQuality,
		}),
		Profile: models.EncodingProfile{
			Container:        mc.Profile.Container,
			VideoCodec:       mc.Profile.VideoCodec,
			AudioCodec:       mc.Profile.AudioCodec,
			Width:            mc.Profile.Width,
			Height:           mc.Profile.Height,
			VideoBitrateKbps: mc.Profile.VideoBitrateKbps,
			AudioBitrateKbps: mc.Profile.AudioBitrateKbps,
		},
	}, stager, nil
}
