package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolio-api/internal/config"
	"portfolio-api/internal/geo"
	"portfolio-api/internal/github"
	"portfolio-api/internal/handler"
	"portfolio-api/internal/kakao"
	"portfolio-api/internal/mapsession"
	"portfolio-api/internal/models"
	"portfolio-api/internal/repository"
	"portfolio-api/internal/service"
)

func main() {
	// A .env file is a local development convenience; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	fallback := models.GeoPoint{Lat: cfg.FallbackLat, Lng: cfg.FallbackLng}
	resolver := geo.NewResolver(nil, fallback, cfg.RequireGeo, logger)

	provider := kakao.NewProvider(cfg.KakaoAPIKey)
	if !provider.Configured() {
		logger.Warn().Msg("KAKAO_API_KEY is not set; location endpoints will report a configuration error")
	}

	// Initialize layers
	contacts := repository.NewContactStore()
	repoCache := repository.NewRepoCache()
	recent := repository.NewRecentQueries()

	githubClient := github.NewClient(cfg.GithubToken, logger)

	searchService := service.NewSearchService(provider, recent, resolver, logger)
	contactService := service.NewContactService(contacts)
	repoService := service.NewRepoService(githubClient, repoCache)
	previewService := service.NewPreviewService()

	themes := mapsession.NewThemeStore(mapsession.ThemeLight)
	mapSession := mapsession.NewSession(mapsession.Config{
		Center:   fallback,
		Level:    3,
		Finder:   searchService,
		Geocoder: provider,
		Themes:   themes,
		Log:      logger,
	})
	mapSession.Ready()

	placeHandler := handler.NewPlaceHandler(searchService, provider)
	sessionHandler := handler.NewSessionHandler(mapSession, themes)
	locationHandler := handler.NewLocationHandler(provider)
	repoHandler := handler.NewRepoHandler(repoService, githubClient, cfg.GithubUsername)
	contactHandler := handler.NewContactHandler(contactService)
	previewHandler := handler.NewPreviewHandler(previewService)

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", handler.Health)

	r.GET("/api/places/search", placeHandler.Search)
	r.GET("/api/places/nearest", placeHandler.Nearest)
	r.GET("/api/kakao/location", locationHandler.Location)
	r.GET("/api/github/repos", repoHandler.List)
	r.GET("/repos", repoHandler.PublicProxy)
	r.POST("/api/contact", contactHandler.Submit)
	r.GET("/api/place-preview", previewHandler.Preview)

	r.GET("/api/map/view", sessionHandler.View)
	r.POST("/api/map/click", sessionHandler.Click)
	r.POST("/api/map/markers", sessionHandler.SetMarkers)
	r.GET("/api/map/clusters", sessionHandler.Clusters)
	r.POST("/api/map/select", sessionHandler.Select)
	r.POST("/api/map/zoom", sessionHandler.Zoom)
	r.POST("/api/map/type", sessionHandler.SetMapType)
	r.POST("/api/map/theme", sessionHandler.SetTheme)
	r.POST("/api/map/gesture", sessionHandler.Gesture)

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: r,
	}

	go func() {
		logger.Info().Str("address", cfg.ServerAddress).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-stopChan

	logger.Info().Msg("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}
