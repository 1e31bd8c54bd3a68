package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eyepyon/waiwine/internal/config"
	"github.com/eyepyon/waiwine/internal/database"
	"github.com/eyepyon/waiwine/internal/fanout"
	"github.com/eyepyon/waiwine/internal/handler"
	"github.com/eyepyon/waiwine/internal/provider"
	"github.com/eyepyon/waiwine/internal/registry"
	"github.com/eyepyon/waiwine/internal/router"
	"github.com/eyepyon/waiwine/internal/store"
)

// API is the HTTP + WebSocket relay application.
type API struct {
	cfg *config.Config
	srv *http.Server
	db  *gorm.DB
	reg *registry.Registry
	log *zap.Logger
}

// NewAPI creates the relay application: validates config, runs migrations,
// opens the settings store, builds the registry and router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	recognizer, translator, detector, synthesizer, err := buildProviders(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("providers: %w", err)
	}

	settingsStore := store.NewGormStore(db)
	reg := registry.New(settingsStore, cfg.GracePeriod, cfg.QueueCapacity, logger)
	orchestrator := fanout.New(reg, translator, synthesizer,
		cfg.TranslateTimeout, cfg.SynthesizeTimeout, logger)

	translationHandler := handler.NewTranslationHandler(settingsStore, reg, translator, detector, synthesizer, cfg, logger)
	translateWS := handler.NewTranslateWSHandler(reg, orchestrator, recognizer, cfg, logger)
	health := handler.NewHealthHandler()

	r := router.New(translationHandler, translateWS, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, db: db, reg: reg, log: logger}, nil
}

// buildProviders wires the AI collaborators. An unset URL selects the
// deterministic stub so the relay runs end to end without external services.
// Language detection is hosted by the translation service, so the translation
// client doubles as the detector.
func buildProviders(cfg *config.Config, logger *zap.Logger) (provider.Recognizer, provider.Translator, provider.Detector, provider.Synthesizer, error) {
	var (
		recognizer  provider.Recognizer
		translator  provider.Translator
		detector    provider.Detector
		synthesizer provider.Synthesizer
	)
	if cfg.RecognitionURL != "" {
		c, err := provider.NewRecognitionClient(provider.HTTPConfig{BaseURL: cfg.RecognitionURL, APIKey: cfg.ProviderAPIKey})
		if err != nil {
			return nil, nil, nil, nil, err
		}
		recognizer = c
	} else {
		logger.Warn("RECOGNITION_URL not set, using stub recognizer")
		recognizer = provider.NewStubRecognizer(nil)
	}
	if cfg.TranslationURL != "" {
		c, err := provider.NewTranslationClient(provider.HTTPConfig{BaseURL: cfg.TranslationURL, APIKey: cfg.ProviderAPIKey})
		if err != nil {
			return nil, nil, nil, nil, err
		}
		translator = c
		detector = c
	} else {
		logger.Warn("TRANSLATION_URL not set, using stub translator")
		translator = provider.NewStubTranslator(nil)
		detector = provider.NewStubDetector(nil)
	}
	if cfg.SynthesisURL != "" {
		c, err := provider.NewSynthesisClient(provider.HTTPConfig{BaseURL: cfg.SynthesisURL, APIKey: cfg.ProviderAPIKey})
		if err != nil {
			return nil, nil, nil, nil, err
		}
		synthesizer = c
	} else {
		logger.Warn("SYNTHESIS_URL not set, using stub synthesizer")
		synthesizer = provider.NewStubSynthesizer(nil)
	}
	return recognizer, translator, detector, synthesizer, nil
}

// Run starts the HTTP server and blocks until ctx is cancelled; then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	addr := a.srv.Addr
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	log.Printf("HTTP server listening on %s", addr)
	log.Printf("  Health:        %s/health", base)
	log.Printf("  Ready:         %s/ready", base)
	log.Printf("  Settings:      %s/translation/settings", base)
	log.Printf("  WebSocket:     ws://%s:%s/ws/translate/:room_id/:participant_id", host, a.cfg.HTTPPort)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	a.reg.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	_ = a.log.Sync()
	return nil
}
