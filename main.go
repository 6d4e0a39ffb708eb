package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"sala2/api"
	"sala2/config"
	"sala2/handlers"
	"sala2/internal/database"
	"sala2/services/accounts"
	"sala2/services/collections"
	"sala2/services/csrf"
	"sala2/services/mail"
	"sala2/services/metadata"
	"sala2/services/prefs"
	"sala2/services/sessions"
	"sala2/utils"
)

func main() {
	configPath := flag.String("config", "./data/config.json", "path to config file")
	flag.Parse()

	manager, err := config.NewManager(*configPath)
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	cfg := manager.Get()

	setupLogging(cfg.Log)

	if cfg.TMDB.APIKey == "" {
		log.Printf("[main] warning: no metadata API key configured, catalog routes will fail")
	}

	dataDir := cfg.Storage.DataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("[main] failed to create data dir: %v", err)
	}

	metadataSvc := metadata.NewService(
		cfg.TMDB.APIKey, cfg.TMDB.Language, cfg.TMDB.Region,
		filepath.Join(dataDir, "cache"), cfg.Storage.CacheTTLHours, nil, nil,
	)

	accountsSvc, err := accounts.NewService(dataDir)
	if err != nil {
		log.Fatalf("[main] failed to init accounts: %v", err)
	}

	sessionsSvc, err := sessions.NewService(dataDir, sessions.DefaultSessionDuration)
	if err != nil {
		log.Fatalf("[main] failed to init sessions: %v", err)
	}

	csrfSvc := csrf.NewService(csrf.DefaultTokenTTL)

	db, err := database.NewDB(database.Config{
		DatabasePath: filepath.Join(dataDir, "sala2.db"),
	})
	if err != nil {
		log.Fatalf("[main] failed to open database: %v", err)
	}
	defer db.Close()

	collectionsSvc := collections.NewService(database.NewCollectionsRepository(db.Connection()))

	prefsSvc, err := prefs.NewService(dataDir)
	if err != nil {
		log.Fatalf("[main] failed to init prefs: %v", err)
	}

	mailSvc, err := mail.NewService(nil, filepath.Join(dataDir, "mail"), mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		To:       cfg.SMTP.To,
	})
	if err != nil {
		log.Fatalf("[main] failed to init mail: %v", err)
	}

	router := buildRouter(cfg, metadataSvc, accountsSvc, sessionsSvc, csrfSvc, collectionsSvc, prefsSvc, mailSvc)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("[main] listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	// SIGHUP re-reads the config file so a rotated API key takes effect
	// without a restart.
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	go func() {
		for range reload {
			next, err := manager.Reload()
			if err != nil {
				log.Printf("[main] config reload failed: %v", err)
				continue
			}
			metadataSvc.UpdateAPIKey(next.TMDB.APIKey, next.TMDB.Language, next.TMDB.Region)
			log.Printf("[main] config reloaded")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	if cfg.File == "" {
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
}

func buildRouter(
	cfg config.Config,
	metadataSvc *metadata.Service,
	accountsSvc *accounts.Service,
	sessionsSvc *sessions.Service,
	csrfSvc *csrf.Service,
	collectionsSvc *collections.Service,
	prefsSvc *prefs.Service,
	mailSvc *mail.Service,
) http.Handler {
	router := utils.NewRouter(cfg.Server.AllowedOrigins)

	metadataHandler := handlers.NewMetadataHandler(metadataSvc)
	authHandler := handlers.NewAuthHandler(accountsSvc, sessionsSvc, csrfSvc, mailSvc, collectionsSvc, cfg.Server.SecureCookies)
	collectionsHandler := handlers.NewCollectionsHandler(collectionsSvc)
	prefsHandler := handlers.NewPrefsHandler(prefsSvc)
	mailHandler := handlers.NewMailHandler(mailSvc)
	imagesHandler := handlers.NewImagesHandler("", nil)

	// Catalog routes: no credentials, no CSRF.
	meta := router.PathPrefix("/api/metadata").Subrouter()
	meta.HandleFunc("/search", metadataHandler.Search).Methods(http.MethodGet)
	meta.HandleFunc("/movies/in-cinemas", metadataHandler.InCinemas).Methods(http.MethodGet)
	meta.HandleFunc("/movies/coming-soon", metadataHandler.ComingSoon).Methods(http.MethodGet)
	meta.HandleFunc("/movies/{feed:[a-z_]+}", metadataHandler.MovieFeed).Methods(http.MethodGet)
	meta.HandleFunc("/tv/{feed:[a-z_]+}", metadataHandler.TVFeed).Methods(http.MethodGet)
	meta.HandleFunc("/trending/{type}", metadataHandler.Trending).Methods(http.MethodGet)
	meta.HandleFunc("/{type:movie|tv}/{id:[0-9]+}/trailer", metadataHandler.Trailer).Methods(http.MethodGet)
	meta.HandleFunc("/movie/{id:[0-9]+}", metadataHandler.MovieDetails).Methods(http.MethodGet)
	meta.HandleFunc("/tv/{id:[0-9]+}", metadataHandler.TVDetails).Methods(http.MethodGet)
	meta.HandleFunc("/tv/{id:[0-9]+}/season/{season:[0-9]+}", metadataHandler.SeasonDetails).Methods(http.MethodGet)
	meta.HandleFunc("/person/{id:[0-9]+}", metadataHandler.PersonDetails).Methods(http.MethodGet)
	meta.HandleFunc("/person/{id:[0-9]+}/filmography", metadataHandler.Filmography).Methods(http.MethodGet)

	router.HandleFunc("/api/images/{size}/{path:.+}", imagesHandler.Serve).Methods(http.MethodGet)

	// Auth: CSRF token fetch is open; login/register are rate limited and
	// CSRF protected; logout/verify ride the session cookie.
	loginLimiter := api.NewIPRateLimiter(rate.Every(12*time.Second), 5)

	authRouter := router.PathPrefix("/auth").Subrouter()
	authRouter.Use(api.CSRFMiddleware(csrfSvc))
	authRouter.HandleFunc("/csrf-token", authHandler.CSRFToken).Methods(http.MethodGet)
	authRouter.HandleFunc("/login", api.RateLimitHandlerFunc(loginLimiter, authHandler.Login)).Methods(http.MethodPost)
	authRouter.HandleFunc("/register", api.RateLimitHandlerFunc(loginLimiter, authHandler.Register)).Methods(http.MethodPost)
	authRouter.HandleFunc("/recover", api.RateLimitHandlerFunc(loginLimiter, authHandler.Recover)).Methods(http.MethodPost)
	authRouter.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	authRouter.HandleFunc("/verify", authHandler.Verify).Methods(http.MethodGet)
	authRouter.HandleFunc("/account", authHandler.DeleteAccount).Methods(http.MethodDelete)

	// Collections: session + CSRF.
	collectionsRouter := router.PathPrefix("/collections").Subrouter()
	collectionsRouter.Use(api.SessionMiddleware(sessionsSvc))
	collectionsRouter.Use(api.CSRFMiddleware(csrfSvc))
	collectionsRouter.HandleFunc("", collectionsHandler.Get).Methods(http.MethodGet)
	collectionsRouter.HandleFunc("/movies/toggle", collectionsHandler.ToggleMovie).Methods(http.MethodPost)
	collectionsRouter.HandleFunc("/tv/toggle", collectionsHandler.ToggleTV).Methods(http.MethodPost)

	// Cookie preferences: keyed by the anonymous client cookie.
	prefsRouter := router.PathPrefix("/prefs").Subrouter()
	prefsRouter.Use(api.CSRFMiddleware(csrfSvc))
	prefsRouter.HandleFunc("/cookies", prefsHandler.Get).Methods(http.MethodGet)
	prefsRouter.HandleFunc("/cookies", prefsHandler.Put).Methods(http.MethodPut)

	// Contact form: CSRF protected and rate limited.
	mailLimiter := api.NewIPRateLimiter(rate.Every(time.Minute), 3)
	mailRouter := router.PathPrefix("/mail").Subrouter()
	mailRouter.Use(api.CSRFMiddleware(csrfSvc))
	mailRouter.HandleFunc("/create-mail", api.RateLimitHandlerFunc(mailLimiter, mailHandler.Create)).Methods(http.MethodPost)

	return router
}
