package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fika-quiz/backend/internal/accounts"
	"github.com/fika-quiz/backend/internal/auth"
	"github.com/fika-quiz/backend/internal/config"
	"github.com/fika-quiz/backend/internal/database"
	"github.com/fika-quiz/backend/internal/logger"
	"github.com/fika-quiz/backend/internal/middleware"
	"github.com/fika-quiz/backend/internal/points"
	"github.com/fika-quiz/backend/internal/questions"
	"github.com/fika-quiz/backend/internal/session"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config lives in cfg, so fall back to a default logger here
		log, _ := logger.New("info", false)
		log.Fatal("load config", "error", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		os.Stderr.WriteString("init logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize storage
	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("connect database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("run migrations", "error", err)
	}

	rdb, err := database.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("connect redis", "error", err)
	}
	defer rdb.Close()

	// Initialize services
	sessions := session.NewManager(session.NewRedisStore(rdb), cfg.SessionSecret, cfg.SessionTTL)

	questionService := questions.NewService(questions.NewStore(db), questions.NewRedisCache(rdb, cfg.CatalogCacheTTL), log)
	pointsService := points.NewService(points.NewStore(db), log)
	accountService := accounts.NewService(accounts.NewStore(db), log)

	// Initialize handlers
	questionHandler := questions.NewHandler(questionService, log)
	pointsHandler := points.NewHandler(pointsService, log)
	authHandler := auth.NewHandler(
		auth.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL),
		auth.NewRedisStateStore(rdb),
		accountService,
		sessions,
		auth.HandlerConfig{FrontendURL: cfg.FrontendURL, SecureCookie: cfg.CookieSecure},
		log,
	)
	authMW := middleware.NewAuth(sessions, log)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SecurityHeaders)

	api := r.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/chapters", questionHandler.ListChapters).Methods("GET")
	api.HandleFunc("/questions/{chapter}", questionHandler.ListQuestions).Methods("GET")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(authMW.RequireAuth)
	protected.HandleFunc("/questions/{chapter}/{module}", questionHandler.ListModuleQuestions).Methods("GET")
	protected.HandleFunc("/quiz/score", pointsHandler.SubmitScore).Methods("POST")
	protected.HandleFunc("/user/progress", pointsHandler.GetProgress).Methods("GET")
	protected.HandleFunc("/user/referrals", pointsHandler.GetReferralStats).Methods("GET")
	protected.HandleFunc("/unlock/{chapter}/{module}", pointsHandler.UnlockModule).Methods("POST")

	// Auth routes
	authRoutes := r.PathPrefix("/auth").Subrouter()
	authRoutes.HandleFunc("/google", authHandler.Login).Methods("GET")
	authRoutes.HandleFunc("/google/callback", authHandler.Callback).Methods("GET")
	sessionRoutes := authRoutes.PathPrefix("").Subrouter()
	sessionRoutes.Use(authMW.OptionalAuth)
	sessionRoutes.HandleFunc("/user", authHandler.CurrentUser).Methods("GET")
	sessionRoutes.HandleFunc("/logout", authHandler.Logout).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", srv.Addr, "frontend", cfg.FrontendURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", "error", err)
		return
	}
	log.Info("server stopped")
}
