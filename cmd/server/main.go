package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/dealcost/internal/config"
	"github.com/Simplici0/dealcost/internal/db"
	"github.com/Simplici0/dealcost/internal/logging"
	"github.com/Simplici0/dealcost/internal/migrations"
	"github.com/Simplici0/dealcost/internal/seed"
	"github.com/Simplici0/dealcost/internal/store"
)

type server struct {
	store    *store.Store
	logger   *zap.Logger
	currency string
	now      func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

func main() {
	cfg := config.Load()

	logger, closeLog, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      "stderr",
		Development: cfg.IsDev(),
	})
	if err != nil {
		panic(err)
	}
	defer closeLog()

	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if err := migrations.Up(ctx, database, logger); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	pricingStore := store.New(database)
	stats, err := seed.Run(ctx, pricingStore, seed.Config{PricingFile: cfg.PricingFile})
	if err != nil {
		logger.Fatal("failed to seed pricing config", zap.Error(err))
	}
	logger.Info("pricing config ready", zap.Int("inserts", stats.Inserts))

	srv := &server{
		store:    pricingStore,
		logger:   logger,
		currency: cfg.Currency,
		now:      time.Now,
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", httpServer.Addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/pricing", s.handlePricingConfig)
		r.Post("/deals/calculate", s.handleDealCalculate)
		r.Post("/settlements/calculate", s.handleSettlementCalculate)
	})
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePricingConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load(r.Context())
	if err != nil {
		s.logger.Error("load pricing config", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to load pricing config")
		return
	}
	respondJSON(w, http.StatusOK, doc)
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}
