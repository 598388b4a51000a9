package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ckaratas/cebibak/internal/advisor"
	"github.com/ckaratas/cebibak/internal/api/handlers"
	"github.com/ckaratas/cebibak/internal/api/middleware"
	"github.com/ckaratas/cebibak/internal/config"
	"github.com/ckaratas/cebibak/internal/domain"
	"github.com/ckaratas/cebibak/internal/ledger"
	"github.com/ckaratas/cebibak/internal/logger"
	"github.com/ckaratas/cebibak/internal/notify"
	"github.com/ckaratas/cebibak/internal/store"
	"github.com/ckaratas/cebibak/internal/store/memory"
)

func main() {
	var (
		port    = flag.String("port", "", "HTTP server port (overrides PORT env)")
		backend = flag.String("store", "", "persistence backend: firestore or memory (overrides STORE_BACKEND env)")
	)
	flag.Parse()

	log := logger.New("api")

	cfg := config.Load()
	if *port != "" {
		cfg.Port = *port
	}
	if *backend != "" {
		cfg.StoreBackend = *backend
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	st, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open transaction store")
	}
	defer closeStore()

	hub := notify.NewHub()
	hub.Register(&notify.LogObserver{Log: log})

	factory := domain.NewFactory(log)
	l := ledger.New(st, hub, factory, log)
	l.SetMonthlyLimit(cfg.MonthlyLimit)

	// Warm the ledger from the store. A failure here is not fatal; the
	// service starts empty and a later reload can recover.
	if err := l.Reload(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial load failed, starting with an empty ledger")
	} else {
		log.Info().
			Int("transactions", l.TransactionCount()).
			Float64("balance", l.Balance()).
			Msg("Ledger loaded")
	}

	adv := advisor.New(cfg.GeminiModel, cfg.GeminiAPIKey, log)
	if cfg.GeminiAPIKey == "" {
		log.Warn().Msg("No Gemini API key configured - advice falls back to the built-in heuristic")
	}

	// Initialize handlers
	transactionsHandler := handlers.NewTransactionsHandler(factory, l, st, log)
	dashboardHandler := handlers.NewDashboardHandler(st, log)
	budgetHandler := handlers.NewBudgetHandler(l, hub, log)
	adviceHandler := handlers.NewAdviceHandler(adv, st, log)
	healthHandler := handlers.NewHealthHandler(st, log)

	// Create router
	mux := http.NewServeMux()

	mux.HandleFunc("/api/transactions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			transactionsHandler.Create(w, r)
		case http.MethodGet:
			transactionsHandler.List(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/transactions/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
		if id == "" {
			middleware.WriteError(w, http.StatusBadRequest, "Transaction ID is required")
			return
		}
		transactionsHandler.Delete(w, r, id)
	})

	mux.HandleFunc("/api/dashboard", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			dashboardHandler.Summary(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budget/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			budgetHandler.Status(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budget/limit", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			budgetHandler.SetLimit(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budget/reload", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			budgetHandler.Reload(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budget/persist", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			budgetHandler.Persist(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/budget/notify", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			budgetHandler.Notify(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/api/advice", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			adviceHandler.Advice(w, r)
		case http.MethodPost:
			adviceHandler.Chat(w, r)
		default:
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthHandler.Check(w, r)
	})

	// Apply middleware
	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(mux),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreBackend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// openStore builds the configured persistence backend. The returned close
// function is a no-op for the in-memory store.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.TransactionStore, func(), error) {
	if cfg.StoreBackend == "memory" {
		log.Warn().Msg("Using in-memory store - data is lost on restart")
		return memory.NewStore(), func() {}, nil
	}

	fs, err := store.NewFirestoreStore(ctx, cfg.GCPProjectID, cfg.Collection)
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {
		if err := fs.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Firestore client")
		}
	}, nil
}
