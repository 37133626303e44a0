package main

import (
	"context"
	"database/sql"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	gsessions "github.com/gin-contrib/sessions/postgres"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx, for the session store
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"learnassess/internal/api"
	"learnassess/internal/api/handlers"
	"learnassess/internal/assessment"
	"learnassess/internal/config"
	"learnassess/internal/db"
	"learnassess/internal/documents"
	"learnassess/internal/gemini"
	"learnassess/internal/index"
	"learnassess/internal/ingest"
	"learnassess/internal/llm"
	"learnassess/internal/logger"
	"learnassess/internal/mcq"
	"learnassess/internal/notify"
	"learnassess/internal/r2"
	"learnassess/internal/session"
	"learnassess/internal/youtube"
)

const storeName = "learnassess_session"

func main() {
	// A missing .env is fine; the environment may already be set.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		stdlog.Fatalf("FATAL: Failed to initialize logger: %v", err)
	}
	defer log.Sync()

	if envErr != nil && !os.IsNotExist(envErr) {
		log.Fatal("error loading .env file", zap.Error(envErr))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	geminiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:         cfg.Gemini.APIKey,
		Model:          cfg.Gemini.Model,
		EmbeddingModel: cfg.Gemini.EmbeddingModel,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize Gemini client", zap.Error(err))
	}
	defer geminiClient.Close()

	var generator index.Generator = geminiClient
	if cfg.LLM.Provider == config.ProviderGroq {
		groq, err := llm.NewGroq(llm.GroqConfig{APIKey: cfg.Groq.APIKey, Model: cfg.Groq.Model, BaseURL: cfg.Groq.BaseURL}, log)
		if err != nil {
			log.Fatal("failed to initialize Groq client", zap.Error(err))
		}
		generator = groq
	}

	results, closeResults := openResults(ctx, cfg, log)
	defer closeResults()

	r2Client, err := r2.NewClient(ctx, cfg.R2, log)
	if err != nil {
		log.Fatal("failed to initialize R2 client", zap.Error(err))
	}
	var archiver ingest.Archiver
	if r2Client != nil {
		archiver = r2Client
	}

	discord := notify.NewDiscord(cfg.Discord.WebhookURL, log)
	defer discord.Wait()

	split := mcq.SplitAfterMarker
	if cfg.MCQ.Split == config.SplitFirstDot {
		split = mcq.SplitAtFirstDot
	}

	ingestor := ingest.New(
		documents.NewExtractor(geminiClient),
		youtube.New(&http.Client{Timeout: 30 * time.Second}, log),
		archiver,
		geminiClient,
		ingest.Settings{
			ChunkSize:    cfg.Retrieval.ChunkSize,
			ChunkOverlap: cfg.Retrieval.ChunkOverlap,
			Dimension:    gemini.EmbeddingDimension,
			Lang:         cfg.YouTube.Lang,
		},
		log,
	)

	sessionsStore := session.NewStore[*handlers.Workspace]()
	go sweepSessions(ctx, sessionsStore, cfg.Session.MaxIdle, log)

	handler := &handlers.Handler{
		Sessions: sessionsStore,
		Ingestor: ingestor,
		Assessor: assessment.NewService(split, log),
		NewEngine: func(idx *index.Flat) assessment.Querier {
			return index.NewEngine(idx, geminiClient, generator, cfg.Retrieval.TopK, log)
		},
		Results:        results,
		Notifier:       discord,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		Logger:         log,
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log))

	store, closeStore := sessionStore(cfg, log)
	defer closeStore()
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxIdle / time.Second),
		Secure:   cfg.Env == "production",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(storeName, store))

	api.SetupRoutes(router, handler, cfg.FrontendURL, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("llm", cfg.LLM.Provider))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give server 5 seconds to shut down gracefully
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	log.Info("server exited properly")
}

// openResults connects the configured result store.
func openResults(ctx context.Context, cfg *config.Config, log *zap.Logger) (db.ResultStore, func()) {
	dsn, err := cfg.DB.DSN()
	if err != nil {
		log.Fatal("invalid database configuration", zap.Error(err))
	}
	switch cfg.DB.Driver {
	case config.DriverPostgres:
		database, err := db.NewDB(ctx, dsn)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		log.Info("result history stored in postgres")
		return db.NewPostgresStore(database), database.Close
	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, dsn)
		if err != nil {
			log.Fatal("failed to open sqlite database", zap.Error(err))
		}
		log.Info("result history stored in sqlite")
		return db.NewSQLStore(conn), func() { conn.Close() }
	}
	log.Warn("no database configured, result history disabled")
	return db.Disabled{}, func() {}
}

// sessionStore keeps cookie sessions in Postgres when it is configured and
// in signed cookies otherwise.
func sessionStore(cfg *config.Config, log *zap.Logger) (sessions.Store, func()) {
	secret := []byte(cfg.SessionSecret)
	if cfg.DB.Driver != config.DriverPostgres {
		return cookie.NewStore(secret), func() {}
	}

	sessionDB, err := sql.Open("pgx", cfg.DB.URL)
	if err != nil {
		log.Fatal("failed to open database connection for session store", zap.Error(err))
	}
	if err := sessionDB.Ping(); err != nil {
		log.Fatal("failed to ping database for session store", zap.Error(err))
	}
	store, err := gsessions.NewStore(sessionDB, secret)
	if err != nil {
		log.Fatal("failed to create postgres session store", zap.Error(err))
	}
	return store, func() { sessionDB.Close() }
}

func sweepSessions(ctx context.Context, store *session.Store[*handlers.Workspace], maxIdle time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(maxIdle / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(maxIdle); n > 0 {
				log.Info("dropped idle sessions", zap.Int("count", n), zap.Int("live", store.Len()))
			}
		}
	}
}
