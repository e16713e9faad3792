package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "slidesage-backend/internal/auth"
	"slidesage-backend/internal/documents"
	"slidesage-backend/internal/extract"
	"slidesage-backend/internal/llm"
	"slidesage-backend/internal/llm/gemini"
	"slidesage-backend/internal/services/health"
	"slidesage-backend/internal/shared/auth"
	"slidesage-backend/internal/shared/config"
	"slidesage-backend/internal/shared/server"
	"slidesage-backend/internal/shared/storage/db"
	"slidesage-backend/internal/shared/storage/object"
	localstore "slidesage-backend/internal/shared/storage/object/local"
	s3store "slidesage-backend/internal/shared/storage/object/s3"
	"slidesage-backend/internal/shared/telemetry"
	"slidesage-backend/internal/users"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Archive          object.ObjectStore
	Issuer           *auth.Issuer
	DocumentsRepo    documents.Repo
	UsersRepo        users.Repo
	Summarizer       llm.Summarizer
	DocumentsService *documents.Service
	UsersService     *users.Service
	DocumentsHandler *documents.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
	Health           *health.Service

	closers []func() error
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = 10
	}
	ctx := context.Background()

	app := &App{Config: cfg}

	issuer, err := auth.NewIssuer(cfg.EffectiveJWTSecret(), cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	app.Issuer = issuer

	store, err := buildDocumentStore(ctx, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	archive, err := buildArchive(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Archive = archive

	summarizer, err := buildSummarizer(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Summarizer = summarizer

	app.DocumentsService = documents.NewService(app.DocumentsRepo, extract.NewPDFExtractor(), summarizer, archive)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService, cfg.MaxUploadBytes())

	app.UsersService = users.NewService(app.UsersRepo, issuer)
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		app.UsersService,
	)

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Health = health.NewService(pinger, store)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		Verifier:        issuer,
		DocumentHandler: app.DocumentsHandler,
		UserHandler:     app.UsersHandler,
		GoogleAuth:      app.GoogleAuth,
		Health:          app.Health,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":         cfg.Env,
		"store":       store,
		"archive":     cfg.TextArchive,
		"summarizer":  summarizerName(summarizer),
		"allowGuests": cfg.AllowGuests,
	})
	return app, nil
}

// Close releases resources opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// buildDocumentStore selects the document repo and returns its name.
func buildDocumentStore(ctx context.Context, app *App) (string, error) {
	cfg := app.Config
	store := cfg.DocumentStore
	if store == "" {
		store = "memory"
		if strings.TrimSpace(cfg.DatabaseURL) != "" {
			store = "postgres"
		}
	}

	switch store {
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return "", err
		}
		if sqlDB == nil {
			store = "memory"
			break
		}
		app.DB = sqlDB
		if !db.IsLambdaRuntime() {
			app.closers = append(app.closers, sqlDB.Close)
		}
		app.DocumentsRepo = &documents.PGRepo{DB: sqlDB}
		app.UsersRepo = &users.PGRepo{DB: sqlDB}
		return store, nil
	case "bolt":
		repo, err := documents.OpenBoltRepo(cfg.BoltPath)
		if err != nil {
			return "", fmt.Errorf("open bolt store: %w", err)
		}
		app.closers = append(app.closers, repo.Close)
		app.DocumentsRepo = repo
		app.UsersRepo = users.NewMemoryRepo()
		return store, nil
	}

	app.DocumentsRepo = documents.NewMemoryRepo()
	app.UsersRepo = users.NewMemoryRepo()
	return store, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_url_empty", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database_connect_failed", map[string]any{"fallback": "memory", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.migrations_failed", map[string]any{"fallback": "memory", "error": err})
			_ = sqlDB.Close()
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildArchive(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.TextArchive {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "local":
		return localstore.New(cfg.LocalStoreDir), nil
	default:
		return nil, nil
	}
}

func buildSummarizer(cfg config.Config) (llm.Summarizer, error) {
	if strings.TrimSpace(cfg.Summarizer.APIKey) == "" {
		return llm.PlaceholderClient{}, nil
	}
	return gemini.NewClient(gemini.Options{
		APIKey:     cfg.Summarizer.APIKey,
		Model:      cfg.Summarizer.Model,
		BaseURL:    cfg.Summarizer.BaseURL,
		Timeout:    cfg.Summarizer.Timeout,
		KeyInQuery: cfg.Summarizer.KeyInQuery,
	})
}

func summarizerName(s llm.Summarizer) string {
	if _, ok := s.(*gemini.Client); ok {
		return "gemini"
	}
	return "placeholder"
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
