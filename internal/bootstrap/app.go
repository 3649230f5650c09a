package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/extract"
	"docvault-backend/internal/intake"
	"docvault-backend/internal/organizations"
	"docvault-backend/internal/queue"
	"docvault-backend/internal/services/health"
	"docvault-backend/internal/shared/config"
	"docvault-backend/internal/shared/server"
	"docvault-backend/internal/shared/storage/db"
	"docvault-backend/internal/shared/storage/object"
	localstore "docvault-backend/internal/shared/storage/object/local"
	memorystore "docvault-backend/internal/shared/storage/object/memory"
	s3store "docvault-backend/internal/shared/storage/object/s3"
	"docvault-backend/internal/tagging"
	"docvault-backend/internal/tracking"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	OrganizationsRepo organizations.Repo
	DocumentsRepo     documents.Repo
	TaggingRepo       tagging.Repo
	IntakeRepo        intake.Repo

	OrganizationsService *organizations.Service
	DocumentsService     *documents.Service
	TaggingService       *tagging.Service
	IntakeService        *intake.Service
	IntakeRouter         *intake.Router
	Reaper               *documents.Reaper

	OrganizationsHandler *organizations.Handler
	DocumentsHandler     *documents.Handler
	TaggingHandler       *tagging.Handler
	IntakeHandler        *intake.Handler
}

// Build prepares shared dependencies and wires the HTTP router.
func Build(cfg config.Config) (*App, error) {
	return build(cfg, db.DefaultServerOptions())
}

// BuildWorker is Build with the smaller connection pool background workers
// use.
func BuildWorker(cfg config.Config) (*App, error) {
	return build(cfg, db.DefaultWorkerOptions())
}

func build(cfg config.Config, dbOpts db.Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg, dbOpts)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:               app.Config,
		Health:               health.NewService(app.DB),
		OrganizationsHandler: app.OrganizationsHandler,
		DocumentsHandler:     app.DocumentsHandler,
		TaggingHandler:       app.TaggingHandler,
		IntakeHandler:        app.IntakeHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config, dbOpts db.Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(dbOpts))
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "memory":
		return memorystore.New(), nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.IntakeQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) {
	if app.DB != nil {
		app.OrganizationsRepo = &organizations.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.TaggingRepo = &tagging.PGRepo{DB: app.DB}
		app.IntakeRepo = &intake.PGRepo{DB: app.DB}
	} else {
		app.OrganizationsRepo = organizations.NewMemoryRepo()
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.TaggingRepo = tagging.NewMemoryRepo()
		app.IntakeRepo = intake.NewMemoryRepo()
	}

	app.OrganizationsService = &organizations.Service{
		Repo:  app.OrganizationsRepo,
		Usage: app.DocumentsRepo,
	}
	app.TaggingService = &tagging.Service{Repo: app.TaggingRepo}
	app.DocumentsService = &documents.Service{
		Repo:     app.DocumentsRepo,
		Store:    app.Store,
		Capacity: app.OrganizationsService,
		Tags:     app.TaggingService,
		Tracking: tracking.LogSink{},
		Extract:  extract.ExtractText,
	}
	app.IntakeService = &intake.Service{
		Repo:   app.IntakeRepo,
		Limits: app.OrganizationsService,
		Domain: app.Config.IntakeEmailDomain,
	}
	app.IntakeRouter = &intake.Router{
		Repo: app.IntakeRepo,
		Docs: app.DocumentsService,
	}
	app.Reaper = &documents.Reaper{
		Svc:           app.DocumentsService,
		RetentionDays: app.Config.TrashRetentionDays,
	}

	app.OrganizationsHandler = organizations.NewHandler(app.OrganizationsService)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	app.TaggingHandler = tagging.NewHandler(app.TaggingService)
	app.IntakeHandler = intake.NewHandler(app.IntakeService, app.IntakeRouter)
	if app.Queue != nil {
		app.IntakeHandler.Enqueue = &queue.Enqueuer{Client: app.Queue}
	}
}
