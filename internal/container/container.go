package container

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"goancova/adapters/excel"
	"goancova/adapters/memory"
	"goancova/adapters/postgres"
	"goancova/app"
	"goancova/domain/dataset"
	"goancova/internal/config"
	"goancova/internal/errors"
	"goancova/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Data
	Store *dataset.Store

	// Repositories (data access layer)
	ResultRepo ports.ResultRepository

	// Services
	Analysis *app.AnalysisService
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
	}

	return c, nil
}

// Init loads the dataset, opens persistence and builds the services
func (c *Container) Init(ctx context.Context) error {
	if err := c.initData(); err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	if err := c.initRepositories(ctx); err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	c.Analysis = app.NewAnalysisService(
		c.Store,
		filepath.Base(c.Config.Data.File),
		c.ResultRepo,
		c.Config.Analysis.Alpha,
		c.Config.Analysis.MaxParallel,
	)

	log.Printf("Container initialized with %d columns from %s", c.Store.Len(), c.Config.Data.File)
	return nil
}

// initData reads the configured data file into the column store
func (c *Container) initData() error {
	if c.Config.Data.File == "" {
		return errors.ConfigInvalid("DATA_FILE is required")
	}

	reader := excel.NewDataReader(c.Config.Data.File, excel.Options{
		Sheet:           c.Config.Data.Sheet,
		ZeroOneAsBinary: c.Config.Data.ZeroOneAsBinary,
	})
	store, err := reader.ReadStore()
	if err != nil {
		return err
	}
	c.Store = store
	return nil
}

// initRepositories picks postgres when DATABASE_URL is set and an in-memory
// repository otherwise
func (c *Container) initRepositories(ctx context.Context) error {
	if !c.Config.PersistenceEnabled() {
		log.Printf("No DATABASE_URL configured, results are kept in memory")
		c.ResultRepo = memory.NewResultRepository()
		return nil
	}

	db, err := postgres.Connect(ctx, c.Config.Database.URL, c.Config.Database.MaxOpenConns)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	return c.attachDatabase(ctx, db)
}

// attachDatabase migrates db and takes ownership of it. db is closed when
// the schema cannot be brought up to date.
func (c *Container) attachDatabase(ctx context.Context, db *sqlx.DB) error {
	repo := postgres.NewResultRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Printf("Failed to close database after migration error: %v", closeErr)
		}
		return err
	}
	c.DB = db
	c.ResultRepo = repo
	log.Printf("Result persistence enabled (postgres)")
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
