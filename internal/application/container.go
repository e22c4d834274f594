// Package application provides application-level services and dependency injection.
package application

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbctechsolutions/markkeep/internal/adapters/connectivity"
	"github.com/jbctechsolutions/markkeep/internal/adapters/storage/sqlite"
	"github.com/jbctechsolutions/markkeep/internal/adapters/transport"
	"github.com/jbctechsolutions/markkeep/internal/application/bookmarks"
	"github.com/jbctechsolutions/markkeep/internal/application/ledger"
	"github.com/jbctechsolutions/markkeep/internal/application/ports"
	appSync "github.com/jbctechsolutions/markkeep/internal/application/sync"
	domainSync "github.com/jbctechsolutions/markkeep/internal/domain/sync"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/config"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/importer"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/logging"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/storage"
	"github.com/jbctechsolutions/markkeep/internal/infrastructure/tracing"
)

// Container holds all application dependencies and provides a central
// point for dependency injection. It manages the lifecycle of services
// and ensures proper initialization order.
type Container struct {
	// Configuration
	config  *config.Config
	verbose bool // Override log level to debug when true

	// Database connection
	dbConn *sqlite.Connection
	db     *sql.DB

	// Repositories
	bookmarkRepo ports.BookmarkStoragePort
	stateRepo    ports.StateStorePort
	syncLogRepo  ports.SyncHistoryPort

	// Adapters
	prober    *connectivity.Prober
	transport ports.TransportPort

	// Application services
	syncState   *domainSync.State
	ledger      *ledger.Ledger
	coordinator *appSync.Coordinator
	bookmarkSvc *bookmarks.Service

	// Import pipeline
	importLoader *importer.Loader

	// Observability
	logger *logging.Logger
	tracer *tracing.Tracer
}

// NewContainer creates a new dependency injection container with all services
// initialized based on the provided configuration.
func NewContainer(cfg *config.Config, verbose bool) (*Container, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}

	c := &Container{
		config:  cfg,
		verbose: verbose,
	}

	// Initialize observability first so everything downstream logs through it
	if err := c.initObservability(); err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	// Initialize database connection
	if err := c.initDatabase(); err != nil {
		_ = c.Close() // Clean up on error
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize repositories
	c.initRepositories()

	// Initialize connectivity and transport adapters
	c.initAdapters()

	// Initialize application services
	c.initServices()

	return c, nil
}

// initObservability initializes the logger and the tracer.
func (c *Container) initObservability() error {
	ctx := context.Background()

	logLevel := logging.LevelInfo
	switch c.config.Logging.Level {
	case "debug":
		logLevel = logging.LevelDebug
	case "info":
		logLevel = logging.LevelInfo
	case "warn":
		logLevel = logging.LevelWarn
	case "error":
		logLevel = logging.LevelError
	}

	// Verbose flag overrides the configured level
	if c.verbose {
		logLevel = logging.LevelDebug
	}

	logFormat := logging.FormatText
	if c.config.Logging.Format == "json" {
		logFormat = logging.FormatJSON
	}

	c.logger = logging.Init(logging.Config{
		Level:  logLevel,
		Format: logFormat,
	})

	if c.config.Tracing.Enabled {
		tracer, err := tracing.New(ctx, tracing.Config{
			Enabled:      true,
			ExporterType: tracing.ExporterType(c.config.Tracing.ExporterType),
			OTLPEndpoint: c.config.Tracing.OTLPEndpoint,
			ServiceName:  c.config.Tracing.ServiceName,
			Environment:  "production",
			SampleRate:   c.config.Tracing.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("failed to create tracer: %w", err)
		}
		c.tracer = tracer
	} else {
		// No-op tracer
		c.tracer = tracing.Default()
	}

	return nil
}

// initDatabase opens the SQLite database connection and runs migrations.
func (c *Container) initDatabase() error {
	conn, err := sqlite.NewConnection(c.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	if err := conn.Open(); err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db, err := conn.DB()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to get database handle: %w", err)
	}

	c.dbConn = conn
	c.db = db
	return nil
}

// initRepositories initializes all storage repositories.
func (c *Container) initRepositories() {
	c.bookmarkRepo = storage.NewBookmarkRepository(c.db)
	c.stateRepo = storage.NewStateRepository(c.db)
	c.syncLogRepo = storage.NewSyncLogRepository(c.db)
}

// initAdapters wires the connectivity prober and the sync transport.
func (c *Container) initAdapters() {
	c.prober = connectivity.NewProber(
		c.config.Connectivity.Endpoints,
		c.config.Connectivity.ProbeTimeout,
		c.config.Connectivity.CacheTTL,
	)
	c.prober.ForceOffline(c.config.Connectivity.ForceOffline)

	c.transport = transport.NewNoop(c.logger)
}

// initServices builds the change ledger, the sync coordinator, and the
// bookmark service. The ledger and the coordinator share one sync state, so
// the single-flight guard and the overflow buffer stay coupled.
func (c *Container) initServices() {
	c.syncState = &domainSync.State{}
	c.ledger = ledger.New(c.stateRepo, c.syncState, c.logger)

	c.coordinator = appSync.NewCoordinator(appSync.Config{
		Store:        c.stateRepo,
		Bookmarks:    c.bookmarkRepo,
		Connectivity: c.prober,
		Transport:    c.transport,
		History:      c.syncLogRepo,
		Ledger:       c.ledger,
		State:        c.syncState,
		Logger:       c.logger,
		Tracer:       c.tracer,
		BatchSize:    c.config.Sync.BatchSize,
	})

	c.bookmarkSvc = bookmarks.NewService(c.bookmarkRepo, c.ledger, c.logger)
	c.importLoader = importer.NewLoader()
}

// Close releases all resources held by the container.
func (c *Container) Close() error {
	ctx := context.Background()

	if c.tracer != nil {
		_ = c.tracer.Shutdown(ctx)
	}

	if c.dbConn != nil {
		return c.dbConn.Close()
	}
	return nil
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// DB returns the database handle.
func (c *Container) DB() *sql.DB {
	return c.db
}

// BookmarkRepository returns the bookmark repository.
func (c *Container) BookmarkRepository() ports.BookmarkStoragePort {
	return c.bookmarkRepo
}

// StateRepository returns the key-value state repository.
func (c *Container) StateRepository() ports.StateStorePort {
	return c.stateRepo
}

// SyncHistory returns the sync pass log repository.
func (c *Container) SyncHistory() ports.SyncHistoryPort {
	return c.syncLogRepo
}

// Prober returns the connectivity prober.
func (c *Container) Prober() *connectivity.Prober {
	return c.prober
}

// Transport returns the sync transport.
func (c *Container) Transport() ports.TransportPort {
	return c.transport
}

// Ledger returns the change ledger.
func (c *Container) Ledger() *ledger.Ledger {
	return c.ledger
}

// SyncCoordinator returns the sync coordinator.
func (c *Container) SyncCoordinator() *appSync.Coordinator {
	return c.coordinator
}

// BookmarkService returns the bookmark service.
func (c *Container) BookmarkService() *bookmarks.Service {
	return c.bookmarkSvc
}

// ImportLoader returns the export-file loader.
func (c *Container) ImportLoader() *importer.Loader {
	return c.importLoader
}

// NewImportWatcher creates a drop-directory watcher configured from the
// import settings.
func (c *Container) NewImportWatcher() (*importer.Watcher, error) {
	return importer.NewWatcher(importer.WatcherConfig{
		DebounceDuration: c.config.Import.DebounceDelay,
	})
}

// Logger returns the structured logger.
func (c *Container) Logger() *logging.Logger {
	return c.logger
}

// Tracer returns the OpenTelemetry tracer.
func (c *Container) Tracer() *tracing.Tracer {
	return c.tracer
}
