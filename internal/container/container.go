// Package container provides dependency injection for the budget tracker.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"
	"time"

	"fjacquet/budget-tracker/internal/catalog"
	"fjacquet/budget-tracker/internal/config"
	"fjacquet/budget-tracker/internal/importer"
	"fjacquet/budget-tracker/internal/logging"
	"fjacquet/budget-tracker/internal/profile"
	"fjacquet/budget-tracker/internal/store"
	"fjacquet/budget-tracker/internal/store/rest"
	"fjacquet/budget-tracker/internal/store/sqlite"
	"fjacquet/budget-tracker/internal/tracker"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	catalog  *catalog.Catalog
	store    store.Store
	profiles *profile.Repository
	tracker  *tracker.Tracker
}

// NewContainer creates and wires all application dependencies, opening the
// store backend selected by cfg.Store.Backend.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger := config.ConfigureLoggingFromConfig(cfg)

	st, err := openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	return build(cfg, logger, st), nil
}

// NewContainerWithStore wires the application around an existing store.
// It is used by tests and by callers that manage the store themselves.
func NewContainerWithStore(cfg *config.Config, st store.Store, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if logger == nil {
		logger = config.ConfigureLoggingFromConfig(cfg)
	}
	return build(cfg, logger, st), nil
}

func openStore(cfg *config.Config, logger logging.Logger) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		st, err := sqlite.Open(cfg.Store.SQLite.Path, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return st, nil
	case config.BackendREST:
		timeout := time.Duration(cfg.Store.REST.TimeoutSeconds) * time.Second
		client, err := rest.NewClient(cfg.Store.REST.BaseURL, cfg.Store.REST.Token, timeout, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create API client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

func build(cfg *config.Config, logger logging.Logger, st store.Store) *Container {
	cat := catalog.Default()

	// Only the API backend holds a remote profile copy.
	var remote profile.RemoteStore
	if r, ok := st.(profile.RemoteStore); ok {
		remote = r
	}
	profiles := profile.NewRepository(profile.NewFileStore(cfg.Profile.File), remote, logger)

	logger.WithFields(
		logging.F(logging.FieldBackend, cfg.Store.Backend),
		logging.F(logging.FieldCount, cat.Len()),
	).Debug("Container initialized successfully")

	return &Container{
		logger:   logger,
		config:   cfg,
		catalog:  cat,
		store:    st,
		profiles: profiles,
		tracker:  tracker.New(st, cat, logger),
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetCatalog returns the category catalog.
func (c *Container) GetCatalog() *catalog.Catalog {
	return c.catalog
}

// GetStore returns the persistence backend.
func (c *Container) GetStore() store.Store {
	return c.store
}

// GetProfiles returns the onboarding profile repository.
func (c *Container) GetProfiles() *profile.Repository {
	return c.profiles
}

// GetTracker returns the shared expense and budget view.
func (c *Container) GetTracker() *tracker.Tracker {
	return c.tracker
}

// NewImportPipeline returns an import pipeline configured from the import
// settings. onProgress may be nil.
func (c *Container) NewImportPipeline(onProgress func(importer.Progress)) *importer.Pipeline {
	return importer.NewPipeline(c.store, c.catalog, c.logger, importer.Options{
		MaxAttempts: c.config.Import.MaxAttempts,
		Delimiter:   c.config.Delimiter(),
		OnProgress:  onProgress,
	})
}

// Close releases the store.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
