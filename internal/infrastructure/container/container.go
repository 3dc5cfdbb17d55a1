// Package container provides dependency injection for the application.
package container

import (
	"log/slog"

	"github.com/reglet-dev/machinist/internal/application/ports"
	"github.com/reglet-dev/machinist/internal/application/services"
	"github.com/reglet-dev/machinist/internal/infrastructure/config"
	"github.com/reglet-dev/machinist/internal/infrastructure/output"
	"github.com/reglet-dev/machinist/internal/infrastructure/persistence/memory"
)

// Container holds all application dependencies.
type Container struct {
	fixtureService   *services.FixtureService
	formatterFactory ports.FormatterFactory
	repository       *memory.RecordRepository
	logger           *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	loader, err := config.NewBlueprintLoader()
	if err != nil {
		return nil, err
	}
	repository := memory.NewRecordRepository()

	return &Container{
		fixtureService:   services.NewFixtureService(loader, repository, opts.Logger),
		formatterFactory: output.NewFormatterFactory(),
		repository:       repository,
		logger:           opts.Logger,
	}, nil
}

// FixtureService returns the fixture use cases.
func (c *Container) FixtureService() *services.FixtureService {
	return c.fixtureService
}

// FormatterFactory returns the output formatter factory.
func (c *Container) FormatterFactory() ports.FormatterFactory {
	return c.formatterFactory
}

// Repository returns the record store used by saved fixtures.
func (c *Container) Repository() *memory.RecordRepository {
	return c.repository
}

// Logger returns the application logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
