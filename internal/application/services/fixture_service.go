// Package services contains application use cases.
package services

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/reglet-dev/machinist"
	"github.com/reglet-dev/machinist/internal/application/dto"
	apperrors "github.com/reglet-dev/machinist/internal/application/errors"
	"github.com/reglet-dev/machinist/internal/application/ports"
	"github.com/reglet-dev/machinist/internal/domain/repositories"
	"github.com/reglet-dev/machinist/internal/infrastructure/config"
)

// maxConcurrentLoads bounds how many documents are read at once.
const maxConcurrentLoads = 8

// FixtureService builds fixtures from blueprint documents.
// This is a pure application layer component that depends only on ports.
type FixtureService struct {
	loader     ports.DocumentLoader
	repository repositories.RecordRepository
	logger     *slog.Logger
}

// NewFixtureService creates a new fixture service. repository may be nil,
// in which case fixtures cannot be saved.
func NewFixtureService(
	loader ports.DocumentLoader,
	repository repositories.RecordRepository,
	logger *slog.Logger,
) *FixtureService {
	if logger == nil {
		logger = slog.Default()
	}

	return &FixtureService{
		loader:     loader,
		repository: repository,
		logger:     logger,
	}
}

// Make loads the requested documents and builds fixtures from them.
func (s *FixtureService) Make(ctx context.Context, req dto.MakeRequest) (*dto.MakeResponse, error) {
	if err := validateMakeRequest(req); err != nil {
		return nil, err
	}

	catalog, err := s.loadCatalog(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	blueprint := req.Blueprint
	if blueprint == "" {
		blueprint = string(machinist.Master)
	}
	args := []any{machinist.Name(blueprint)}
	if len(req.Overrides) > 0 {
		args = append(args, machinist.Attrs(req.Overrides))
	}

	count := req.Count
	s.logger.Debug("building fixtures",
		"model", req.Model,
		"blueprint", blueprint,
		"count", count,
		"save", req.Save)

	var records []*machinist.Record
	if req.Save {
		records, err = catalog.MakeSavedN(ctx, req.Model, count, args...)
	} else {
		records, err = catalog.MakeN(req.Model, count, args...)
	}
	if err != nil {
		return nil, apperrors.NewBuildError(req.Model, blueprint, err)
	}

	resp := &dto.MakeResponse{Records: make([]map[string]any, 0, len(records))}
	for _, r := range records {
		resp.Records = append(resp.Records, r.Snapshot())
	}
	if req.Save {
		resp.Saved = len(records)
	}

	s.logger.Info("built fixtures", "model", req.Model, "count", len(records), "saved", resp.Saved)
	return resp, nil
}

// List loads the requested documents and describes their models.
func (s *FixtureService) List(ctx context.Context, req dto.ListRequest) (*dto.ListResponse, error) {
	if len(req.Documents) == 0 {
		return nil, apperrors.NewValidationError("documents", "at least one blueprint document is required")
	}

	catalog, err := s.loadCatalog(ctx, req.Documents)
	if err != nil {
		return nil, err
	}

	resp := &dto.ListResponse{}
	for _, model := range catalog.Models() {
		blueprints, err := catalog.Blueprints(model)
		if err != nil {
			return nil, err
		}
		resp.Models = append(resp.Models, dto.ModelInfo{
			Name:       model,
			Extends:    catalog.Extends(model),
			Blueprints: blueprints,
		})
	}
	return resp, nil
}

// loadCatalog reads documents concurrently and registers them in order.
func (s *FixtureService) loadCatalog(ctx context.Context, paths []string) (*machinist.Catalog, error) {
	docs := make([]*config.Document, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			s.logger.Debug("loading blueprint document", "path", path)
			doc, err := s.loader.LoadDocument(path)
			if err != nil {
				return apperrors.NewConfigurationError("document", "failed to load "+path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var opts []machinist.CatalogOption
	if s.repository != nil {
		opts = append(opts, machinist.WithPersister(s.repository))
	}
	catalog := machinist.NewCatalog(opts...)

	if err := s.loader.Register(catalog, docs...); err != nil {
		return nil, apperrors.NewConfigurationError("document", "failed to register blueprints", err)
	}
	return catalog, nil
}

func validateMakeRequest(req dto.MakeRequest) error {
	if len(req.Documents) == 0 {
		return apperrors.NewValidationError("documents", "at least one blueprint document is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return apperrors.NewValidationError("model", "model name is required")
	}
	if req.Count < 1 {
		return apperrors.NewValidationError("count", "count must be at least 1")
	}
	return nil
}
