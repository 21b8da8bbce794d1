package schemaService

import (
	"errors"
	"fmt"
	"time"

	"BioVision/internal/annotator"
	"BioVision/internal/api/schema"
	"BioVision/internal/entity"
	contextPkg "BioVision/pkg/context"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *schemaService) ListSchemas(ctx context.Context) ([]entity.LandmarkSchema, error) {
	repo, err := s.schemaRepository.NewClient(false)
	if err != nil {
		return nil, err
	}

	custom, err := repo.Schema.ListSchemas(ctx)
	if err != nil {
		return nil, err
	}

	return append(schema.DefaultSchemas(), custom...), nil
}

func (s *schemaService) GetSchema(ctx context.Context, id string) (entity.LandmarkSchema, error) {
	if def, ok := schema.DefaultSchema(id); ok {
		return def, nil
	}

	repo, err := s.schemaRepository.NewClient(false)
	if err != nil {
		return entity.LandmarkSchema{}, err
	}
	return repo.Schema.GetSchemaByID(ctx, id)
}

func (s *schemaService) CreateSchema(ctx context.Context, req schema.CreateSchemaRequest) (entity.LandmarkSchema, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.schemaRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.LandmarkSchema{}, err
	}

	now := time.Now().UTC()
	created := entity.LandmarkSchema{
		ID:          fmt.Sprintf("%s%d", schema.CustomIDPrefix, now.UnixMilli()),
		Name:        req.Name,
		Description: req.Description,
		Landmarks:   schema.Definitions(req.Landmarks),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := repo.Schema.GetSchemaByID(ctx, created.ID); err == nil {
		return entity.LandmarkSchema{}, schema.ErrSchemaExists
	}

	if err := repo.Schema.CreateSchema(ctx, created); err != nil {
		return entity.LandmarkSchema{}, fmt.Errorf("%w: %v", schema.ErrSaveSchemaFailed, err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"schema_id":  created.ID,
		"operator":   contextPkg.GetOperator(ctx),
		"landmarks":  len(created.Landmarks),
	}).Info("Landmark schema created")

	return created, nil
}

func (s *schemaService) UpdateSchema(ctx context.Context, id string, req schema.UpdateSchemaRequest) (entity.LandmarkSchema, error) {
	if _, ok := schema.DefaultSchema(id); ok {
		return entity.LandmarkSchema{}, schema.ErrSchemaReadOnly
	}

	repo, err := s.schemaRepository.NewClient(true)
	if err != nil {
		return entity.LandmarkSchema{}, err
	}
	defer repo.Rollback()

	existing, err := repo.Schema.GetSchemaByID(ctx, id)
	if err != nil {
		return entity.LandmarkSchema{}, err
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Landmarks = schema.Definitions(req.Landmarks)
	existing.UpdatedAt = time.Now().UTC()

	if err := repo.Schema.UpdateSchema(ctx, existing); err != nil {
		return entity.LandmarkSchema{}, err
	}
	if err := repo.Commit(); err != nil {
		return entity.LandmarkSchema{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"schema_id":  id,
		"operator":   contextPkg.GetOperator(ctx),
	}).Info("Landmark schema updated")

	return existing, nil
}

func (s *schemaService) DeleteSchema(ctx context.Context, id string) error {
	if _, ok := schema.DefaultSchema(id); ok {
		return schema.ErrSchemaReadOnly
	}

	repo, err := s.schemaRepository.NewClient(false)
	if err != nil {
		return err
	}
	if err := repo.Schema.DeleteSchema(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"schema_id":  id,
		"operator":   contextPkg.GetOperator(ctx),
	}).Info("Landmark schema deleted")
	return nil
}

// Guide reports the next landmark to place in boxID, or in the selected
// box of the active image when boxID is nil.
func (s *schemaService) Guide(ctx context.Context, schemaID string, boxID *int64) (annotator.GuideStep, error) {
	ls, err := s.GetSchema(ctx, schemaID)
	if err != nil {
		return annotator.GuideStep{}, err
	}

	snap, err := s.workspace.ActiveSnapshot()
	if err != nil {
		if errors.Is(err, annotator.ErrNoActiveImage) {
			return annotator.GuideStep{}, schema.ErrNoActiveImage
		}
		return annotator.GuideStep{}, err
	}

	target := boxID
	if target == nil {
		target = snap.SelectedBoxID
	}
	if target == nil {
		return annotator.GuideStep{}, schema.ErrNoBoxSelected
	}

	for _, b := range snap.Boxes {
		if b.ID == *target {
			return annotator.PlacementGuide(ls, b), nil
		}
	}
	return annotator.GuideStep{}, schema.ErrBoxNotFound
}
