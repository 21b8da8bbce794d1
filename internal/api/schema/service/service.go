package schemaService

import (
	"BioVision/internal/annotator"
	"BioVision/internal/api/schema"
	schemaRepository "BioVision/internal/api/schema/repository"
	"BioVision/internal/entity"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ISchemaService interface {
	ListSchemas(ctx context.Context) ([]entity.LandmarkSchema, error)
	GetSchema(ctx context.Context, id string) (entity.LandmarkSchema, error)
	CreateSchema(ctx context.Context, req schema.CreateSchemaRequest) (entity.LandmarkSchema, error)
	UpdateSchema(ctx context.Context, id string, req schema.UpdateSchemaRequest) (entity.LandmarkSchema, error)
	DeleteSchema(ctx context.Context, id string) error
	Guide(ctx context.Context, schemaID string, boxID *int64) (annotator.GuideStep, error)
}

type schemaService struct {
	log              *logrus.Logger
	schemaRepository schemaRepository.Repository
	workspace        *annotator.Workspace
}

func NewSchemaService(log *logrus.Logger, sr schemaRepository.Repository, ws *annotator.Workspace) ISchemaService {
	return &schemaService{
		log:              log,
		schemaRepository: sr,
		workspace:        ws,
	}
}
