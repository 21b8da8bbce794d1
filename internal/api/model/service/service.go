package modelService

import (
	"sync"

	"BioVision/internal/api/label"
	"BioVision/internal/api/model"
	modelRepository "BioVision/internal/api/model/repository"
	"BioVision/internal/entity"
	websocketPkg "BioVision/pkg/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IModelService interface {
	Train(ctx context.Context, req model.TrainRequest) (entity.TrainResult, error)
	Test(ctx context.Context, name string) (model.TestResult, error)
	ListModels(ctx context.Context) ([]entity.TrainedModel, error)
	GetModel(ctx context.Context, name string) (entity.TrainedModel, error)
	RenameModel(ctx context.Context, oldName, newName string) error
	DeleteModel(ctx context.Context, name string) error
}

// LabelSaver writes the working set to the dataset before training.
type LabelSaver interface {
	SaveAll(ctx context.Context) (label.SaveResult, error)
}

type modelService struct {
	log             *logrus.Logger
	modelRepository modelRepository.Repository
	bridge          websocketPkg.IBridge
	labels          LabelSaver

	training sync.Mutex
}

func NewModelService(log *logrus.Logger, mr modelRepository.Repository, bridge websocketPkg.IBridge, labels LabelSaver) IModelService {
	return &modelService{
		log:             log,
		modelRepository: mr,
		bridge:          bridge,
		labels:          labels,
	}
}
