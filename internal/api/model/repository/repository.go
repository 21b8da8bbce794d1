package modelRepository

import (
	"os"

	"BioVision/internal/entity"
	"github.com/sirupsen/logrus"
)

const (
	filePrefix = "predictor_"
	fileSuffix = ".dat"
)

// Repository stores trained predictors as predictor_{tag}.dat files.
type Repository interface {
	ListModels() ([]entity.TrainedModel, error)
	GetModel(name string) (entity.TrainedModel, error)
	RenameModel(oldName, newName string) error
	DeleteModel(name string) error
	Dir() string
}

type repository struct {
	dir string
	log *logrus.Logger
}

// New returns a repository rooted at dir, falling back to MODELS_DIR and
// then ./storage/models.
func New(dir string, log *logrus.Logger) Repository {
	if dir == "" {
		dir = os.Getenv("MODELS_DIR")
	}
	if dir == "" {
		dir = "./storage/models"
	}
	return &repository{dir: dir, log: log}
}

func (r *repository) Dir() string { return r.dir }
