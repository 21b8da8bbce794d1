package modelRepository

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"BioVision/internal/api/model"
	"BioVision/internal/entity"
	"github.com/sirupsen/logrus"
)

func (r *repository) path(name string) string {
	return filepath.Join(r.dir, filePrefix+name+fileSuffix)
}

func (r *repository) ListModels() ([]entity.TrainedModel, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, err
	}

	models := make([]entity.TrainedModel, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"file":  name,
				"error": err.Error(),
			}).Warn("Skipping unreadable model file")
			continue
		}
		tag := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		models = append(models, entity.TrainedModel{
			Name:      tag,
			Path:      filepath.Join(r.dir, name),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}

	sort.SliceStable(models, func(i, j int) bool {
		return models[i].CreatedAt.After(models[j].CreatedAt)
	})
	return models, nil
}

func (r *repository) GetModel(name string) (entity.TrainedModel, error) {
	if !model.ValidModelName(name) {
		return entity.TrainedModel{}, model.ErrInvalidModelName
	}

	p := r.path(name)
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return entity.TrainedModel{}, model.ErrModelNotFound
		}
		return entity.TrainedModel{}, err
	}

	return entity.TrainedModel{
		Name:      name,
		Path:      p,
		Size:      info.Size(),
		CreatedAt: info.ModTime(),
	}, nil
}

func (r *repository) RenameModel(oldName, newName string) error {
	if !model.ValidModelName(oldName) || !model.ValidModelName(newName) {
		return model.ErrInvalidModelName
	}

	oldPath, newPath := r.path(oldName), r.path(newName)
	if _, err := os.Stat(oldPath); errors.Is(err, fs.ErrNotExist) {
		return model.ErrModelNotFound
	}
	if _, err := os.Stat(newPath); err == nil {
		return model.ErrModelExists
	}

	if err := os.Rename(oldPath, newPath); err != nil {
		r.log.WithFields(logrus.Fields{
			"from":  oldName,
			"to":    newName,
			"error": err.Error(),
		}).Error("Failed to rename model")
		return err
	}
	return nil
}

func (r *repository) DeleteModel(name string) error {
	if !model.ValidModelName(name) {
		return model.ErrInvalidModelName
	}

	if err := os.Remove(r.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.ErrModelNotFound
		}
		return err
	}
	return nil
}
