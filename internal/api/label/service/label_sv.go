package labelService

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"BioVision/internal/annotator"
	"BioVision/internal/api/label"
	"BioVision/internal/entity"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/redis"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func (s *labelService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		return
	}
	// runs under the workspace lock: only record and schedule
	s.unsubscribe = s.workspace.Subscribe(func(snap annotator.Snapshot) {
		s.mu.Lock()
		s.dirty[snap.ImageID] = struct{}{}
		s.mu.Unlock()

		s.autosave.Schedule(func() {
			if err := s.Flush(context.Background()); err != nil {
				s.log.WithError(err).Warn("Autosave failed")
			}
		})
	})
}

func (s *labelService) Close() {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	s.mu.Unlock()

	s.autosave.Stop()
	if err := s.Flush(context.Background()); err != nil {
		s.log.WithError(err).Warn("Final label flush failed")
	}
}

func (s *labelService) takeDirty() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.dirty))
	for id := range s.dirty {
		ids = append(ids, id)
	}
	s.dirty = make(map[string]struct{})
	return ids
}

// Flush saves every image edited since the last save.
func (s *labelService) Flush(ctx context.Context) error {
	var errs []error
	for _, id := range s.takeDirty() {
		snap, ok := s.workspace.Snapshot(id)
		if !ok {
			continue
		}
		if _, err := s.persist(ctx, snap); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", snap.Filename, err))
		}
	}
	return errors.Join(errs...)
}

func (s *labelService) SaveImage(ctx context.Context, imageID string) error {
	snap, ok := s.workspace.Snapshot(imageID)
	if !ok {
		return annotator.ErrImageNotFound
	}

	s.mu.Lock()
	delete(s.dirty, imageID)
	s.mu.Unlock()

	if _, err := s.persist(ctx, snap); err != nil {
		return fmt.Errorf("%w: %v", label.ErrSaveLabelsFailed, err)
	}
	return nil
}

func (s *labelService) SaveAll(ctx context.Context) (label.SaveResult, error) {
	requestID := contextPkg.GetRequestID(ctx)
	s.takeDirty()

	result := label.SaveResult{Files: []string{}}
	for _, img := range s.workspace.Images() {
		snap, ok := s.workspace.Snapshot(img.ID)
		if !ok {
			continue
		}
		file, err := s.persist(ctx, snap)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"filename":   snap.Filename,
				"error":      err.Error(),
			}).Error("Failed to save labels")
			return result, fmt.Errorf("%w: %s: %v", label.ErrSaveLabelsFailed, snap.Filename, err)
		}
		result.Saved++
		result.Files = append(result.Files, file)
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"saved":      result.Saved,
	}).Info("Labels saved")
	return result, nil
}

// persist writes one image's boxes to the database, the redis mirror and
// the dataset tree. It returns the label file path.
func (s *labelService) persist(ctx context.Context, snap annotator.Snapshot) (string, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	boxes, err := jsoniter.MarshalToString(snap.Boxes)
	if err != nil {
		return "", err
	}

	row := entity.Label{
		ImageFilename: snap.Filename,
		ImagePath:     snap.Path,
		Boxes:         boxes,
		BoxCount:      len(snap.Boxes),
		LandmarkCount: placedLandmarks(snap.Boxes),
		UpdatedAt:     time.Now().UTC(),
	}

	repo, err := s.labelRepository.NewClient(false)
	if err != nil {
		return "", err
	}
	if err := repo.Label.UpsertLabel(ctx, row); err != nil {
		return "", err
	}

	if s.redis != nil {
		if err := s.redis.SetBoxes(ctx, snap.Filename, snap.Boxes, mirrorTTL); err != nil {
			s.log.WithFields(logrus.Fields{
				"filename": snap.Filename,
				"error":    err.Error(),
			}).Warn("Failed to mirror boxes")
		}
	}

	return s.writeDataset(snap)
}

func (s *labelService) writeDataset(snap annotator.Snapshot) (string, error) {
	if s.datasetDir == "" {
		return "", nil
	}

	labelsDir := filepath.Join(s.datasetDir, "labels")
	imagesDir := filepath.Join(s.datasetDir, "images")
	for _, dir := range []string{labelsDir, imagesDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}

	doc := entity.LabelFile{
		ImageFilename: snap.Filename,
		Boxes:         entity.LabelBoxes(snap.Boxes),
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	labelPath := filepath.Join(labelsDir, LabelFileName(snap.Filename))
	if err := os.WriteFile(labelPath, data, 0o644); err != nil {
		return "", err
	}

	if snap.Path != "" {
		if err := copyFile(snap.Path, filepath.Join(imagesDir, filepath.Base(snap.Filename))); err != nil {
			s.log.WithFields(logrus.Fields{
				"filename": snap.Filename,
				"error":    err.Error(),
			}).Warn("Failed to copy image into dataset")
		}
	}

	return labelPath, nil
}

// LabelFileName swaps the image extension for .json.
func LabelFileName(imageFilename string) string {
	base := filepath.Base(imageFilename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

func copyFile(src, dst string) error {
	srcAbs, _ := filepath.Abs(src)
	dstAbs, _ := filepath.Abs(dst)
	if srcAbs == dstAbs {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func placedLandmarks(boxes []entity.BoundingBox) int {
	n := 0
	for _, b := range boxes {
		for _, p := range b.Landmarks {
			if !p.IsSkipped {
				n++
			}
		}
	}
	return n
}

func (s *labelService) ListLabels(ctx context.Context) ([]label.LabelSummary, error) {
	repo, err := s.labelRepository.NewClient(false)
	if err != nil {
		return nil, err
	}

	rows, err := repo.Label.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]label.LabelSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, label.LabelSummary{
			ImageFilename: r.ImageFilename,
			ImagePath:     r.ImagePath,
			BoxCount:      r.BoxCount,
			LandmarkCount: r.LandmarkCount,
			UpdatedAt:     r.UpdatedAt,
		})
	}
	return out, nil
}

func (s *labelService) GetLabel(ctx context.Context, filename string) (entity.LabelFile, error) {
	boxes, err := s.savedBoxes(ctx, filename)
	if err != nil {
		return entity.LabelFile{}, err
	}
	return entity.LabelFile{
		ImageFilename: filename,
		Boxes:         entity.LabelBoxes(boxes),
	}, nil
}

// savedBoxes reads through the redis mirror and falls back to the database.
func (s *labelService) savedBoxes(ctx context.Context, filename string) ([]entity.BoundingBox, error) {
	if filename == "" || strings.ContainsAny(filename, `/\`) {
		return nil, label.ErrInvalidFilename
	}

	if s.redis != nil {
		boxes, err := s.redis.GetBoxes(ctx, filename)
		if err == nil {
			return boxes, nil
		}
		if !errors.Is(err, redis.ErrMiss) {
			s.log.WithFields(logrus.Fields{
				"filename": filename,
				"error":    err.Error(),
			}).Warn("Redis mirror read failed")
		}
	}

	repo, err := s.labelRepository.NewClient(false)
	if err != nil {
		return nil, err
	}
	row, err := repo.Label.GetLabel(ctx, filename)
	if err != nil {
		return nil, err
	}

	var boxes []entity.BoundingBox
	if err := jsoniter.UnmarshalFromString(row.Boxes, &boxes); err != nil {
		return nil, fmt.Errorf("decode saved boxes: %w", err)
	}

	if s.redis != nil {
		_ = s.redis.SetBoxes(ctx, filename, boxes, mirrorTTL)
	}
	return boxes, nil
}

// RestoreImage seeds a freshly added image with its saved boxes, if any.
func (s *labelService) RestoreImage(ctx context.Context, img entity.AnnotatedImage) (int, error) {
	if img.Failed() {
		return 0, nil
	}

	boxes, err := s.savedBoxes(ctx, img.Filename)
	if err != nil {
		if errors.Is(err, label.ErrLabelNotFound) || errors.Is(err, label.ErrInvalidFilename) {
			return 0, nil
		}
		return 0, err
	}
	if len(boxes) == 0 {
		return 0, nil
	}

	if err := s.workspace.Restore(img.ID, boxes); err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"image_id":   img.ID,
		"filename":   img.Filename,
		"boxes":      len(boxes),
	}).Info("Restored saved labels")
	return len(boxes), nil
}
