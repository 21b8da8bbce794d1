package workspaceService

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"BioVision/internal/annotator"
	"BioVision/internal/api/workspace"
	"BioVision/internal/entity"
	contextPkg "BioVision/pkg/context"
	"BioVision/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

func imageURL(id string) string {
	return "/api/v1/workspace/images/" + id + "/file"
}

func thumbnailURL(id string) string {
	return "/api/v1/workspace/images/" + id + "/thumbnail"
}

func summarize(img entity.AnnotatedImage, activeID string) workspace.ImageSummary {
	return workspace.ImageSummary{
		ID:               img.ID,
		Filename:         img.Filename,
		Path:             img.Path,
		URL:              img.URL,
		ThumbnailURL:     thumbnailURL(img.ID),
		Width:            img.Width,
		Height:           img.Height,
		LoadError:        img.LoadError,
		BoxCount:         len(img.Boxes),
		ProcessingStatus: img.ProcessingStatus,
		Active:           img.ID == activeID,
	}
}

func (s *workspaceService) ListImages(ctx context.Context) []workspace.ImageSummary {
	activeID := s.ws.ActiveID()
	images := s.ws.Images()

	out := make([]workspace.ImageSummary, 0, len(images))
	for _, img := range images {
		out = append(out, summarize(img, activeID))
	}
	return out
}

func (s *workspaceService) AddImage(ctx context.Context, path string) (workspace.AddImageResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	abs, err := filepath.Abs(path)
	if err != nil {
		return workspace.AddImageResult{}, fmt.Errorf("%w: %v", workspace.ErrImagePathNotFound, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return workspace.AddImageResult{}, workspace.ErrImagePathNotFound
		}
		return workspace.AddImageResult{}, err
	}
	if info.IsDir() {
		return workspace.AddImageResult{}, workspace.ErrImagePathIsDir
	}
	if !s.utils.IsSupportedImage(abs) {
		return workspace.AddImageResult{}, utils.ErrUnsupportedType
	}

	if s.inWorkingSet(abs) {
		return workspace.AddImageResult{}, annotator.ErrImageExists
	}

	return s.addFile(ctx, requestID, abs)
}

func (s *workspaceService) UploadImage(ctx context.Context, file *multipart.FileHeader) (workspace.AddImageResult, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.utils.ValidateImageFile(file); err != nil {
		return workspace.AddImageResult{}, err
	}
	if !s.utils.IsSupportedImage(file.Filename) {
		return workspace.AddImageResult{}, utils.ErrUnsupportedType
	}

	name := filepath.Base(file.Filename)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, "..") {
		return workspace.AddImageResult{}, workspace.ErrInvalidFilename
	}

	dest, err := filepath.Abs(filepath.Join(s.imageDir, name))
	if err != nil {
		return workspace.AddImageResult{}, fmt.Errorf("%w: %v", workspace.ErrSaveUpload, err)
	}
	if s.inWorkingSet(dest) {
		return workspace.AddImageResult{}, annotator.ErrImageExists
	}

	if err := saveUpload(file, dest); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"filename":   name,
			"error":      err.Error(),
		}).Error("Failed to store upload")
		return workspace.AddImageResult{}, fmt.Errorf("%w: %v", workspace.ErrSaveUpload, err)
	}

	return s.addFile(ctx, requestID, dest)
}

// inWorkingSet reports whether path, or another file with the same base
// name, is already loaded. Labels are stored per file name.
func (s *workspaceService) inWorkingSet(path string) bool {
	name := filepath.Base(path)
	for _, existing := range s.ws.Images() {
		if existing.Path == path || existing.Filename == name {
			return true
		}
	}
	return false
}

func saveUpload(file *multipart.FileHeader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	tmp := dest + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dest)
}

// addFile registers a file that exists on disk. Images that cannot be
// decoded are kept with a load error so the carousel can show them.
func (s *workspaceService) addFile(ctx context.Context, requestID, path string) (workspace.AddImageResult, error) {
	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		return workspace.AddImageResult{}, err
	}

	img := entity.AnnotatedImage{
		ID:       id,
		Path:     path,
		URL:      imageURL(id),
		Filename: filepath.Base(path),
	}

	fields := logrus.Fields{
		"request_id": requestID,
		"image_id":   id,
		"filename":   img.Filename,
	}

	w, h, err := s.utils.ImageDimensions(path)
	if err != nil {
		img.LoadError = err.Error()
		fields["error"] = err.Error()
		s.log.WithFields(fields).Warn("Image could not be decoded")
	} else {
		img.Width, img.Height = w, h
	}

	stored, err := s.ws.AddImage(img)
	if err != nil {
		return workspace.AddImageResult{}, err
	}

	result := workspace.AddImageResult{}
	if s.labels != nil {
		restored, err := s.labels.RestoreImage(ctx, stored)
		if err != nil {
			fields["error"] = err.Error()
			s.log.WithFields(fields).Warn("Failed to restore saved labels")
		}
		result.Restored = restored
	}

	if latest, ok := s.ws.Image(stored.ID); ok {
		stored = latest
	}
	result.Image = summarize(stored, s.ws.ActiveID())

	s.log.WithFields(fields).Info("Image added")
	return result, nil
}

func (s *workspaceService) GetImage(ctx context.Context, imageID string) (workspace.ImageSummary, error) {
	img, ok := s.ws.Image(imageID)
	if !ok {
		return workspace.ImageSummary{}, annotator.ErrImageNotFound
	}
	return summarize(img, s.ws.ActiveID()), nil
}

func (s *workspaceService) ImagePath(ctx context.Context, imageID string) (string, error) {
	img, ok := s.ws.Image(imageID)
	if !ok {
		return "", annotator.ErrImageNotFound
	}
	if img.Failed() {
		return "", annotator.ErrImageUnavailable
	}
	return img.Path, nil
}

func (s *workspaceService) RemoveImage(ctx context.Context, imageID string) error {
	img, ok := s.ws.Image(imageID)
	if !ok {
		return annotator.ErrImageNotFound
	}
	if !s.ws.RemoveImage(imageID) {
		return annotator.ErrImageNotFound
	}

	if s.redis != nil {
		if err := s.redis.DeleteBoxes(ctx, img.Filename); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"image_id":   imageID,
				"error":      err.Error(),
			}).Warn("Failed to drop mirrored boxes")
		}
		s.mirrorActive(ctx)
	}
	return nil
}

func (s *workspaceService) ActivateImage(ctx context.Context, imageID string) (annotator.Snapshot, error) {
	if err := s.ws.Activate(imageID); err != nil {
		return annotator.Snapshot{}, err
	}
	s.mirrorActive(ctx)

	snap, ok := s.ws.Snapshot(imageID)
	if !ok {
		return annotator.Snapshot{}, annotator.ErrImageNotFound
	}
	return snap, nil
}

func (s *workspaceService) mirrorActive(ctx context.Context) {
	if s.redis == nil {
		return
	}
	if err := s.redis.SetActiveImage(ctx, s.ws.ActiveID()); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to mirror active image")
	}
}

func (s *workspaceService) Thumbnail(ctx context.Context, imageID string) ([]byte, error) {
	path, err := s.ImagePath(ctx, imageID)
	if err != nil {
		return nil, err
	}
	data, err := s.utils.Thumbnail(path, thumbnailSide)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", workspace.ErrThumbnail, err)
	}
	return data, nil
}

func (s *workspaceService) ActiveSnapshot(ctx context.Context) (annotator.Snapshot, error) {
	return s.ws.ActiveSnapshot()
}

func (s *workspaceService) Subscribe(l annotator.Listener) func() {
	return s.ws.Subscribe(l)
}
