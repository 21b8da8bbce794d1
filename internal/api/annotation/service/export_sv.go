package annotationService

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"BioVision/internal/api/annotation"
	"BioVision/internal/export"
	contextPkg "BioVision/pkg/context"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

// Export writes every image in the working set, in workspace order.
func (s *annotationService) Export(ctx context.Context, format export.Format, w io.Writer) error {
	if err := export.Write(w, format, s.ws.Images()); err != nil {
		return fmt.Errorf("%w: %v", annotation.ErrExportFailed, err)
	}
	return nil
}

// UploadExport stores the export in the bucket and returns a presigned link
// to it. An object that cannot be presigned is removed again.
func (s *annotationService) UploadExport(ctx context.Context, format export.Format) (annotation.ExportUpload, error) {
	if s.storage == nil {
		return annotation.ExportUpload{}, annotation.ErrExportStorage
	}

	fields := logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"format":     string(format),
	}

	images := s.ws.Images()
	var buf bytes.Buffer
	if err := export.Write(&buf, format, images); err != nil {
		return annotation.ExportUpload{}, fmt.Errorf("%w: %v", annotation.ErrExportFailed, err)
	}

	key := format.FileName(time.Now())
	location, err := s.storage.Upload(key, &buf, format.ContentType())
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Error("Export upload failed")
		return annotation.ExportUpload{}, fmt.Errorf("%w: %v", annotation.ErrExportUploadFailed, err)
	}

	url, err := s.storage.PresignUrl(location)
	if err != nil {
		fields["error"] = err.Error()
		s.log.WithFields(fields).Error("Failed to presign export")
		if delErr := s.storage.DeleteFile(location); delErr != nil {
			s.log.WithFields(fields).WithError(delErr).Warn("Failed to remove unsigned export")
		}
		return annotation.ExportUpload{}, fmt.Errorf("%w: %v", annotation.ErrExportUploadFailed, err)
	}

	fields["location"] = location
	fields["images"] = len(images)
	s.log.WithFields(fields).Info("Export uploaded")

	return annotation.ExportUpload{
		Format:   string(format),
		Key:      key,
		Location: location,
		URL:      url,
		Images:   len(images),
	}, nil
}
