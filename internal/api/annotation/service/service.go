package annotationService

import (
	"io"

	"BioVision/internal/annotator"
	"BioVision/internal/api/annotation"
	"BioVision/internal/export"
	"BioVision/pkg/s3"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IAnnotationService interface {
	Boxes(ctx context.Context) (annotator.Snapshot, error)
	AddBox(ctx context.Context, req annotation.AddBoxRequest) (annotation.EditResult, error)
	UpdateBox(ctx context.Context, boxID int64, patch annotator.BoxPatch) (annotation.EditResult, error)
	DeleteBox(ctx context.Context, boxID int64) (annotation.EditResult, error)
	SelectBox(ctx context.Context, boxID *int64) (annotation.EditResult, error)

	AddLandmark(ctx context.Context, boxID int64, req annotation.LandmarkRequest) (annotation.EditResult, error)
	UpdateLandmark(ctx context.Context, boxID, landmarkID int64, patch annotator.LandmarkPatch) (annotation.EditResult, error)
	RemoveLandmark(ctx context.Context, boxID, landmarkID int64) (annotation.EditResult, error)
	SkipLandmark(ctx context.Context, boxID int64) (annotation.EditResult, error)

	Undo(ctx context.Context) (annotation.EditResult, error)
	Redo(ctx context.Context) (annotation.EditResult, error)
	Clear(ctx context.Context) (annotation.EditResult, error)

	Export(ctx context.Context, format export.Format, w io.Writer) error
	UploadExport(ctx context.Context, format export.Format) (annotation.ExportUpload, error)
}

type annotationService struct {
	log     *logrus.Logger
	ws      *annotator.Workspace
	storage s3.ItfS3
}

// NewAnnotationService edits the active image. storage may be nil, in which
// case export uploads are refused.
func NewAnnotationService(log *logrus.Logger, ws *annotator.Workspace, storage s3.ItfS3) IAnnotationService {
	return &annotationService{
		log:     log,
		ws:      ws,
		storage: storage,
	}
}
