package workspaceService

import (
	"mime/multipart"

	"BioVision/internal/annotator"
	"BioVision/internal/api/workspace"
	"BioVision/internal/entity"
	"BioVision/pkg/redis"
	"BioVision/pkg/utils"
	"BioVision/pkg/viewport"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IWorkspaceService interface {
	ListImages(ctx context.Context) []workspace.ImageSummary
	AddImage(ctx context.Context, path string) (workspace.AddImageResult, error)
	UploadImage(ctx context.Context, file *multipart.FileHeader) (workspace.AddImageResult, error)
	GetImage(ctx context.Context, imageID string) (workspace.ImageSummary, error)
	ImagePath(ctx context.Context, imageID string) (string, error)
	RemoveImage(ctx context.Context, imageID string) error
	ActivateImage(ctx context.Context, imageID string) (annotator.Snapshot, error)
	Thumbnail(ctx context.Context, imageID string) ([]byte, error)

	Tool(ctx context.Context) workspace.ToolState
	SetTool(ctx context.Context, mode string) (workspace.ToolState, error)

	Viewport(ctx context.Context) viewport.Viewport
	Resize(ctx context.Context, req workspace.ResizeRequest)
	Zoom(ctx context.Context, req workspace.ZoomRequest) viewport.Viewport
	Pan(ctx context.Context, req workspace.PanRequest) viewport.Viewport

	Pointer(ctx context.Context, ev annotator.PointerEvent) annotator.Outcome
	Key(ctx context.Context, ev annotator.KeyEvent) annotator.Outcome

	// Subscribe forwards workspace snapshots to l until the returned
	// function is called.
	Subscribe(l annotator.Listener) func()
	ActiveSnapshot(ctx context.Context) (annotator.Snapshot, error)
}

// LabelRestorer seeds newly added images with their saved boxes.
type LabelRestorer interface {
	RestoreImage(ctx context.Context, img entity.AnnotatedImage) (int, error)
}

const thumbnailSide = 256

type workspaceService struct {
	log      *logrus.Logger
	ws       *annotator.Workspace
	utils    utils.IUtils
	labels   LabelRestorer
	redis    redis.IRedis
	imageDir string
}

// NewWorkspaceService wires the working set. labels and rc may be nil;
// uploads are stored under imageDir.
func NewWorkspaceService(
	log *logrus.Logger,
	ws *annotator.Workspace,
	utils utils.IUtils,
	labels LabelRestorer,
	rc redis.IRedis,
	imageDir string,
) IWorkspaceService {
	return &workspaceService{
		log:      log,
		ws:       ws,
		utils:    utils,
		labels:   labels,
		redis:    rc,
		imageDir: imageDir,
	}
}
