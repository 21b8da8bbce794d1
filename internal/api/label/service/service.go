package labelService

import (
	"sync"
	"time"

	"BioVision/internal/annotator"
	"BioVision/internal/api/label"
	labelRepository "BioVision/internal/api/label/repository"
	"BioVision/internal/entity"
	"BioVision/pkg/redis"
	"BioVision/pkg/viewport"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const (
	DefaultAutosaveDelay = time.Second
	mirrorTTL            = 24 * time.Hour
)

type ILabelService interface {
	// Start subscribes to workspace edits and saves dirty images after
	// the autosave delay.
	Start()
	SaveImage(ctx context.Context, imageID string) error
	SaveAll(ctx context.Context) (label.SaveResult, error)
	Flush(ctx context.Context) error
	ListLabels(ctx context.Context) ([]label.LabelSummary, error)
	GetLabel(ctx context.Context, filename string) (entity.LabelFile, error)
	RestoreImage(ctx context.Context, img entity.AnnotatedImage) (int, error)
	Close()
}

type labelService struct {
	log             *logrus.Logger
	labelRepository labelRepository.Repository
	redis           redis.IRedis
	workspace       *annotator.Workspace
	datasetDir      string

	autosave    *viewport.Debouncer
	mu          sync.Mutex
	dirty       map[string]struct{}
	unsubscribe func()

	saveMu sync.Mutex
}

// NewLabelService wires label persistence. rc may be nil when no redis
// mirror is configured; datasetDir receives the images/ and labels/ trees
// read by the training pipeline.
func NewLabelService(
	log *logrus.Logger,
	lr labelRepository.Repository,
	rc redis.IRedis,
	ws *annotator.Workspace,
	datasetDir string,
	autosaveDelay time.Duration,
) ILabelService {
	if autosaveDelay <= 0 {
		autosaveDelay = DefaultAutosaveDelay
	}
	return &labelService{
		log:             log,
		labelRepository: lr,
		redis:           rc,
		workspace:       ws,
		datasetDir:      datasetDir,
		autosave:        viewport.NewDebouncer(autosaveDelay),
		dirty:           make(map[string]struct{}),
	}
}
