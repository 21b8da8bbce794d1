package detectionService

import (
	"BioVision/internal/annotator"
	"BioVision/internal/api/detection"
	"BioVision/pkg/utils"
	websocketPkg "BioVision/pkg/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IDetectionService interface {
	Detect(ctx context.Context, req detection.DetectRequest) (annotator.DetectionOutcome, error)
	Predict(ctx context.Context, req detection.PredictRequest) (annotator.DetectionOutcome, error)
	Status(ctx context.Context) detection.DetectorStatus
}

// Vision is the subset of the gemini and ollama clients used as a fallback
// detector.
type Vision interface {
	AnalyzeImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
	Name() string
}

type detectionService struct {
	log    *logrus.Logger
	ws     *annotator.Workspace
	bridge websocketPkg.IBridge
	vision Vision
	utils  utils.IUtils
}

// NewDetectionService wires the detector chain. bridge and vision may each
// be nil.
func NewDetectionService(
	log *logrus.Logger,
	ws *annotator.Workspace,
	bridge websocketPkg.IBridge,
	vision Vision,
	utils utils.IUtils,
) IDetectionService {
	return &detectionService{
		log:    log,
		ws:     ws,
		bridge: bridge,
		vision: vision,
		utils:  utils,
	}
}
