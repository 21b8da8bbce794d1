package labelHandler

import (
	labelService "BioVision/internal/api/label/service"
	"BioVision/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type LabelHandler struct {
	log          *logrus.Logger
	middleware   middleware.Middleware
	labelService labelService.ILabelService
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	labelService labelService.ILabelService,
) *LabelHandler {
	return &LabelHandler{
		log:          log,
		middleware:   middleware,
		labelService: labelService,
	}
}

func (h *LabelHandler) Start(srv fiber.Router) {
	srv.Get("/labels", h.ListLabels)

	labels := srv.Group("/labels")
	labels.Post("/save", h.SaveLabels)
	labels.Get("/:filename", h.GetLabel)
}
