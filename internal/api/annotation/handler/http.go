package annotationHandler

import (
	annotationService "BioVision/internal/api/annotation/service"
	"BioVision/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type AnnotationHandler struct {
	log               *logrus.Logger
	validator         *validator.Validate
	middleware        middleware.Middleware
	annotationService annotationService.IAnnotationService
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	as annotationService.IAnnotationService,
) *AnnotationHandler {
	return &AnnotationHandler{
		annotationService: as,
		log:               log,
		validator:         validator,
		middleware:        middleware,
	}
}

func (h *AnnotationHandler) Start(srv fiber.Router) {
	annotation := srv.Group("/annotation")

	annotation.Get("/boxes", h.Boxes)
	annotation.Post("/boxes", h.AddBox)
	annotation.Patch("/boxes/:boxId", h.UpdateBox)
	annotation.Delete("/boxes/:boxId", h.DeleteBox)
	annotation.Put("/selection", h.SelectBox)

	annotation.Post("/boxes/:boxId/landmarks", h.AddLandmark)
	annotation.Patch("/boxes/:boxId/landmarks/:landmarkId", h.UpdateLandmark)
	annotation.Delete("/boxes/:boxId/landmarks/:landmarkId", h.RemoveLandmark)
	annotation.Post("/boxes/:boxId/skip", h.SkipLandmark)

	annotation.Post("/undo", h.Undo)
	annotation.Post("/redo", h.Redo)
	annotation.Post("/clear", h.Clear)

	annotation.Get("/export", h.Export)
	annotation.Post("/export/upload", h.UploadExport)
}
