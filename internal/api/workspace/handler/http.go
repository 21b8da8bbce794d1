package workspaceHandler

import (
	workspaceService "BioVision/internal/api/workspace/service"
	"BioVision/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type WorkspaceHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	workspaceService workspaceService.IWorkspaceService
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ws workspaceService.IWorkspaceService,
) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: ws,
		log:              log,
		validator:        validator,
		middleware:       middleware,
	}
}

func (h *WorkspaceHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	workspace := srv.Group("/workspace")
	workspace.Use("/ws", wsMiddleware)
	workspace.Get("/ws", websocket.New(h.handleEditorSocket))

	workspace.Get("/images", h.ListImages)
	workspace.Post("/images", h.AddImage)
	workspace.Post("/images/upload", h.UploadImage)
	workspace.Get("/images/:imageId", h.GetImage)
	workspace.Delete("/images/:imageId", h.RemoveImage)
	workspace.Post("/images/:imageId/activate", h.ActivateImage)
	workspace.Get("/images/:imageId/thumbnail", h.Thumbnail)
	workspace.Get("/images/:imageId/file", h.ImageFile)

	workspace.Get("/tool", h.GetTool)
	workspace.Put("/tool", h.SetTool)

	workspace.Get("/viewport", h.GetViewport)
	workspace.Post("/viewport/resize", h.Resize)
	workspace.Post("/viewport/zoom", h.Zoom)
	workspace.Post("/viewport/pan", h.Pan)

	workspace.Post("/events/pointer", h.Pointer)
	workspace.Post("/events/key", h.Key)
}
