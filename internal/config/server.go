package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"BioVision/database/postgres"
	"BioVision/database/sqlite"
	"BioVision/internal/annotator"
	annotationHandler "BioVision/internal/api/annotation/handler"
	annotationService "BioVision/internal/api/annotation/service"
	detectionHandler "BioVision/internal/api/detection/handler"
	detectionService "BioVision/internal/api/detection/service"
	labelHandler "BioVision/internal/api/label/handler"
	labelRepository "BioVision/internal/api/label/repository"
	labelService "BioVision/internal/api/label/service"
	modelHandler "BioVision/internal/api/model/handler"
	modelRepository "BioVision/internal/api/model/repository"
	modelService "BioVision/internal/api/model/service"
	schemaHandler "BioVision/internal/api/schema/handler"
	schemaRepository "BioVision/internal/api/schema/repository"
	schemaService "BioVision/internal/api/schema/service"
	workspaceHandler "BioVision/internal/api/workspace/handler"
	workspaceService "BioVision/internal/api/workspace/service"
	"BioVision/internal/middleware"
	"BioVision/pkg/gemini"
	"BioVision/pkg/ollama"
	"BioVision/pkg/redis"
	"BioVision/pkg/s3"
	"BioVision/pkg/utils"
	websocketPkg "BioVision/pkg/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine       *fiber.App
	db           *sqlx.DB
	log          *logrus.Logger
	middleware   middleware.Middleware
	validator    *validator.Validate
	utils        utils.IUtils
	handlers     []handler
	workspace    *annotator.Workspace
	redisServer  redis.IRedis
	s3Client     s3.ItfS3
	bridge       websocketPkg.IBridge
	vision       detectionService.Vision
	labelService labelService.ILabelService
	closers      []func()
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.workspace == nil {
		server.workspace = annotator.NewWorkspace(server.log)
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase opens the driver named by DB_DRIVER: postgres (default) or
// sqlite3 for single-user installs.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		var (
			db  *sqlx.DB
			err error
		)
		switch driver := strings.ToLower(os.Getenv("DB_DRIVER")); driver {
		case "", "postgres":
			db, err = postgres.New()
		case "sqlite", "sqlite3":
			db, err = sqlite.New("")
		default:
			return fmt.Errorf("unsupported DB_DRIVER %q", driver)
		}
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

// WithRedisServer enables the box mirror. A nil client leaves it off.
func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		if redisServer != nil {
			s.redisServer = redisServer
		}
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithS3Client enables export uploads when AWS_BUCKET_NAME is set.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		if os.Getenv("AWS_BUCKET_NAME") == "" {
			if s.log != nil {
				s.log.Warn("AWS_BUCKET_NAME not set, export uploads disabled")
			}
			return nil
		}
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithBridge(bridge websocketPkg.IBridge) ServerOption {
	return func(s *Server) error {
		if bridge != nil {
			s.bridge = bridge
			s.closers = append(s.closers, bridge.Close)
		}
		return nil
	}
}

// WithVisionClient picks the fallback detector from VISION_PROVIDER:
// gemini, ollama or none. A provider that fails to initialize is logged
// and skipped so detection still runs through the bridge.
func WithVisionClient() ServerOption {
	return func(s *Server) error {
		switch provider := strings.ToLower(os.Getenv("VISION_PROVIDER")); provider {
		case "", "none":
			return nil
		case "gemini":
			client, err := gemini.NewGeminiClient()
			if err != nil {
				s.log.Warnf("Failed to create Gemini client: %v", err)
				return nil
			}
			s.vision = client
			s.closers = append(s.closers, client.Close)
		case "ollama":
			client, err := ollama.NewOllamaClient()
			if err != nil {
				s.log.Warnf("Failed to create Ollama client: %v", err)
				return nil
			}
			s.vision = client
			s.closers = append(s.closers, client.Close)
		default:
			return fmt.Errorf("unsupported VISION_PROVIDER %q", provider)
		}
		return nil
	}
}

func WithWorkspace(ws *annotator.Workspace) ServerOption {
	return func(s *Server) error {
		s.workspace = ws
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	imageDir := getenv("IMAGE_DIR", "./storage/images")
	datasetDir := getenv("DATASET_DIR", "./storage/dataset")
	autosave := time.Duration(getenvInt("AUTOSAVE_DELAY_MS", 1000)) * time.Millisecond

	// Labels
	labelRepo := labelRepository.New(s.db, s.log)
	s.labelService = labelService.NewLabelService(s.log, labelRepo, s.redisServer, s.workspace, datasetDir, autosave)
	s.labelService.Start()
	labelHandlers := labelHandler.New(s.log, s.middleware, s.labelService)

	// Workspace
	workspaceServices := workspaceService.NewWorkspaceService(s.log, s.workspace, s.utils, s.labelService, s.redisServer, imageDir)
	workspaceHandlers := workspaceHandler.New(s.log, s.validator, s.middleware, workspaceServices)

	// Annotation
	annotationServices := annotationService.NewAnnotationService(s.log, s.workspace, s.s3Client)
	annotationHandlers := annotationHandler.New(s.log, s.validator, s.middleware, annotationServices)

	// Detection
	detectionServices := detectionService.NewDetectionService(s.log, s.workspace, s.bridge, s.vision, s.utils)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices)

	// Schemas
	schemaRepo := schemaRepository.New(s.db, s.log)
	schemaServices := schemaService.NewSchemaService(s.log, schemaRepo, s.workspace)
	schemaHandlers := schemaHandler.New(s.log, s.validator, s.middleware, schemaServices)

	// Models
	modelRepo := modelRepository.New("", s.log)
	modelServices := modelService.NewModelService(s.log, modelRepo, s.bridge, s.labelService)
	modelHandlers := modelHandler.New(s.log, s.validator, s.middleware, modelServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers,
		workspaceHandlers,
		annotationHandlers,
		detectionHandlers,
		schemaHandlers,
		labelHandlers,
		modelHandlers,
	)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1", s.middleware.NewRateLimiter)

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := getenv("APP_PORT", "3000")
	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, flushes pending label writes and
// releases every client.
func (s *Server) Shutdown() {
	if err := s.engine.ShutdownWithTimeout(10 * time.Second); err != nil {
		s.log.Warnf("Fiber shutdown: %v", err)
	}
	if s.labelService != nil {
		s.labelService.Close()
	}
	s.workspace.Close()
	for _, closeFn := range s.closers {
		closeFn()
	}
	if s.redisServer != nil {
		if err := s.redisServer.Close(); err != nil {
			s.log.Warnf("Redis close: %v", err)
		}
	}
	if err := s.db.Close(); err != nil {
		s.log.Warnf("Database close: %v", err)
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message":   "Server is Healthy!",
			"images":    len(s.workspace.Images()),
			"bridge":    s.bridge != nil && s.bridge.IsConnected(),
			"vision":    s.vision != nil,
			"s3":        s.s3Client != nil,
			"redis":     s.redisServer != nil,
			"timestamp": time.Now().UTC(),
		})
	})
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
