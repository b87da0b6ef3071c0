// Package server exposes the configuration document over HTTP.
package server

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"modelcfg/config"
	"modelcfg/config/models"
	"modelcfg/config/validation"
	"modelcfg/internal/logging"
	"modelcfg/internal/providers"
)

const modelsCacheKey = "models"

// SettingsStore persists the server-owned settings
type SettingsStore interface {
	Load() (models.Settings, error)
	Update(fn func(*models.Settings)) (models.Settings, error)
}

// Catalog lists the models offered by the configured providers
type Catalog interface {
	ChatModelProviders() models.ProviderModels
	EmbeddingModelProviders() models.ProviderModels
}

type registryCatalog struct{}

func (registryCatalog) ChatModelProviders() models.ProviderModels {
	return providers.ChatModelProviders()
}

func (registryCatalog) EmbeddingModelProviders() models.ProviderModels {
	return providers.EmbeddingModelProviders()
}

// RegistryCatalog lists models from the provider registry
func RegistryCatalog() Catalog {
	return registryCatalog{}
}

var (
	metricsOnce sync.Once
	metrics     *fiberprometheus.FiberPrometheus
)

// Prometheus collectors register globally, so they are shared by every app
func sharedMetrics() *fiberprometheus.FiberPrometheus {
	metricsOnce.Do(func() {
		metrics = fiberprometheus.New("modelcfg")
	})
	return metrics
}

// Server serves the configuration API
type Server struct {
	app     *fiber.App
	store   SettingsStore
	catalog Catalog
	// Model listings hit provider APIs, so they are cached until settings change
	listings *cache.Cache
	log      *logrus.Entry
}

// New creates a Server with its routes registered
func New(store SettingsStore, catalog Catalog) *Server {
	s := &Server{
		store:    store,
		catalog:  catalog,
		listings: cache.New(time.Minute, 5*time.Minute),
		log:      logging.WithComponent("server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "modelcfg",
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins(),
		AllowMethods: "GET,POST,OPTIONS",
	}))
	app.Use(s.requestLogger)

	prometheus := sharedMetrics()
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/health", s.health)
	app.Get("/config", s.getConfig)
	app.Post("/config", s.postConfig)
	app.Get("/models", s.getModels)

	s.app = app
	return s
}

// allowedOrigins never widens to "*": an unset option falls back to the local defaults
func allowedOrigins() string {
	origins := strings.TrimSpace(viper.GetString(config.KeyCORSOrigins))
	if origins == "" || origins == "*" {
		return config.DefaultCORSOrigins
	}
	return origins
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown
func (s *Server) Listen(addr string) error {
	s.log.WithField("addr", addr).Info("Listening")
	return s.app.Listen(addr)
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// Invalidate drops the cached model listings
func (s *Server) Invalidate() {
	s.listings.Flush()
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	requestID := c.Get(fiber.HeaderXRequestID)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	c.Set(fiber.HeaderXRequestID, requestID)

	start := time.Now()
	err := c.Next()
	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     c.Response().StatusCode(),
		"duration":   time.Since(start).String(),
	}).Debug("Request handled")
	return err
}

func (s *Server) modelListings() models.ModelsResponse {
	if cached, ok := s.listings.Get(modelsCacheKey); ok {
		return cached.(models.ModelsResponse)
	}
	listing := models.ModelsResponse{
		ChatModelProviders:      s.catalog.ChatModelProviders(),
		EmbeddingModelProviders: s.catalog.EmbeddingModelProviders(),
	}
	s.listings.Set(modelsCacheKey, listing, cache.DefaultExpiration)
	return listing
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) getModels(c *fiber.Ctx) error {
	return c.JSON(s.modelListings())
}

func (s *Server) getConfig(c *fiber.Ctx) error {
	settings, err := s.store.Load()
	if err != nil {
		s.log.WithError(err).Error("Failed to load settings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load settings"})
	}

	listing := s.modelListings()
	doc := models.Document{
		ChatModelProviders:      listing.ChatModelProviders,
		EmbeddingModelProviders: listing.EmbeddingModelProviders,
	}
	doc.ApplySettings(settings)

	return c.JSON(doc)
}

// postConfig persists the scalar fields of the submitted document. Model
// listings in the body are ignored; they are derived from the credentials.
func (s *Server) postConfig(c *fiber.Ctx) error {
	body := c.Body()

	violations, err := validation.ValidateDocument(body)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request body is not valid JSON"})
	}
	if len(violations) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "invalid config document",
			"details": violations,
		})
	}

	var doc models.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	submitted := doc.Settings()
	if err := validation.NewValidator().ValidateSettings(submitted); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if _, err := s.store.Update(func(current *models.Settings) { *current = submitted }); err != nil {
		s.log.WithError(err).Error("Failed to save settings")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to save settings"})
	}

	s.Invalidate()
	s.log.Info("Config updated")

	return c.JSON(fiber.Map{"message": "Config updated"})
}
