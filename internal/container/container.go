// Package container provides dependency injection for the engine. It
// centralizes the creation and wiring of all components, making the
// dependency graph explicit and testable.
package container

import (
	"context"
	"fmt"
	"os"
	"time"

	"financeos/engine/internal/ai"
	"financeos/engine/internal/classifier"
	"financeos/engine/internal/composer"
	"financeos/engine/internal/config"
	"financeos/engine/internal/engine"
	"financeos/engine/internal/logging"
	"financeos/engine/internal/memory"
	"financeos/engine/internal/models"
	"financeos/engine/internal/normalizer"
	"financeos/engine/internal/reconciler"
	"financeos/engine/internal/retrieval"
	"financeos/engine/internal/store"
)

// Container holds the wired application dependencies.
//
// Container is immutable after creation - all fields are private and can
// only be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	repo     store.Repository
	aiClient ai.Client
	engine   *engine.Engine
}

// NewContainer creates and wires all dependencies from the configuration.
// When AI is disabled the deterministic fake client backs summarization and
// embeddings, which keeps every operation available offline.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	categories, err := loadCategories(cfg, logger)
	if err != nil {
		return nil, err
	}
	repo := store.NewInMemory(categories)

	var client ai.Client
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model,
			cfg.AI.EmbeddingModel, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		client = gemini
		logger.Info("AI collaborator enabled",
			logging.Field{Key: "model", Value: cfg.AI.Model})
	} else {
		client = ai.NewFakeClient(cfg.Retrieval.Dimension)
		logger.Info("AI collaborator disabled, using deterministic fake")
	}

	norm := normalizer.New(cfg.Normalizer.ConfidenceFloor, categories, logger)
	learned := classifier.NewLearnedStrategy()
	cls := classifier.New(learned, logger)
	rec := reconciler.New(repo, repo, cls, cfg.Import.DayTolerance, cfg.Import.MaxBatchRows, logger)
	mem := memory.NewManager(repo, client, cfg.Memory.TokenCeiling, cfg.Memory.TargetRatio, logger)
	index := retrieval.NewIndex(repo, client, cfg.Retrieval.K, cfg.Retrieval.Threshold, logger)
	comp := composer.New(repo, index, mem, client, logger)

	eng := engine.New(repo, norm, cls, learned, rec, mem, index, comp, logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "ai_enabled", Value: cfg.AI.Enabled},
		logging.Field{Key: logging.FieldCount, Value: len(categories)})

	return &Container{
		logger:   logger,
		config:   cfg,
		repo:     repo,
		aiClient: client,
		engine:   eng,
	}, nil
}

// loadCategories reads the configured seed file, falling back to the
// built-in set when the file does not exist.
func loadCategories(cfg *config.Config, logger logging.Logger) ([]models.Category, error) {
	if cfg.Categories.File != "" {
		if _, err := os.Stat(cfg.Categories.File); err == nil {
			categories, err := store.LoadCategoriesFile(cfg.Categories.File)
			if err != nil {
				return nil, fmt.Errorf("failed to load categories: %w", err)
			}
			logger.Info("loaded category seed file",
				logging.Field{Key: "file", Value: cfg.Categories.File},
				logging.Field{Key: logging.FieldCount, Value: len(categories)})
			return categories, nil
		}
	}
	return store.DefaultCategories(), nil
}

// GetEngine returns the wired engine orchestrator.
func (c *Container) GetEngine() *engine.Engine {
	return c.engine
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRepository returns the container's repository instance.
func (c *Container) GetRepository() store.Repository {
	return c.repo
}

// GetAIClient returns the container's AI client instance.
func (c *Container) GetAIClient() ai.Client {
	return c.aiClient
}

// Close releases container resources, including the AI client connection
// when one was created.
func (c *Container) Close() error {
	if closer, ok := c.aiClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			return err
		}
	}
	c.logger.Info("Container closed")
	return nil
}
