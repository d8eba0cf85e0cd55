package main

import (
	"context"
	"fmt"

	"fridge-recipe/internal/core/ai/anthropic"
	"fridge-recipe/internal/core/ai/cache"
	"fridge-recipe/internal/core/ai/invoker"
	"fridge-recipe/internal/core/ai/openrouter"
	"fridge-recipe/internal/core/ai/provider"
	"fridge-recipe/internal/core/ai/queue"
	"fridge-recipe/internal/core/recipe"
	"fridge-recipe/internal/infrastructure/config"
	"fridge-recipe/internal/infrastructure/database"
	"fridge-recipe/internal/infrastructure/metrics"
	"fridge-recipe/internal/infrastructure/store"
	"fridge-recipe/internal/pkg/common"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// bootstrap 載入設定並初始化 logger
func bootstrap() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := common.InitLogger(cfg.LogLevel, cfg.App.LogDir); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	common.LogInfo("載入設定",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", cfg.LLM.Model),
		zap.Strings("fallback_models", cfg.LLM.FallbackModels),
		zap.String("llm_api_key", cfg.LLM.APIKey),
		zap.String("database_driver", cfg.Database.Driver),
		zap.String("cache_backend", cfg.Cache.Backend),
	)
	return cfg, nil
}

// openDatabase 連線並視設定執行 migration
func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, cfg.Database.Driver); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// newGenerator 依 llm.provider 建立上游客戶端
func newGenerator(cfg config.LLMConfig) (provider.TextGenerator, error) {
	if cfg.APIKey == "" {
		common.LogWarn("未設定 LLM API Key，推薦請求將會失敗")
	}
	pc := provider.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout}

	switch cfg.Provider {
	case "anthropic":
		return anthropic.NewClient(pc), nil
	case "openrouter":
		return openrouter.NewClient(pc), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// app 已組裝好的所有元件
type app struct {
	cfg         *config.Config
	db          *sqlx.DB
	ingredients *store.IngredientStore
	dinners     *store.DinnerStore
	queue       *queue.Manager
	memory      cache.Store
	metrics     *metrics.Metrics
	suggestions *recipe.Service
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:         cfg,
		db:          db,
		ingredients: store.NewIngredientStore(db),
		dinners:     store.NewDinnerStore(db),
	}

	gen, err := newGenerator(cfg.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.queue = queue.NewManager(gen, cfg.Queue.Workers, cfg.Queue.MaxSize)
	a.metrics = metrics.New(func() float64 { return float64(a.queue.Len()) })

	a.memory, err = cache.New(ctx, cfg.Cache)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize suggestion memory: %w", err)
	}

	systemPrompt := cfg.LLM.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = recipe.DefaultSystemPrompt
	}
	inv := invoker.New(a.queue, cfg.LLM.Model, cfg.LLM.FallbackModels,
		invoker.WithSystemPrompt(systemPrompt),
		invoker.WithMaxTokens(cfg.LLM.MaxTokens),
		invoker.WithAttemptTimeout(cfg.Suggestion.AttemptTimeout),
		invoker.WithMetrics(a.metrics),
	)

	var memory recipe.Memory
	if a.memory != nil {
		memory = a.memory
	}
	a.suggestions = recipe.NewService(recipe.ServiceConfig{
		Ingredients: a.ingredients,
		Dinners:     a.dinners,
		History:     a.dinners,
		Pipeline:    recipe.NewPipeline(inv),
		Memory:      memory,
		Metrics:     a.metrics,
		RecentDays:  cfg.Suggestion.RecentDays,
		SessionTTL:  cfg.Suggestion.SessionTTL,
	})

	common.LogInfo("服務初始化完成",
		zap.Strings("models", inv.Models()),
		zap.Int("queue_workers", cfg.Queue.Workers),
		zap.Bool("suggestion_memory", a.memory != nil),
	)
	return a, nil
}

// Close 依建立的相反順序釋放資源
func (a *app) Close() {
	if a.memory != nil {
		if err := a.memory.Close(); err != nil {
			common.LogWarn("關閉推薦記憶失敗", zap.Error(err))
		}
	}
	if a.queue != nil {
		a.queue.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			common.LogWarn("關閉資料庫失敗", zap.Error(err))
		}
	}
}
