package api

import (
	"slices"
	"time"

	"fridge-recipe/internal/api/handlers/health"
	recipeHandler "fridge-recipe/internal/api/handlers/recipe"
	"fridge-recipe/internal/api/middleware"
	"fridge-recipe/internal/core/ai/cache"
	"fridge-recipe/internal/core/ai/queue"
	"fridge-recipe/internal/core/recipe"
	"fridge-recipe/internal/infrastructure/config"
	"fridge-recipe/internal/infrastructure/metrics"
	"fridge-recipe/internal/infrastructure/store"
	"fridge-recipe/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Dependencies 路由所需的已初始化元件
type Dependencies struct {
	DB          *sqlx.DB
	Ingredients *store.IngredientStore
	Dinners     *store.DinnerStore
	Suggestions *recipe.Service
	Queue       *queue.Manager // 可為 nil
	Memory      cache.Store    // 可為 nil
	Metrics     *metrics.Metrics
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 健康檢查路由
	healthHandler := health.NewHandler(healthOptions(cfg, deps))
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	{
		ingredients := recipeHandler.NewIngredientHandler(deps.Ingredients)
		ingredientGroup := api.Group("/ingredients")
		{
			ingredientGroup.GET("", ingredients.List)
			ingredientGroup.POST("", ingredients.Create)
			ingredientGroup.GET("/expiring", ingredients.Expiring)
			ingredientGroup.GET("/:id", ingredients.Get)
			ingredientGroup.PUT("/:id", ingredients.Update)
			ingredientGroup.DELETE("/:id", ingredients.Delete)
		}

		dinners := recipeHandler.NewDinnerHandler(deps.Dinners)
		dinnerGroup := api.Group("/dinners")
		{
			dinnerGroup.GET("", dinners.List)
			dinnerGroup.POST("", dinners.Create)
			dinnerGroup.GET("/:id", dinners.Get)
			dinnerGroup.PUT("/:id", dinners.Update)
			dinnerGroup.DELETE("/:id", dinners.Delete)
		}

		suggestions := recipeHandler.NewSuggestionHandler(deps.Suggestions, cfg.Suggestion.DefaultCount)
		suggestionGroup := api.Group("/suggestions")
		{
			suggestionGroup.POST("", suggestions.Suggest)
			suggestionGroup.GET("/state", suggestions.State)
			suggestionGroup.POST("/accept",
				middleware.Deduplication(cfg.DedupWindow, recipeHandler.AcceptDedupKey),
				suggestions.Accept,
			)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("metrics", deps.Metrics != nil),
		zap.Bool("suggestion_memory", deps.Memory != nil),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}

func healthOptions(cfg *config.Config, deps Dependencies) health.Options {
	opts := health.Options{Version: cfg.App.Version}
	if deps.DB != nil {
		opts.DB = deps.DB
	}
	if deps.Queue != nil {
		opts.Queue = deps.Queue.GetQueueStatus
	}
	if deps.Memory != nil {
		opts.Memory = deps.Memory.Stats
	}
	if deps.Suggestions != nil {
		opts.Sessions = deps.Suggestions.SessionCount
	}
	return opts
}

// corsConfig 含 "*" 或未設定時允許所有來源（此時不帶 credentials）
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", recipeHandler.SessionHeader},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID", recipeHandler.SessionHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
