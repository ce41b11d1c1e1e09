package bootstrap

import (
	"context"
	"strings"

	"pulse_server/adapter/in/http"
	"pulse_server/config"
	"pulse_server/infra/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func NewAPI(deps *Dependencies) *fiber.App {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),

		// go-json: 표준 encoding/json 대비 빠른 JSON 직렬화
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		// Body 제한 (배치 요청 기준)
		BodyLimit: 4 * 1024 * 1024,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.RequestID())       // 1. Request ID
	app.Use(middleware.RequestLogger())   // 2. Request logging + latency metrics
	app.Use(middleware.Recover())         // 3. Panic recovery
	app.Use(middleware.SecurityHeaders()) // 4. Security headers

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// AllowCredentials:true requires explicit origins (not "*")
	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := allowOrigins != "" && allowOrigins != "*"
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health and metrics (no auth required)
	healthHandler := http.NewHealthHandler().
		WithCheck("postgres", pgCheck(deps)).
		WithCheck("redis", redisCheck(deps)).
		WithCheck("mongodb", mongoCheck(deps)).
		WithCheck("neo4j", neo4jCheck(deps))
	healthHandler.Register(app)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1", apiGuards(cfg)...)

	http.NewSentimentHandler(deps.SentimentService).Register(api)

	return app
}

// apiGuards returns the /api/v1 middleware. The limiter comes first so
// unauthenticated traffic is throttled as well.
func apiGuards(cfg *config.Config) []fiber.Handler {
	devUserID := ""
	if cfg.IsDevelopment() {
		devUserID = cfg.DevUserID
	}
	return []fiber.Handler{
		middleware.RateLimit(cfg.RateLimitPerMin),
		middleware.JWTAuth(middleware.AuthConfig{Secret: cfg.JWTSecret, DevUserID: devUserID}),
	}
}

func pgCheck(deps *Dependencies) http.HealthCheck {
	if deps.DB == nil {
		return nil
	}
	return deps.DB.Ping
}

func redisCheck(deps *Dependencies) http.HealthCheck {
	if deps.Redis == nil {
		return nil
	}
	return func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
}

func mongoCheck(deps *Dependencies) http.HealthCheck {
	if deps.MongoDB == nil {
		return nil
	}
	return func(ctx context.Context) error { return deps.MongoDB.Ping(ctx, readpref.Primary()) }
}

func neo4jCheck(deps *Dependencies) http.HealthCheck {
	if deps.Neo4j == nil {
		return nil
	}
	return deps.Neo4j.VerifyConnectivity
}
