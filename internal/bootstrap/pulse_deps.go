package bootstrap

import (
	"context"
	"time"

	"pulse_server/adapter/out/graph"
	"pulse_server/adapter/out/mongodb"
	"pulse_server/adapter/out/persistence"
	"pulse_server/config"
	"pulse_server/core/agent/llm"
	"pulse_server/core/port/out"
	"pulse_server/core/service/sentiment"
	"pulse_server/infra/database"
	"pulse_server/internal/stream"
	"pulse_server/pkg/cache"
	"pulse_server/pkg/logger"
	"pulse_server/pkg/metrics"
	"pulse_server/pkg/resilience"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const neo4jDatabase = "neo4j"

type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client
	Neo4j   neo4j.DriverWithContext

	// Repositories
	SentimentRepo out.SentimentRepository
	ReportRepo    out.InsightReportRepository
	SenderGraph   out.SenderGraph

	// Messaging
	Stream       *stream.RedisStream
	JobPublisher out.JobPublisher

	// Services
	Classifier       *sentiment.Classifier
	SentimentService *sentiment.Service
}

// NewDependencies connects every configured store. Stores without a URL are
// skipped and the service runs without them.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// PostgreSQL
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.DB = db
		cleanups = append(cleanups, db.Close)

		logger.Debug("Connecting to database via sqlx...")
		sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.SQLDB = sqlDB
		cleanups = append(cleanups, func() { sqlDB.Close() })

		if err := metrics.RegisterDBPool("postgres", sqlDB.DB); err != nil {
			logger.Warn("Failed to register postgres pool metrics: %v", err)
		}

		sentimentAdapter := persistence.NewSentimentAdapter(sqlDB)
		if err := sentimentAdapter.EnsureSchema(ctx); err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.SentimentRepo = sentimentAdapter
		logger.Info("PostgreSQL sentiment repository initialized")
	} else {
		logger.Warn("DATABASE_URL not set, sentiment history disabled")
	}

	// Redis
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })

			deps.Stream = stream.NewRedisStream(redisClient, stream.ConsumerGroup, stream.ReadOptions{
				Count:         int64(cfg.ConsumerCount),
				Block:         time.Duration(cfg.ConsumerBlockMS) * time.Millisecond,
				ClaimInterval: time.Duration(cfg.ConsumerPendingCheckSec) * time.Second,
				MinIdle:       time.Duration(cfg.ConsumerPendingIdleSec) * time.Second,
				MaxDeliveries: int64(cfg.ConsumerMaxRetries),
			})
			deps.JobPublisher = stream.NewProducer(deps.Stream)
		}
	}

	// MongoDB
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL)
		if err != nil {
			logger.Warn("MongoDB connection failed: %v", err)
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			reportAdapter := mongodb.NewInsightReportAdapter(mongoClient.Database(cfg.MongoDBName))
			if err := reportAdapter.EnsureIndexes(ctx); err != nil {
				logger.Warn("Failed to ensure MongoDB indexes: %v", err)
			}
			deps.ReportRepo = reportAdapter
			logger.Info("MongoDB insight report repository initialized")
		}
	}

	// Neo4j
	if cfg.Neo4jURL != "" {
		neo4jDriver, err := graph.NewDriver(cfg.Neo4jURL, cfg.Neo4jUsername, cfg.Neo4jPassword)
		if err != nil {
			logger.Warn("Neo4j connection failed: %v", err)
		} else {
			deps.Neo4j = neo4jDriver
			cleanups = append(cleanups, func() {
				neo4jDriver.Close(context.Background())
			})

			graphAdapter := graph.NewSenderGraphAdapter(neo4jDriver, neo4jDatabase)
			if err := graphAdapter.EnsureIndexes(ctx); err != nil {
				logger.Warn("Failed to ensure Neo4j indexes: %v", err)
			}
			deps.SenderGraph = graphAdapter
			logger.Info("Neo4j sender graph initialized")
		}
	}

	classifier, err := newClassifier(cfg, deps.Redis)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	deps.Classifier = classifier

	deps.SentimentService = sentiment.NewService(
		classifier,
		deps.SentimentRepo,
		deps.ReportRepo,
		deps.SenderGraph,
		deps.JobPublisher,
		sentiment.ServiceConfig{MaxBatch: cfg.SentimentMaxBatch},
	)

	return deps, cleanup, nil
}

func newClassifier(cfg *config.Config, redisClient *redis.Client) (*sentiment.Classifier, error) {
	gen, err := llm.NewFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	opts := []sentiment.ClassifierOption{
		sentiment.WithTimeout(cfg.LLMTimeout()),
		sentiment.WithBreaker(resilience.NewBreaker(resilience.DefaultBreakerConfig("llm-" + cfg.LLMProvider))),
	}
	if redisClient != nil {
		opts = append(opts, sentiment.WithResultCache(cache.NewRedisResultCache(redisClient), cfg.SentimentCacheTTL()))
	}

	classifier := sentiment.NewClassifier(gen, opts...)
	if gen == nil {
		logger.Warn("No API key for LLM provider %s, using keyword classification only", cfg.LLMProvider)
	} else {
		logger.Info("Sentiment classifier initialized: %s", classifier)
	}
	return classifier, nil
}
