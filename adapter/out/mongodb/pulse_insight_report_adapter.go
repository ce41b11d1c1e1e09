package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Insight Report Adapter
// =============================================================================

const (
	collectionInsightReports = "sentiment_insight_reports"

	// Overviews larger than this are gzipped
	reportCompressionThreshold = 512
)

// InsightReportAdapter implements out.InsightReportRepository using MongoDB.
type InsightReportAdapter struct {
	collection *mongo.Collection
}

var _ out.InsightReportRepository = (*InsightReportAdapter)(nil)

// NewInsightReportAdapter creates a new MongoDB insight report adapter.
func NewInsightReportAdapter(db *mongo.Database) *InsightReportAdapter {
	return &InsightReportAdapter{collection: db.Collection(collectionInsightReports)}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *InsightReportAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// =============================================================================
// Document Model
// =============================================================================

type insightReportDocument struct {
	ID     string `bson:"id"`
	UserID string `bson:"user_id"`
	Source string `bson:"source"`

	// Headline numbers kept uncompressed for ad-hoc queries
	TotalAnalyzed int `bson:"total_analyzed"`
	AlertCount    int `bson:"alert_count"`

	// Overview JSON, possibly gzipped
	Content      []byte `bson:"content"`
	IsCompressed bool   `bson:"is_compressed"`

	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Save upserts a snapshot.
func (a *InsightReportAdapter) Save(ctx context.Context, report *out.InsightReportEntity) error {
	doc, err := toDocument(report)
	if err != nil {
		return fmt.Errorf("failed to convert insight report to document: %w", err)
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := a.collection.ReplaceOne(ctx, bson.M{"id": report.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save insight report: %w", err)
	}
	return nil
}

// GetLatestByUser returns the newest snapshot, or nil when there is none.
func (a *InsightReportAdapter) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*out.InsightReportEntity, error) {
	findOpts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var doc insightReportDocument
	err := a.collection.FindOne(ctx, bson.M{"user_id": userID.String()}, findOpts).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest insight report: %w", err)
	}
	return toEntity(&doc)
}

// =============================================================================
// Helper Functions
// =============================================================================

func toDocument(entity *out.InsightReportEntity) (*insightReportDocument, error) {
	content, err := json.Marshal(entity.Overview)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overview: %w", err)
	}

	isCompressed := false
	if len(content) > reportCompressionThreshold {
		content, err = compress(content)
		if err != nil {
			return nil, fmt.Errorf("failed to compress overview: %w", err)
		}
		isCompressed = true
	}

	return &insightReportDocument{
		ID:            entity.ID,
		UserID:        entity.UserID.String(),
		Source:        entity.Source,
		TotalAnalyzed: entity.Overview.Statistics.TotalAnalyzed,
		AlertCount:    len(entity.Overview.Alerts),
		Content:       content,
		IsCompressed:  isCompressed,
		CreatedAt:     entity.CreatedAt,
		ExpiresAt:     entity.ExpiresAt,
	}, nil
}

func toEntity(doc *insightReportDocument) (*out.InsightReportEntity, error) {
	userID, err := uuid.Parse(doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	content := doc.Content
	if doc.IsCompressed {
		content, err = decompress(content)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress overview: %w", err)
		}
	}

	var overview domain.Overview
	if len(content) > 0 {
		if err := json.Unmarshal(content, &overview); err != nil {
			return nil, fmt.Errorf("failed to unmarshal overview: %w", err)
		}
	}

	return &out.InsightReportEntity{
		ID:        doc.ID,
		UserID:    userID,
		Source:    doc.Source,
		Overview:  overview,
		CreatedAt: doc.CreatedAt,
		ExpiresAt: doc.ExpiresAt,
	}, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
