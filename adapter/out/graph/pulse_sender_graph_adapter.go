package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pulse_server/core/domain"
	"pulse_server/core/port/out"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// =============================================================================
// Neo4j Sender Graph Adapter
// =============================================================================

// SenderGraphAdapter implements out.SenderGraph using Neo4j.
//
//	(:Sender {user_id, email})-[:EXPRESSED {count, last_seen_at}]->(:Sentiment {name})
type SenderGraphAdapter struct {
	driver neo4j.DriverWithContext
	dbName string
}

var _ out.SenderGraph = (*SenderGraphAdapter)(nil)

// NewSenderGraphAdapter creates a new Neo4j sender graph adapter.
func NewSenderGraphAdapter(driver neo4j.DriverWithContext, dbName string) *SenderGraphAdapter {
	return &SenderGraphAdapter{
		driver: driver,
		dbName: dbName,
	}
}

// EnsureIndexes creates necessary indexes and constraints.
func (a *SenderGraphAdapter) EnsureIndexes(ctx context.Context) error {
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	queries := []string{
		`CREATE INDEX sender_user_email_idx IF NOT EXISTS FOR (s:Sender) ON (s.user_id, s.email)`,
		`CREATE CONSTRAINT sentiment_name_unique IF NOT EXISTS FOR (m:Sentiment) REQUIRE m.name IS UNIQUE`,
	}

	for _, query := range queries {
		if _, err := session.Run(ctx, query, nil); err != nil {
			return fmt.Errorf("failed to ensure sender graph index: %w", err)
		}
	}
	return nil
}

// edgeRows folds records into one row per (sender, sentiment).
func edgeRows(records []domain.EmailSentimentRecord) []map[string]any {
	type key struct {
		sender    string
		sentiment domain.Sentiment
	}
	order := make([]key, 0)
	counts := make(map[key]int)
	lastSeen := make(map[key]int64)

	for _, r := range records {
		sender := normalizeSender(r.Sender)
		if sender == "" {
			continue
		}
		k := key{sender: sender, sentiment: r.Analysis.Sentiment}
		if _, ok := counts[k]; !ok {
			order = append(order, k)
		}
		counts[k]++
		if ts := r.Timestamp.UnixMilli(); ts > lastSeen[k] {
			lastSeen[k] = ts
		}
	}

	rows := make([]map[string]any, 0, len(order))
	for _, k := range order {
		rows = append(rows, map[string]any{
			"sender":    k.sender,
			"sentiment": string(k.sentiment),
			"count":     int64(counts[k]),
			"lastSeen":  lastSeen[k],
		})
	}
	return rows
}

// RecordSentiments increments sender->sentiment edges for the records.
func (a *SenderGraphAdapter) RecordSentiments(ctx context.Context, userID uuid.UUID, records []domain.EmailSentimentRecord) error {
	rows := edgeRows(records)
	if len(rows) == 0 {
		return nil
	}

	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	query := `
		UNWIND $rows AS row
		MERGE (s:Sender {user_id: $userID, email: row.sender})
		MERGE (m:Sentiment {name: row.sentiment})
		MERGE (s)-[r:EXPRESSED]->(m)
		ON CREATE SET r.count = 0, r.last_seen_at = 0
		SET r.count = r.count + row.count,
			r.last_seen_at = CASE WHEN row.lastSeen > r.last_seen_at THEN row.lastSeen ELSE r.last_seen_at END
	`

	_, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID.String(),
		"rows":   rows,
	})
	if err != nil {
		return fmt.Errorf("failed to record sender sentiments: %w", err)
	}
	return nil
}

// GetSenderProfile returns nil when the sender has no recorded sentiments.
func (a *SenderGraphAdapter) GetSenderProfile(ctx context.Context, userID uuid.UUID, sender string) (*domain.SenderProfile, error) {
	session := a.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: a.dbName})
	defer session.Close(ctx)

	query := `
		MATCH (s:Sender {user_id: $userID, email: $email})-[r:EXPRESSED]->(m:Sentiment)
		RETURN m.name AS sentiment, r.count AS count, r.last_seen_at AS last_seen_at
	`

	email := normalizeSender(sender)
	result, err := session.Run(ctx, query, map[string]interface{}{
		"userID": userID.String(),
		"email":  email,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get sender profile: %w", err)
	}

	counts := make(map[domain.Sentiment]int)
	var lastSeen *time.Time
	for result.Next(ctx) {
		record := result.Record()
		s, ok := domain.ParseSentiment(getStringValue(record, "sentiment"))
		if !ok {
			continue
		}
		counts[s] += getIntValue(record, "count")
		if ms := getInt64Value(record, "last_seen_at"); ms > 0 {
			t := time.UnixMilli(ms).UTC()
			if lastSeen == nil || t.After(*lastSeen) {
				lastSeen = &t
			}
		}
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sender profile: %w", err)
	}
	if len(counts) == 0 {
		return nil, nil
	}

	return domain.NewSenderProfile(email, counts, lastSeen), nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func normalizeSender(sender string) string {
	return strings.ToLower(strings.TrimSpace(sender))
}

func getStringValue(record *neo4j.Record, key string) string {
	if val, ok := record.Get(key); ok && val != nil {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return ""
}

func getIntValue(record *neo4j.Record, key string) int {
	return int(getInt64Value(record, key))
}

func getInt64Value(record *neo4j.Record, key string) int64 {
	if val, ok := record.Get(key); ok && val != nil {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}
