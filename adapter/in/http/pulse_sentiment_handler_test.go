package http

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"pulse_server/core/port/out"
	"pulse_server/core/service/sentiment"
	"pulse_server/infra/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type fakePublisher struct {
	jobs []*out.SentimentBatchJob
	err  error
}

func (f *fakePublisher) PublishSentimentBatch(ctx context.Context, job *out.SentimentBatchJob) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, job)
	return "1-0", nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
		Limit int `json:"limit"`
	} `json:"meta"`
}

func newSentimentApp(t *testing.T, pub out.JobPublisher, maxBatch int) *fiber.App {
	t.Helper()
	svc := sentiment.NewService(sentiment.NewClassifier(nil), nil, nil, nil, pub, sentiment.ServiceConfig{MaxBatch: maxBatch})

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(),
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})
	api := app.Group("/api/v1", middleware.JWTAuth(middleware.AuthConfig{DevUserID: uuid.NewString()}))
	NewSentimentHandler(svc).Register(api)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, env
}

func TestSentimentHandler_Validation(t *testing.T) {
	app := newSentimentApp(t, &fakePublisher{}, 2)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"analyze without content", "POST", "/api/v1/sentiment/analyze", `{"subject":"hi"}`, 400, "MISSING_FIELD"},
		{"analyze invalid json", "POST", "/api/v1/sentiment/analyze", `{`, 400, "BAD_REQUEST"},
		{"batch empty", "POST", "/api/v1/sentiment/analyze/batch", `{"emails":[]}`, 400, "MISSING_FIELD"},
		{"batch missing content", "POST", "/api/v1/sentiment/analyze/batch", `{"emails":[{"id":"1","content":" "}]}`, 400, "MISSING_FIELD"},
		{
			"batch over limit", "POST", "/api/v1/sentiment/analyze/batch",
			`{"emails":[{"id":"1","content":"a"},{"id":"2","content":"b"},{"id":"3","content":"c"}]}`,
			400, "BATCH_TOO_LARGE",
		},
		{"jobs empty", "POST", "/api/v1/sentiment/jobs", `{"emails":[]}`, 400, "MISSING_FIELD"},
		{"sender profile without graph", "GET", "/api/v1/sentiment/senders/a@example.com", "", 404, "NOT_FOUND"},
		{"latest report without store", "GET", "/api/v1/sentiment/reports/latest", "", 404, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := doRequest(t, app, tt.method, tt.path, tt.body)
			if status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, status)
			}
			if env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("expected code %s, got %+v", tt.wantCode, env.Error)
			}
		})
	}
}

func TestSentimentHandler_Analyze(t *testing.T) {
	app := newSentimentApp(t, nil, 0)

	status, env := doRequest(t, app, "POST", "/api/v1/sentiment/analyze",
		`{"content":"Thank you so much, this is excellent work!","subject":"Great"}`)
	if status != 200 || !env.Success {
		t.Fatalf("expected success, got %d", status)
	}

	var result struct {
		Sentiment  string   `json:"sentiment"`
		Confidence float64  `json:"confidence"`
		Reasoning  string   `json:"reasoning"`
		KeyPhrases []string `json:"keyPhrases"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Sentiment != "positive" {
		t.Errorf("expected positive, got %q", result.Sentiment)
	}
	if result.Confidence != 0.6 {
		t.Errorf("expected fallback confidence 0.6, got %v", result.Confidence)
	}
	if result.Reasoning != "Basic keyword-based analysis" {
		t.Errorf("unexpected reasoning %q", result.Reasoning)
	}
	if result.KeyPhrases == nil {
		t.Error("expected keyPhrases to be an empty list, got null")
	}
}

func TestSentimentHandler_AnalyzeBatchPreservesOrder(t *testing.T) {
	app := newSentimentApp(t, nil, 0)

	status, env := doRequest(t, app, "POST", "/api/v1/sentiment/analyze/batch",
		`{"emails":[{"id":"a","content":"hello"},{"id":"b","content":"thanks, great"},{"id":"c","content":"urgent please"}]}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var records []struct {
		EmailID string `json:"emailId"`
	}
	if err := json.Unmarshal(env.Data, &records); err != nil {
		t.Fatalf("failed to decode records: %v", err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.EmailID)
	}
	if got := strings.Join(ids, ","); got != "a,b,c" {
		t.Errorf("expected order a,b,c, got %s", got)
	}
}

func TestSentimentHandler_OverviewUsesDemoData(t *testing.T) {
	app := newSentimentApp(t, nil, 0)

	for _, method := range []string{"GET", "POST"} {
		t.Run(method, func(t *testing.T) {
			status, env := doRequest(t, app, method, "/api/v1/sentiment/overview", "")
			if status != 200 {
				t.Fatalf("expected 200, got %d", status)
			}
			var overview struct {
				Statistics struct {
					TotalAnalyzed int `json:"totalAnalyzed"`
					TrendData     []any
				} `json:"statistics"`
				Source string `json:"source"`
			}
			if err := json.Unmarshal(env.Data, &overview); err != nil {
				t.Fatalf("failed to decode overview: %v", err)
			}
			if overview.Source != sentiment.SourceDemo {
				t.Errorf("expected demo source, got %q", overview.Source)
			}
			if overview.Statistics.TotalAnalyzed != 5 {
				t.Errorf("expected 5 demo records, got %d", overview.Statistics.TotalAnalyzed)
			}
			if len(overview.Statistics.TrendData) != 35 {
				t.Errorf("expected 35 trend rows, got %d", len(overview.Statistics.TrendData))
			}
		})
	}
}

func TestSentimentHandler_OverviewFromPostedRecords(t *testing.T) {
	app := newSentimentApp(t, nil, 0)

	body := `{"records":[
		{"emailId":"1","timestamp":"2026-01-01T00:00:00Z","analysis":{"sentiment":"negative","confidence":0.9,"emotion":"anger","urgencyLevel":"low"}},
		{"emailId":"2","timestamp":"2026-01-01T00:00:00Z","analysis":{"sentiment":"bogus","confidence":3,"emotion":"calm","urgencyLevel":"??"}}
	]}`
	status, env := doRequest(t, app, "POST", "/api/v1/sentiment/overview", body)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}

	var overview struct {
		Statistics struct {
			Negative          int     `json:"negative"`
			Neutral           int     `json:"neutral"`
			AverageConfidence float64 `json:"averageConfidence"`
		} `json:"statistics"`
		Source string `json:"source"`
	}
	if err := json.Unmarshal(env.Data, &overview); err != nil {
		t.Fatalf("failed to decode overview: %v", err)
	}
	if overview.Source != sentiment.SourceRequest {
		t.Errorf("expected request source, got %q", overview.Source)
	}
	if overview.Statistics.Negative != 1 || overview.Statistics.Neutral != 1 {
		t.Errorf("unexpected counters %+v", overview.Statistics)
	}
	if got := overview.Statistics.AverageConfidence; got < 0.9499 || got > 0.9501 {
		t.Errorf("expected clamped average 0.95, got %v", overview.Statistics.AverageConfidence)
	}
}

func TestSentimentHandler_UrgentUsesDemoData(t *testing.T) {
	app := newSentimentApp(t, nil, 0)

	status, env := doRequest(t, app, "GET", "/api/v1/sentiment/urgent", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var urgent []struct {
		UrgencyScore float64 `json:"urgencyScore"`
	}
	if err := json.Unmarshal(env.Data, &urgent); err != nil {
		t.Fatalf("failed to decode urgent emails: %v", err)
	}
	if len(urgent) == 0 {
		t.Fatal("expected urgent demo emails")
	}
	for i := 1; i < len(urgent); i++ {
		if urgent[i].UrgencyScore > urgent[i-1].UrgencyScore {
			t.Errorf("expected descending scores, got %v", urgent)
		}
	}
}

func TestSentimentHandler_History(t *testing.T) {
	app := newSentimentApp(t, nil, 0)

	status, env := doRequest(t, app, "GET", "/api/v1/sentiment/history?limit=500", "")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var records []any
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &records); err != nil {
			t.Fatalf("failed to decode history: %v", err)
		}
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
	if env.Meta == nil || env.Meta.Limit != maxHistoryLimit {
		t.Errorf("expected limit capped at %d, got %+v", maxHistoryLimit, env.Meta)
	}
}

func TestSentimentHandler_EnqueueBatch(t *testing.T) {
	pub := &fakePublisher{}
	app := newSentimentApp(t, pub, 0)

	status, env := doRequest(t, app, "POST", "/api/v1/sentiment/jobs", `{"emails":[{"id":"a","content":"hello"}]}`)
	if status != fiber.StatusAccepted {
		t.Fatalf("expected 202, got %d", status)
	}
	var data struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("failed to decode job: %v", err)
	}
	if len(pub.jobs) != 1 || pub.jobs[0].JobID != data.JobID {
		t.Errorf("expected published job %q, got %+v", data.JobID, pub.jobs)
	}

	failing := newSentimentApp(t, &fakePublisher{err: errors.New("redis down")}, 0)
	status, env = doRequest(t, failing, "POST", "/api/v1/sentiment/jobs", `{"emails":[{"id":"a","content":"hello"}]}`)
	if status != fiber.StatusServiceUnavailable || env.Error == nil || env.Error.Code != "QUEUE_ERROR" {
		t.Errorf("expected 503 QUEUE_ERROR, got %d %+v", status, env.Error)
	}
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name       string
		check      HealthCheck
		wantStatus int
	}{
		{"healthy", func(ctx context.Context) error { return nil }, 200},
		{"unhealthy", func(ctx context.Context) error { return errors.New("down") }, 503},
		{"not configured", nil, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			NewHealthHandler().WithCheck("postgres", tt.check).Register(app)

			resp, err := app.Test(httptest.NewRequest("GET", "/ready", nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
		})
	}
}
