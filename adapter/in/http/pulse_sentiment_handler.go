package http

import (
	"fmt"
	"strings"

	"pulse_server/core/domain"
	"pulse_server/core/port/in"
	"pulse_server/pkg/apperr"
	"pulse_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// SentimentHandler exposes sentiment analysis over HTTP.
type SentimentHandler struct {
	sentimentService in.SentimentService
}

// NewSentimentHandler creates a new sentiment handler.
func NewSentimentHandler(sentimentService in.SentimentService) *SentimentHandler {
	return &SentimentHandler{
		sentimentService: sentimentService,
	}
}

// Register registers sentiment routes.
func (h *SentimentHandler) Register(router fiber.Router) {
	sentiment := router.Group("/sentiment")

	sentiment.Post("/analyze", h.Analyze)
	sentiment.Post("/analyze/batch", h.AnalyzeBatch)

	sentiment.Get("/overview", h.Overview)
	sentiment.Post("/overview", h.Overview)
	sentiment.Get("/urgent", h.Urgent)
	sentiment.Post("/urgent", h.Urgent)

	sentiment.Get("/history", h.History)
	sentiment.Get("/senders/:email", h.SenderProfile)
	sentiment.Get("/reports/latest", h.LatestReport)
	sentiment.Post("/jobs", h.EnqueueBatch)
}

// =============================================================================
// Requests
// =============================================================================

// AnalyzeRequest is the body of POST /analyze.
type AnalyzeRequest struct {
	Content string  `json:"content"`
	Subject *string `json:"subject,omitempty"`
}

// BatchRequest is the body of the batch endpoints.
type BatchRequest struct {
	Emails []domain.EmailInput `json:"emails"`
}

// OverviewRequest is the body of POST /overview.
type OverviewRequest struct {
	Records []domain.EmailSentimentRecord `json:"records"`
}

// =============================================================================
// Handlers
// =============================================================================

// Analyze classifies a single email.
func (h *SentimentHandler) Analyze(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperr.MissingField("content")
	}

	result, err := h.sentimentService.AnalyzeEmail(c.UserContext(), userID, domain.EmailInput{
		Content: req.Content,
		Subject: req.Subject,
	})
	if err != nil {
		return err
	}
	return response.OK(c, result)
}

// AnalyzeBatch classifies a list of emails in order.
func (h *SentimentHandler) AnalyzeBatch(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	emails, err := parseEmails(c, true)
	if err != nil {
		return err
	}

	records, err := h.sentimentService.AnalyzeEmails(c.UserContext(), userID, emails)
	if err != nil {
		return err
	}
	return response.OK(c, records)
}

// Overview returns statistics and insights for the posted records or the user's data.
func (h *SentimentHandler) Overview(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	var records []domain.EmailSentimentRecord
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		var req OverviewRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.BadRequest("invalid request body")
		}
		records = make([]domain.EmailSentimentRecord, len(req.Records))
		for i, r := range req.Records {
			r.Analysis = r.Analysis.Normalize()
			records[i] = r
		}
	}

	overview, err := h.sentimentService.Overview(c.UserContext(), userID, records)
	if err != nil {
		return err
	}
	return response.OK(c, overview)
}

// Urgent returns emails that need attention, ranked by urgency score.
func (h *SentimentHandler) Urgent(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	var emails []domain.EmailInput
	if c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		if emails, err = parseEmails(c, false); err != nil {
			return err
		}
	}

	urgent, err := h.sentimentService.UrgentEmails(c.UserContext(), userID, emails)
	if err != nil {
		return err
	}
	return response.OK(c, urgent)
}

// History pages through stored analyses.
func (h *SentimentHandler) History(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	page := response.GetPagination(c, defaultHistoryLimit, maxHistoryLimit)
	records, total, err := h.sentimentService.History(c.UserContext(), userID, page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return response.OKWithMeta(c, records, response.NewMeta(total, page))
}

// SenderProfile returns the sentiment distribution for one sender.
func (h *SentimentHandler) SenderProfile(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	sender := strings.TrimSpace(c.Params("email"))
	if sender == "" {
		return apperr.MissingField("email")
	}

	profile, err := h.sentimentService.SenderProfile(c.UserContext(), userID, sender)
	if err != nil {
		return err
	}
	return response.OK(c, profile)
}

// LatestReport returns the most recent stored overview.
func (h *SentimentHandler) LatestReport(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	report, err := h.sentimentService.LatestReport(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, report)
}

// EnqueueBatch queues a batch for the worker.
func (h *SentimentHandler) EnqueueBatch(c *fiber.Ctx) error {
	userID, err := GetUserID(c)
	if err != nil {
		return err
	}

	emails, err := parseEmails(c, true)
	if err != nil {
		return err
	}

	jobID, err := h.sentimentService.EnqueueBatch(c.UserContext(), userID, emails)
	if err != nil {
		return err
	}
	return response.Accepted(c, fiber.Map{"job_id": jobID})
}

// parseEmails decodes a BatchRequest and checks each email has content.
func parseEmails(c *fiber.Ctx, required bool) ([]domain.EmailInput, error) {
	var req BatchRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperr.BadRequest("invalid request body")
	}
	if required && len(req.Emails) == 0 {
		return nil, apperr.MissingField("emails")
	}
	for i, e := range req.Emails {
		if strings.TrimSpace(e.Content) == "" {
			return nil, apperr.MissingField(fmt.Sprintf("emails[%d].content", i))
		}
	}
	return req.Emails, nil
}
