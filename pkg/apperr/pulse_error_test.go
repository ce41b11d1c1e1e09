package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"missing field", MissingField("content"), CodeMissingField, http.StatusBadRequest},
		{"batch too large", BatchTooLarge(60, 50), CodeBatchTooLarge, http.StatusBadRequest},
		{"not found", NotFound("insight report"), CodeNotFound, http.StatusNotFound},
		{"queue", QueueError(errors.New("redis down")), CodeQueueError, http.StatusServiceUnavailable},
		{"external", ExternalError("sender graph", nil), CodeExternalError, http.StatusBadGateway},
		{"rate limited", RateLimited(), CodeRateLimited, http.StatusTooManyRequests},
		{"unauthorized", Unauthorized(""), CodeUnauthorized, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.HTTPStatus())
			}
		})
	}
}

func TestBatchTooLargeDetails(t *testing.T) {
	err := BatchTooLarge(60, 50)
	if err.Details["size"] != 60 || err.Details["limit"] != 50 {
		t.Errorf("expected size 60 and limit 50, got %v", err.Details)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("save: %w", DatabaseError("save records", cause))

	if !IsAppError(err) {
		t.Fatal("expected wrapped AppError to be found")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if got := AsAppError(err); got.Code != CodeDatabaseError || got.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("expected %s/500, got %s/%d", CodeDatabaseError, got.Code, got.HTTPStatus())
	}
}

func TestAsAppError_PlainError(t *testing.T) {
	cause := errors.New("boom")
	got := AsAppError(cause)
	if got.Code != CodeInternalError || got.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("expected %s/500, got %s/%d", CodeInternalError, got.Code, got.HTTPStatus())
	}
	if got.Message == cause.Error() {
		t.Error("expected a generic message for plain errors")
	}
	if !errors.Is(got, cause) {
		t.Error("expected cause to be kept")
	}
	if IsAppError(cause) {
		t.Error("expected plain error not to be an AppError")
	}
}
