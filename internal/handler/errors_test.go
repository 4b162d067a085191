package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/tocook/internal/middleware"
	"github.com/hitoshi/tocook/internal/model"
)

func TestMapAPIErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  *model.APIError
		want int
	}{
		{model.NewUnauthorizedError(), http.StatusUnauthorized},
		{model.NewTokenExpiredError(), http.StatusUnauthorized},
		{model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{model.NewTaskNotFoundError(1), http.StatusNotFound},
		{model.NewValidationError([]model.FieldError{{Field: "title", Message: "too short"}}), http.StatusUnprocessableEntity},
		{model.NewInvalidRequestError("bad"), http.StatusBadRequest},
		{model.NewUsernameTakenError("alice"), http.StatusConflict},
		{model.NewRateLimitedError(), http.StatusTooManyRequests},
		{model.NewInternalError(), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			if got := mapAPIErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("mapAPIErrorToHTTPStatus(%s) = %d, want %d", tt.err.Code, got, tt.want)
			}
		})
	}
}

func TestHandleServiceError_WrappedAPIError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todo/todo/1", nil)

	handleServiceError(rec, req, fmt.Errorf("lookup: %w", model.NewTaskNotFoundError(1)))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != model.ErrCodeTaskNotFound {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeTaskNotFound)
	}
}

func TestHandleServiceError_UnauthorizedSetsChallenge(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/token", nil)

	handleServiceError(rec, req, model.NewInvalidCredentialsError())

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want %q", got, "Bearer")
	}
}

func TestHandleServiceError_UnknownErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/todo/", nil)

	handleServiceError(rec, req, errors.New("pq: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("response leaks internal error: %s", rec.Body.String())
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Title    string `json:"title"`
		Priority int    `json:"priority"`
	}

	tests := []struct {
		name      string
		body      string
		wantCode  string
		wantField string
	}{
		{name: "valid", body: `{"title":"abc","priority":3}`},
		{name: "empty", body: ``, wantCode: model.ErrCodeInvalidRequest},
		{name: "malformed", body: `{"title":`, wantCode: model.ErrCodeInvalidRequest},
		{name: "too large", body: `{"title":"` + strings.Repeat("a", maxRequestBodyBytes) + `"}`, wantCode: model.ErrCodeInvalidRequest},
		{name: "string for int", body: `{"title":"abc","priority":"high"}`, wantCode: model.ErrCodeValidationFailed, wantField: "priority"},
		{name: "float for int", body: `{"title":"abc","priority":3.0}`, wantCode: model.ErrCodeValidationFailed, wantField: "priority"},
		{name: "number for string", body: `{"title":42}`, wantCode: model.ErrCodeValidationFailed, wantField: "title"},
		{name: "array body", body: `[1,2]`, wantCode: model.ErrCodeValidationFailed, wantField: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload

			err := decodeJSON(rec, req, &dst)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("decodeJSON() error = %v", err)
				}
				return
			}
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Fatalf("error = %v, want %s", err, tt.wantCode)
			}
			if tt.wantField != "" {
				if len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != tt.wantField {
					t.Errorf("fields = %+v, want %q", apiErr.Fields, tt.wantField)
				}
			}
		})
	}
}
