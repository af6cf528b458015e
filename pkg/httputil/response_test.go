package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rivalscope/rivalscope/internal/domain"
)

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestJSON_NonSuccessStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusAccepted, nil)
	assert.True(t, decodeResponse(t, rec).Success)

	rec = httptest.NewRecorder()
	JSON(rec, http.StatusNotModified, nil)
	assert.False(t, decodeResponse(t, rec).Success)
}

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusBadRequest, "VALIDATION_ERROR", "url is required", map[string]any{"field": "url"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "url is required", resp.Error.Message)
	assert.Equal(t, "url", resp.Error.Details["field"])
}

func TestErrorFromDomain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "not found",
			err:        domain.NotFoundError("competitor", "abc"),
			wantStatus: http.StatusNotFound,
			wantCode:   domain.ErrCodeNotFound,
		},
		{
			name:       "conflict",
			err:        domain.AlreadyExistsError("competitor", "url", "https://acme.test"),
			wantStatus: http.StatusConflict,
			wantCode:   domain.ErrCodeConflict,
		},
		{
			name:       "job conflict",
			err:        domain.JobConflictError("abc"),
			wantStatus: http.StatusConflict,
			wantCode:   domain.ErrCodeJobConflict,
		},
		{
			name:       "validation",
			err:        domain.ValidationError("url", "url is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.ErrCodeValidation,
		},
		{
			name:       "plain error is masked",
			err:        errors.New("pq: connection refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			ErrorFromDomain(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantCode == domain.ErrCodeInternal {
				assert.NotContains(t, resp.Error.Message, "pq:", "internal causes never leak")
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		URL  string `json:"url"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme","url":"https://acme.test"}`))
		var p payload
		require.NoError(t, DecodeJSON(req, &p))
		assert.Equal(t, "Acme", p.Name)
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme","extra":true}`))
		var p payload
		assert.Error(t, DecodeJSON(req, &p))
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
		var p payload
		assert.Error(t, DecodeJSON(req, &p))
	})
}
