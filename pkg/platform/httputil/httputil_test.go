package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "agedist/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDesc   string
	}{
		{"upstream outage", dErrors.New(dErrors.CodeBadGateway, "randomuser unavailable"), http.StatusBadGateway, "upstream_unavailable", "randomuser unavailable"},
		{"undecodable batch", dErrors.New(dErrors.CodeBadData, "invalid json"), http.StatusBadGateway, "upstream_bad_data", "invalid json"},
		{"upstream timeout", dErrors.New(dErrors.CodeTimeout, "timed out"), http.StatusGatewayTimeout, "upstream_timeout", "timed out"},
		{"bad input", dErrors.New(dErrors.CodeInvalidInput, "top must be positive"), http.StatusBadRequest, "bad_request", "top must be positive"},
		{"not found", &dErrors.Error{Code: dErrors.CodeNotFound}, http.StatusNotFound, "not_found", ""},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["error"])
			assert.Equal(t, tt.wantDesc, body["error_description"])
		})
	}
}
