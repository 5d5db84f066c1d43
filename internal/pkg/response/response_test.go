package response

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCreatedEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Created(rec, map[string]string{"id": "b-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
}

func TestValidationErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationError(rec, map[string]string{"email": "Please enter a valid email address"})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "Please enter a valid email address", resp.Error.Details["email"])
}

func TestTooManyRequestsDefaultMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	TooManyRequests(rec, "")

	resp := decode(t, rec)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too many requests, please try again later", resp.Error.Message)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Guests int `json:"guests"`
	}
	err := DecodeJSON(io.NopCloser(strings.NewReader(`{"guests":2,"admin":true}`)), &dst)
	assert.Error(t, err)

	err = DecodeJSON(io.NopCloser(strings.NewReader(`{"guests":2}`)), &dst)
	require.NoError(t, err)
	assert.Equal(t, 2, dst.Guests)
}
