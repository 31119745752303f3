package apperror

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, method string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/family", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	handler := HTTPErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, rec := newTestContext(t, http.MethodGet)

	handler(ErrFamilyNotFound.WithMessage("family with id abc not found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, float64(404), body["statusCode"])
	assert.Nil(t, body["data"])

	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "family_not_found", errObj["code"])
	assert.Equal(t, "family with id abc not found", errObj["message"])
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	handler := HTTPErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, rec := newTestContext(t, http.MethodGet)

	handler(echo.NewHTTPError(http.StatusConflict, "already a member"), c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	errObj := decodeEnvelope(t, rec)["error"].(map[string]any)
	assert.Equal(t, "conflict", errObj["code"])
	assert.Equal(t, "already a member", errObj["message"])
}

func TestHTTPErrorHandler_UnknownError(t *testing.T) {
	handler := HTTPErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, rec := newTestContext(t, http.MethodGet)

	handler(assert.AnError, c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	errObj := decodeEnvelope(t, rec)["error"].(map[string]any)
	assert.Equal(t, "internal_error", errObj["code"])
}

func TestHTTPErrorHandler_HeadRequestHasNoBody(t *testing.T) {
	handler := HTTPErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
	c, rec := newTestContext(t, http.MethodHead)

	handler(ErrFamilyNotFound, c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}
