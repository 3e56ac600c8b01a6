package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/orderdesk/internal/api/requestctx"
	"github.com/orderdesk/orderdesk/internal/service"
	"github.com/orderdesk/orderdesk/internal/support/i18n"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		key    string
	}{
		{service.ErrNotFound, http.StatusNotFound, "error.order_not_found"},
		{service.ErrRejected, http.StatusConflict, "error.order_rejected"},
		{fmt.Errorf("%w: disk full", service.ErrStoreUpdate), http.StatusBadGateway, "error.store_update_failed"},
		{service.ErrInvalidCredentials, http.StatusUnauthorized, "error.invalid_credentials"},
		{service.ErrRateLimited, http.StatusTooManyRequests, "error.too_many_requests"},
		{fmt.Errorf("%w: bad status", service.ErrInvalidInput), http.StatusBadRequest, "error.bad_request"},
		{errors.New("boom"), http.StatusInternalServerError, "error.internal_server_error"},
	}
	for _, tc := range cases {
		status, key := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.key, key, tc.err.Error())
	}
}

func TestRespondErrorI18nActionTranslates(t *testing.T) {
	mgr, err := i18n.NewManager()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	ctx := requestctx.WithLanguage(t.Context(), "pt-BR")
	RespondErrorI18nAction(ctx, rec, http.StatusConflict, "order.advance", "error.order_rejected", mgr)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "order.advance", body["action"])
	assert.Equal(t, mgr.Translate("pt-BR", "error.order_rejected"), body["error"])
	assert.NotEqual(t, "error.order_rejected", body["error"])
}

func TestRespondErrorWithoutManagerFallsBackToKey(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondErrorI18nAction(t.Context(), rec, http.StatusNotFound, "order.detail", "error.order_not_found", nil)
	assert.Contains(t, rec.Body.String(), `"error":"error.order_not_found"`)
}
