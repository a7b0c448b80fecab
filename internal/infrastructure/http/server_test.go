package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	handlers "github.com/wekeepgrowing/vipgate/internal/adapter/handler/http"
	"github.com/wekeepgrowing/vipgate/internal/config"
	"github.com/wekeepgrowing/vipgate/internal/infrastructure/telegram"
	"github.com/wekeepgrowing/vipgate/internal/usecase"
	"go.uber.org/zap"
)

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, *telegram.Update) error { return nil }

func newTestServer(adminSecret string, updatesPerSecond float64) *Server {
	cfg := &config.Config{
		Service:  config.ServiceConfig{Name: "vipgate"},
		Telegram: config.TelegramConfig{WebhookSecret: "s3cret", UpdatesPerSecond: updatesPerSecond},
		Admin:    config.AdminConfig{JWTSecret: adminSecret},
	}
	logger := zap.NewNop()
	return NewServer(cfg, logger, Handlers{
		Webhook:  handlers.NewWebhookHandler(nil, nil, nil, logger),
		Telegram: handlers.NewTelegramHandler(noopDispatcher{}, "s3cret", logger),
		Admin:    handlers.NewAdminHandler(usecase.NewCatalogService(nil, logger), logger),
	})
}

func serve(s *Server, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{"update_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	s := newTestServer("", 20)

	rec := serve(s, http.MethodGet, HealthPath, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"vipgate"}`, rec.Body.String())
}

func TestServer_AdminAPI(t *testing.T) {
	disabled := newTestServer("", 20)
	assert.Equal(t, http.StatusNotFound, serve(disabled, http.MethodGet, "/api/v1/admin/offerings", nil).Code)

	enabled := newTestServer("admin-secret", 20)
	assert.Equal(t, http.StatusUnauthorized, serve(enabled, http.MethodGet, "/api/v1/admin/offerings", nil).Code)
}

func TestServer_TelegramUpdatesAreRateLimited(t *testing.T) {
	s := newTestServer("", 1)
	header := http.Header{handlers.SecretTokenHeader: []string{"s3cret"}}

	assert.Equal(t, http.StatusOK, serve(s, http.MethodPost, TelegramWebhookPath, header).Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodPost, TelegramWebhookPath, header).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(s, http.MethodPost, TelegramWebhookPath, header).Code)
}
