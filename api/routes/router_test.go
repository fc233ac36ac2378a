package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	escrowsvc "github.com/Zymart/shopbot-backend/internal/escrow"
	"github.com/Zymart/shopbot-backend/pkg/auth"
	"github.com/Zymart/shopbot-backend/pkg/config"
	"github.com/Zymart/shopbot-backend/pkg/db/models"
	"github.com/Zymart/shopbot-backend/pkg/logger"
)

type stubEscrow struct {
	escrowsvc.Service

	listed []string
}

func (s *stubEscrow) ListActiveForUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	s.listed = append(s.listed, userID)
	return []models.Transaction{}, nil
}

func testRouterConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "8080"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "shopbot-test",
			ExpirationMinutes: 15,
		},
	}
}

func newTestRouter(svcs Services) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "routes-test"})
	return NewRouter(testRouterConfig(), logg, nil, nil, svcs)
}

func TestHealthLiveRoute(t *testing.T) {
	router := newTestRouter(Services{})

	r := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}
	if got := w.Header().Get("X-Shopbot-Env"); got != "test" {
		t.Fatalf("unexpected env header %q", got)
	}
}

func TestMetricsRouteExposed(t *testing.T) {
	router := newTestRouter(Services{})

	r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d", w.Code)
	}
}

func TestAPIRejectsMissingToken(t *testing.T) {
	router := newTestRouter(Services{})

	r := httptest.NewRequest(http.MethodGet, "/api/v1/listings/", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 but got %d", w.Code)
	}
}

func TestAPIAcceptsServiceToken(t *testing.T) {
	escrow := &stubEscrow{}
	router := newTestRouter(Services{Escrow: escrow})

	cfg := testRouterConfig()
	token, err := auth.MintServiceToken(cfg.JWT, time.Now(), auth.ServiceTokenPayload{UserID: "user-42"})
	if err != nil {
		t.Fatalf("failed to mint token: %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/active", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 but got %d: %s", w.Code, w.Body.String())
	}
	if len(escrow.listed) != 1 || escrow.listed[0] != "user-42" {
		t.Fatalf("expected list call for user-42, got %v", escrow.listed)
	}
}
