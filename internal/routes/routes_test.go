package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/rupeelink/rupeelink/internal/config"
	"github.com/rupeelink/rupeelink/internal/ledger"
	"github.com/rupeelink/rupeelink/internal/logging"
	"github.com/rupeelink/rupeelink/internal/middleware"
	"github.com/rupeelink/rupeelink/internal/notification"
)

const (
	testJWTSecret = "routes-test-secret"
	testAdminKey  = "routes-admin-key"
)

type nopSink struct{}

func (nopSink) Enqueue(notification.Alert) {}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminKey), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin key: %v", err)
	}

	cfg := config.Config{
		AppName:              "rupeelink-test",
		AppEnv:               "development",
		JWTSecret:            testJWTSecret,
		AdminKeyHash:         string(hash),
		Rates:                config.DefaultRates(),
		LargeWithdrawalLimit: decimal.New(1_000_000, 0),
		TransferWindow:       10 * time.Minute,
		TransferThreshold:    3,
	}

	app := fiber.New()
	err = Setup(app, Deps{
		Cfg:    cfg,
		Store:  ledger.NewMemory(),
		Alerts: nopSink{},
		Logger: logging.Discard(),
	})
	if err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func bearerToken(t *testing.T, accountID string) string {
	t.Helper()
	token, err := middleware.SignHS256(map[string]any{
		"sub": accountID,
		"exp": time.Now().Add(time.Hour).Unix(),
	}, []byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + token
}

func TestPingIsPublic(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/ping", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("ping status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}

func TestWalletRoutesRequireAuth(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/v1/wallets", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
}

func TestCreateWalletAndDeposit(t *testing.T) {
	app := setupApp(t)
	auth := bearerToken(t, "11111111-2222-4333-8444-555555555555")

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/wallets", nil)
	req.Header.Set(fiber.HeaderAuthorization, auth)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, fiber.StatusCreated)
	}

	body := strings.NewReader(`{"amount": "250", "currency": "INR"}`)
	req = httptest.NewRequest(fiber.MethodPost, "/api/v1/payments/deposit", body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, auth)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		t.Fatalf("deposit status = %d, body %s", resp.StatusCode, payload)
	}

	var decoded map[string]any
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestAdminRoutesRequireKey(t *testing.T) {
	app := setupApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/admin/total-balances", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/api/v1/admin/total-balances", nil)
	req.Header.Set("Admin-Key", testAdminKey)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test with key: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status with key = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
}
