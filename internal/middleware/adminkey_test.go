package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

func adminApp(t *testing.T, keyHash string) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/admin", AdminKey(keyHash), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestAdminKeyAllowsMatchingKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	app := adminApp(t, string(hash))

	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(adminKeyHeader, "s3cret")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, resp.StatusCode)
	}
}

func TestAdminKeyRejectsWrongKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	app := adminApp(t, string(hash))

	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(adminKeyHeader, "wrong")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}

func TestAdminKeyDisabledWithoutHash(t *testing.T) {
	app := adminApp(t, "")

	req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
	req.Header.Set(adminKeyHeader, "anything")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("expected %d got %d", fiber.StatusForbidden, resp.StatusCode)
	}
}
