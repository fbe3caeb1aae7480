package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "control-secret"

func newGuardedApp(secret string) *fiber.App {
	app := fiber.New()
	app.Post("/control", Guard(secret), func(c *fiber.Ctx) error {
		operator, _ := c.Locals("operator").(string)
		return c.JSON(fiber.Map{"operator": operator})
	})
	return app
}

func signToken(t *testing.T, secret, operator string, expiry time.Duration) string {
	t.Helper()
	claims := Claims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestGuardAcceptsValidToken(t *testing.T) {
	app := newGuardedApp(testSecret)

	req := httptest.NewRequest("POST", "/control", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "race-control", time.Hour))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGuardRejectsMissingToken(t *testing.T) {
	app := newGuardedApp(testSecret)

	resp, err := app.Test(httptest.NewRequest("POST", "/control", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGuardRejectsWrongSecret(t *testing.T) {
	app := newGuardedApp(testSecret)

	req := httptest.NewRequest("POST", "/control", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "race-control", time.Hour))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGuardRejectsExpiredToken(t *testing.T) {
	app := newGuardedApp(testSecret)

	req := httptest.NewRequest("POST", "/control", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "race-control", -time.Hour))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGuardRejectsMalformedHeader(t *testing.T) {
	app := newGuardedApp(testSecret)

	req := httptest.NewRequest("POST", "/control", nil)
	req.Header.Set("Authorization", "Token abc")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestGuardDisabledWithoutSecret(t *testing.T) {
	app := newGuardedApp("")

	resp, err := app.Test(httptest.NewRequest("POST", "/control", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 without guard, got %d", resp.StatusCode)
	}
}

func TestGuardParseFailure(t *testing.T) {
	original := parseClaimsFn
	parseClaimsFn = func(string, jwt.Claims, jwt.Keyfunc, ...jwt.ParserOption) (*jwt.Token, error) {
		return nil, errors.New("parser exploded")
	}
	defer func() { parseClaimsFn = original }()

	app := newGuardedApp(testSecret)
	req := httptest.NewRequest("POST", "/control", nil)
	req.Header.Set("Authorization", "Bearer whatever")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
