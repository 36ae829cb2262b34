package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lubd/app/config"
	"lubd/app/database"
	"lubd/app/middleware"
	puser "lubd/app/platform/user"
	"lubd/pkg/utils"
)

func testApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := database.Open(dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate database: %v", err)
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		return c.Next()
	})

	api := app.Group("/api")
	api.Post("/token/", ObtainTokenPair)
	api.Post("/token/refresh/", RefreshTokenPair)
	api.Post("/auth/register", Register)

	profiles := api.Group("/user-profiles", middleware.AuthMiddleware)
	profiles.Get("/me/", GetCurrentUser)
	profiles.Get("/:user_id/", GetUserProfile)

	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s: %v", path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	resp.Body.Close()
}

func seedAccount(t *testing.T, db *gorm.DB) *database.User {
	t.Helper()

	user := database.User{
		ID:           "42",
		Username:     "alice",
		Positions:    "Technician",
		PasswordHash: utils.HashPassword("hunter22"),
	}
	if err := puser.NewService(db).Create(&user); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return &user
}

func TestObtainTokenPair(t *testing.T) {
	app, db := testApp(t)
	seedAccount(t, db)

	resp := postJSON(t, app, "/api/token/", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decodeBody(t, resp, &pair)

	if pair.Access == "" || pair.Refresh == "" {
		t.Errorf("incomplete token pair: %+v", pair)
	}
}

func TestObtainTokenPairWrongPassword(t *testing.T) {
	app, db := testApp(t)
	seedAccount(t, db)

	resp := postJSON(t, app, "/api/token/", map[string]string{
		"username": "alice",
		"password": "nope",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRefreshTokenPair(t *testing.T) {
	app, db := testApp(t)
	seedAccount(t, db)

	resp := postJSON(t, app, "/api/token/", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	var pair struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	decodeBody(t, resp, &pair)

	resp = postJSON(t, app, "/api/token/refresh/", map[string]string{"refresh": pair.Refresh})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var refreshed struct {
		Access string `json:"access"`
	}
	decodeBody(t, resp, &refreshed)
	if refreshed.Access == "" {
		t.Error("no access token in refresh response")
	}

	// An access token must not pass as a refresh token.
	resp = postJSON(t, app, "/api/token/refresh/", map[string]string{"refresh": pair.Access})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestProfileEndpointRequiresAuth(t *testing.T) {
	app, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/user-profiles/me/", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestProfileEndpointWithBearerToken(t *testing.T) {
	app, db := testApp(t)
	seedAccount(t, db)

	resp := postJSON(t, app, "/api/token/", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	var pair struct {
		Access string `json:"access"`
	}
	decodeBody(t, resp, &pair)

	req := httptest.NewRequest(http.MethodGet, "/api/user-profiles/me/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var profile struct {
		ID        string `json:"id"`
		Username  string `json:"username"`
		Positions string `json:"positions"`
	}
	decodeBody(t, resp, &profile)

	if profile.ID != "42" || profile.Username != "alice" || profile.Positions != "Technician" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestRegister(t *testing.T) {
	app, db := testApp(t)

	resp := postJSON(t, app, "/api/auth/register", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	user, err := puser.NewService(db).GetUserByUsername("bob")
	if err != nil {
		t.Fatalf("lookup registered user: %v", err)
	}
	if user.PasswordHash == "" {
		t.Error("password hash was not stored")
	}

	resp = postJSON(t, app, "/api/auth/register", map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"password": "hunter22",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}
