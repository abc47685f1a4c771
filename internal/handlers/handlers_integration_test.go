package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"lavka/internal/handlers"
	"lavka/internal/middleware"
	"lavka/internal/models"
	"lavka/internal/repositories"
	"lavka/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles the app with the stores behind it so tests can arrange
// state directly.
type testEnv struct {
	app         *fiber.App
	authService *services.AuthService
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	reviewRepo  repositories.ReviewRepository
	products    []models.Product
}

// setupApp sets up a Fiber app for testing with in-memory SQLite and all
// handlers/services wired the way main does it.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	viper.SetDefault("JWT_SECRET", "test_jwt_secret")
	viper.AutomaticEnv()
	jwtSecret := viper.GetString("JWT_SECRET")

	// A distinct shared-cache DSN per test keeps state from leaking between tests
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect to in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Review{}); err != nil {
		t.Fatalf("failed to auto-migrate database: %v", err)
	}

	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	reviewRepo := repositories.NewGORMReviewRepository(db)

	authService := services.NewAuthService(userRepo, services.NewBcryptHasher(), jwtSecret, time.Hour, nil)
	catalogService := services.NewCatalogService(productRepo)
	reviewService := services.NewReviewService(reviewRepo, productRepo, userRepo, nil)

	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(catalogService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	app := fiber.New()
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authHandler.RegisterRoutes(api)
	productHandler.RegisterRoutes(api)
	reviewHandler.RegisterRoutes(api)

	reviewHandler.RegisterProtectedRoutes(api, middleware.AuthRequired(authService))

	return &testEnv{
		app:         app,
		authService: authService,
		userRepo:    userRepo,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
		products:    seedProductsForTest(t, productRepo),
	}
}

// seedProductsForTest populates the product repository for tests.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) []models.Product {
	t.Helper()
	products := []models.Product{
		{Name: "Office Chair", Description: "Ergonomic swivel chair", Category: "furniture", Image: "/img/chair.jpg", Price: 124900, Stock: "in stock", Specs: models.SpecMap{"color": "red", "legs": 4}},
		{Name: "Desk Lamp", Description: "LED desk lamp", Category: "lighting", Image: "/img/lamp.jpg", Price: 45900, Stock: "in stock", Specs: models.SpecMap{"color": "white"}},
	}
	for i := range products {
		if err := products[i].EncodeSpecs(); err != nil {
			t.Fatalf("failed to encode specs: %v", err)
		}
		if err := repo.Create(&products[i]); err != nil {
			t.Fatalf("failed to seed product %s: %v", products[i].Name, err)
		}
	}
	return products
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func jsonRequest(method, target string, payload interface{}) *http.Request {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var parsed map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return parsed
}

// registerAndLogin creates an account and returns its token and user ID.
func registerAndLogin(t *testing.T, env *testEnv, username string) (string, string) {
	t.Helper()
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/register", map[string]string{
		"username":  username,
		"email":     username + "@example.com",
		"password":  "password123",
		"full_name": "Test User",
		"phone":     "+100000000",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeBody(t, resp)
	userID, _ := registered["user_id"].(string)
	assert.NotEmpty(t, userID)

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": "password123",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decodeBody(t, resp)
	token, _ := loggedIn["access_token"].(string)
	assert.NotEmpty(t, token)
	return token, userID
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupApp(t)

	userPayload := map[string]string{
		"username":  "testuser",
		"email":     "test@example.com",
		"password":  "password123",
		"full_name": "Test User",
		"phone":     "+100000000",
	}
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/register", userPayload), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	registered := decodeBody(t, resp)
	assert.Equal(t, true, registered["success"])
	assert.NotEmpty(t, registered["user_id"])

	// Duplicate registration fails with 400 and the error envelope
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/register", userPayload), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	duplicated := decodeBody(t, resp)
	assert.Equal(t, false, duplicated["success"])
	assert.NotEmpty(t, duplicated["message"])

	// Missing field fails with 400
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/register", map[string]string{
		"username": "incomplete",
		"password": "password123",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Login returns a token plus the user object
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/login", map[string]string{
		"username": "testuser",
		"password": "password123",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decodeBody(t, resp)
	assert.Equal(t, true, loggedIn["success"])
	assert.NotEmpty(t, loggedIn["access_token"])
	user, ok := loggedIn["user"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "testuser", user["username"])
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "Test User", user["full_name"])
	assert.NotEmpty(t, user["id"])

	// The issued token validates back to the same identity
	claims, err := env.authService.ValidateToken(loggedIn["access_token"].(string))
	assert.NoError(t, err)
	assert.Equal(t, "testuser", claims["username"])

	// Wrong password yields 401
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/login", map[string]string{
		"username": "testuser",
		"password": "wrongpassword",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginAcceptsFormEncoding(t *testing.T) {
	env := setupApp(t)
	registerAndLogin(t, env, "formuser")

	form := url.Values{}
	form.Set("username", "formuser")
	form.Set("password", "password123")
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loggedIn := decodeBody(t, resp)
	assert.NotEmpty(t, loggedIn["access_token"])
}

func TestProductEndpoints(t *testing.T) {
	env := setupApp(t)

	// Full catalog
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/products", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decodeBody(t, resp)
	products, ok := listing["products"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, products, 2)

	// Category filter
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/products?category=lighting", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	listing = decodeBody(t, resp)
	products = listing["products"].([]interface{})
	assert.Len(t, products, 1)
	assert.Equal(t, "Desk Lamp", products[0].(map[string]interface{})["name"])

	// "all" sentinel disables the filter
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/products?category=all", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	listing = decodeBody(t, resp)
	assert.Len(t, listing["products"].([]interface{}), 2)

	// Single product with its specs mapping round-tripped
	chair := env.products[0]
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/products/"+chair.ID, nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	fetched := decodeBody(t, resp)
	assert.Equal(t, chair.ID, fetched["id"])
	specs, ok := fetched["specs"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, "red", specs["color"])
	assert.Equal(t, float64(4), specs["legs"])

	// Unknown product yields 404 with the error envelope
	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/products/99999", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	missing := decodeBody(t, resp)
	assert.Equal(t, false, missing["success"])
	assert.NotEmpty(t, missing["message"])
}

func TestReviewEndpoints(t *testing.T) {
	env := setupApp(t)
	token, userID := registerAndLogin(t, env, "reviewer")
	chair := env.products[0]

	// Submission requires a token
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/reviews", map[string]interface{}{
		"product_id": chair.ID,
		"rating":     5,
		"text":       "solid chair",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// Authenticated submission succeeds and is attributed to the token identity
	req := jsonRequest(http.MethodPost, "/api/reviews", map[string]interface{}{
		"product_id": chair.ID,
		"rating":     5,
		"text":       "solid chair",
	})
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	assert.Equal(t, true, created["success"])
	assert.NotEmpty(t, created["review_id"])

	persisted, err := env.reviewRepo.ListByProduct(chair.ID)
	assert.NoError(t, err)
	assert.Len(t, persisted, 1)
	assert.Equal(t, userID, persisted[0].UserID)

	// Out-of-range rating fails with 400 and persists nothing
	req = jsonRequest(http.MethodPost, "/api/reviews", map[string]interface{}{
		"product_id": chair.ID,
		"rating":     6,
		"text":       "too enthusiastic",
	})
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Unknown product fails with 404 and persists nothing
	req = jsonRequest(http.MethodPost, "/api/reviews", map[string]interface{}{
		"product_id": "99999",
		"rating":     4,
		"text":       "ghost product",
	})
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = env.app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	persisted, err = env.reviewRepo.ListByProduct(chair.ID)
	assert.NoError(t, err)
	assert.Len(t, persisted, 1)
}

func TestReviewListingOrderAndFormat(t *testing.T) {
	env := setupApp(t)
	_, userID := registerAndLogin(t, env, "chronicler")
	chair := env.products[0]

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"first", "second", "third"} {
		assert.NoError(t, env.reviewRepo.Create(&models.Review{
			UserID:    userID,
			ProductID: chair.ID,
			Rating:    4,
			Text:      text,
			CreatedAt: base.AddDate(0, 0, i),
		}))
	}

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/products/"+chair.ID+"/reviews", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decodeBody(t, resp)
	reviews, ok := listing["reviews"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, reviews, 3)

	// Newest first, dates rendered as DD.MM.YYYY, author name resolved
	newest := reviews[0].(map[string]interface{})
	assert.Equal(t, "third", newest["text"])
	assert.Equal(t, "03.08.2026", newest["created_at"])
	assert.Equal(t, "chronicler", newest["user_name"])
	assert.Equal(t, float64(4), newest["rating"])

	assert.Equal(t, "second", reviews[1].(map[string]interface{})["text"])
	assert.Equal(t, "first", reviews[2].(map[string]interface{})["text"])
	assert.Equal(t, "01.08.2026", reviews[2].(map[string]interface{})["created_at"])
}

func TestHealthAndUserListing(t *testing.T) {
	env := setupApp(t)
	registerAndLogin(t, env, "diagnosed")

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	health := decodeBody(t, resp)
	assert.Equal(t, "ok", health["status"])

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/users", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	listing := decodeBody(t, resp)
	users, ok := listing["users"].([]interface{})
	assert.True(t, ok)
	assert.Len(t, users, 1)
	entry := users[0].(map[string]interface{})
	assert.Equal(t, "diagnosed", entry["username"])
	assert.NotEmpty(t, entry["id"])
	assert.NotEmpty(t, entry["email"])
	assert.NotContains(t, entry, "password_hash")
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	env := setupApp(t)

	// A path that matches no route must 404, not trip the token guard
	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/api/reviews/extra/segments", nil), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The guarded route itself still rejects tokenless requests
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/reviews", map[string]interface{}{
		"product_id": env.products[0].ID,
		"rating":     5,
		"text":       "no token",
	}), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}
