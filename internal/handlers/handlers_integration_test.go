package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"shopfront/internal/database"
	"shopfront/internal/handlers"
	"shopfront/internal/middleware"
	"shopfront/internal/models"
	"shopfront/internal/repositories"
	"shopfront/internal/services"
	"shopfront/pkg/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testJWTSecret     = "test_jwt_secret"
	testAdminEmail    = "admin@shopfront.local"
	testAdminPassword = "admin-password"
)

// fakeUploader stores nothing and hands back a predictable URL.
type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, key, _ string, body io.Reader, _ int64) (*storage.Object, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return nil, err
	}
	f.keys = append(f.keys, key)
	return &storage.Object{Key: key, URL: "https://cdn.test/" + key}, nil
}

type testEnv struct {
	app      *fiber.App
	uploader *fakeUploader
}

// setupApp wires the full handler stack over in-memory stores and an
// in-memory SQLite user table.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	log := zap.NewNop()
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewMockProductRepository()
	orderRepo := repositories.NewMockOrderRepository()
	reviewRepo := repositories.NewMockReviewRepository()
	seedProductsForTest(t, productRepo)

	uploader := &fakeUploader{}
	authService := services.NewAuthService(userRepo, testJWTSecret, services.AdminCredentials{
		Email:    testAdminEmail,
		Password: testAdminPassword,
	}, log)
	productService := services.NewProductService(productRepo, log)
	orderService := services.NewOrderService(orderRepo, productRepo, reviewRepo, nil, nil, log)
	reviewService := services.NewReviewService(reviewRepo, orderRepo, userRepo, uploader, nil, 0, nil, log)
	analyticsService := services.NewAnalyticsService(orderRepo, productRepo)

	app := fiber.New(fiber.Config{ErrorHandler: handlers.NewErrorHandler(log, false)})
	userAuth := middleware.UserAuth(authService)
	adminAuth := middleware.AdminAuth(authService)

	api := app.Group("/api")
	handlers.NewAuthHandler(authService).RegisterRoutes(api)
	handlers.NewProductHandler(productService).RegisterRoutes(api, adminAuth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(api, userAuth, adminAuth)
	handlers.NewReviewHandler(reviewService).RegisterRoutes(api, userAuth)
	handlers.NewAnalyticsHandler(analyticsService).RegisterRoutes(api, adminAuth)

	return &testEnv{app: app, uploader: uploader}
}

// seedProductsForTest populates the catalog with two products of known price.
func seedProductsForTest(t *testing.T, repo repositories.ProductRepository) {
	t.Helper()
	products := []models.Product{
		{ID: "p1", Name: "Linen Shirt", Price: 100, Category: "Men", SubCategory: "Topwear", SellerName: "Acme", Image: []string{"shirt.png"}},
		{ID: "p2", Name: "Cotton Socks", Price: 50, Category: "Women", SubCategory: "Bottomwear", SellerName: "Acme"},
	}
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (e *testEnv) register(t *testing.T, name, email string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/user/register", "", fiber.Map{
		"name": name, "email": email, "password": "password123",
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/user/admin", "", fiber.Map{
		"email": testAdminEmail, "password": testAdminPassword,
	})
	require.Equal(t, http.StatusOK, status, body)
	return body["token"].(string)
}

func (e *testEnv) placeOrder(t *testing.T, token string) string {
	t.Helper()
	status, body := e.do(t, http.MethodPost, "/api/order/place", token, fiber.Map{
		"items": []fiber.Map{
			{"productId": "p1", "size": "M", "quantity": 2},
			{"productId": "p2", "quantity": 1},
		},
		"address":       fiber.Map{"street": "1 Main St", "city": "Springfield"},
		"paymentMethod": "COD",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Order Placed", body["message"])
	return body["orderId"].(string)
}

// reviewForm builds the multipart body the storefront submits.
func reviewForm(t *testing.T, fields map[string]string, image []byte, imageType string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="photo.PNG"`)
		h.Set("Content-Type", imageType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func (e *testEnv) addReview(t *testing.T, token string, fields map[string]string, image []byte, imageType string) (int, map[string]interface{}) {
	t.Helper()
	body, contentType := reviewForm(t, fields, image, imageType)
	req := httptest.NewRequest(http.MethodPost, "/api/review/add", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(middleware.TokenHeader, token)
	return e.send(t, req)
}

func TestAuthRegisterAndLogin(t *testing.T) {
	env := setupApp(t)
	env.register(t, "Alice", "alice@example.com")

	status, body := env.do(t, http.MethodPost, "/api/user/login", "", fiber.Map{
		"email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	status, body = env.do(t, http.MethodPost, "/api/user/register", "", fiber.Map{
		"name": "Alice", "email": "alice@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = env.do(t, http.MethodPost, "/api/user/login", "", fiber.Map{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.NotEqual(t, http.StatusOK, status)
	assert.Equal(t, false, body["success"])
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "Alice", "alice@example.com")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"missing user token", http.MethodGet, "/api/review/eligible", ""},
		{"garbage user token", http.MethodPost, "/api/order/userOrders", "not-a-token"},
		{"missing admin token", http.MethodPost, "/api/order/list", ""},
		{"user token on admin route", http.MethodGet, "/api/order/unviewed-count", userToken},
		{"user token on analytics", http.MethodGet, "/api/analytics/dashboard", userToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Not Authorized Login Again", body["message"])
		})
	}
}

func TestAdminTokenIsNotAUserToken(t *testing.T) {
	env := setupApp(t)
	status, _ := env.do(t, http.MethodPost, "/api/order/userOrders", env.adminToken(t), nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestOrderReviewLifecycle(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "Alice", "alice@example.com")
	admin := env.adminToken(t)

	orderID := env.placeOrder(t, userToken)

	status, body := env.do(t, http.MethodPost, "/api/order/userOrders", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	orders := body["orders"].([]interface{})
	require.Len(t, orders, 1)
	assert.Equal(t, 250.0, orders[0].(map[string]interface{})["amount"])

	// Nothing is reviewable until the order is delivered.
	status, body = env.do(t, http.MethodGet, "/api/review/eligible", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, body["products"])

	status, body = env.do(t, http.MethodPost, "/api/order/status", admin, fiber.Map{
		"orderId": orderID, "status": "Delivered",
	})
	require.Equal(t, http.StatusOK, status, body)

	status, body = env.do(t, http.MethodGet, "/api/review/eligible", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 2)

	status, body = env.addReview(t, userToken, map[string]string{
		"productId": "p1", "orderId": orderID, "rating": "4",
	}, nil, "")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Review added successfully", body["message"])

	status, body = env.do(t, http.MethodGet, "/api/review/product/p1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["totalReviews"])
	assert.Equal(t, 4.0, body["averageRating"])
	reviews := body["reviews"].([]interface{})
	require.Len(t, reviews, 1)
	assert.Equal(t, "Alice", reviews[0].(map[string]interface{})["userName"])
	assert.Nil(t, reviews[0].(map[string]interface{})["comment"])

	status, body = env.do(t, http.MethodGet, "/api/review/eligible", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	eligible := body["products"].([]interface{})
	require.Len(t, eligible, 1)
	assert.Equal(t, "p2", eligible[0].(map[string]interface{})["productId"])

	status, body = env.do(t, http.MethodPost, "/api/order/userOrders", userToken, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["orders"].([]interface{})[0].(map[string]interface{})["items"].([]interface{})
	for _, raw := range items {
		item := raw.(map[string]interface{})
		assert.Equal(t, item["productId"] == "p1", item["reviewed"], item["productId"])
	}

	status, body = env.addReview(t, userToken, map[string]string{
		"productId": "p1", "comment": "again",
	}, nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "You have already reviewed this product", body["message"])
}

func TestAddReviewWithImage(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "Bob", "bob@example.com")

	status, body := env.addReview(t, userToken, map[string]string{
		"productId": "p2", "comment": "Soft",
	}, []byte("\x89PNG fake"), "image/png")
	require.Equal(t, http.StatusOK, status, body)

	review := body["review"].(map[string]interface{})
	image := review["image"].(map[string]interface{})
	require.Len(t, env.uploader.keys, 1)
	assert.Equal(t, "https://cdn.test/"+env.uploader.keys[0], image["url"])
	assert.Regexp(t, `^reviews/.+\.png$`, env.uploader.keys[0])
}

func TestAddReviewRejectsBadInput(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "Bob", "bob@example.com")

	tests := []struct {
		name      string
		fields    map[string]string
		image     []byte
		imageType string
		message   string
	}{
		{"no rating or comment", map[string]string{"productId": "p1"}, nil, "", "Please provide a rating or comment"},
		{"rating out of range", map[string]string{"productId": "p1", "rating": "6"}, nil, "", "Rating must be between 1 and 5"},
		{"rating not a number", map[string]string{"productId": "p1", "rating": "five"}, nil, "", "Rating must be a whole number between 1 and 5"},
		{"missing product", map[string]string{"rating": "3"}, nil, "", "Product ID is required"},
		{"non-image upload", map[string]string{"productId": "p1", "rating": "3"}, []byte("%PDF"), "application/pdf", "Only image files are allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.addReview(t, userToken, tt.fields, tt.image, tt.imageType)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
	assert.Empty(t, env.uploader.keys)
}

func TestAdminOrderListAndNotifications(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "Alice", "alice@example.com")
	admin := env.adminToken(t)
	orderID := env.placeOrder(t, userToken)

	status, body := env.do(t, http.MethodPost, "/api/order/list", admin, fiber.Map{"dateRange": "today"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["orders"], 1)

	status, body = env.do(t, http.MethodPost, "/api/order/list", admin, fiber.Map{"status": "Cancelled"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Empty(t, body["orders"])

	status, body = env.do(t, http.MethodPost, "/api/order/list", admin, fiber.Map{"dateRange": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = env.do(t, http.MethodGet, "/api/order/unviewed-count", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1.0, body["count"])

	status, body = env.do(t, http.MethodPost, "/api/order/mark-viewed", admin, fiber.Map{"orderIds": []string{orderID}})
	require.Equal(t, http.StatusOK, status, body)

	status, body = env.do(t, http.MethodGet, "/api/order/unviewed-count", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 0.0, body["count"])

	status, body = env.do(t, http.MethodPost, "/api/order/status", admin, fiber.Map{
		"orderId": orderID, "status": "Lost",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestAnalyticsEndpoints(t *testing.T) {
	env := setupApp(t)
	userToken := env.register(t, "Alice", "alice@example.com")
	admin := env.adminToken(t)
	env.placeOrder(t, userToken)

	status, body := env.do(t, http.MethodGet, "/api/analytics/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	dashboard := body["dashboard"].(map[string]interface{})
	assert.Equal(t, 1.0, dashboard["totalOrders"])
	assert.Equal(t, 250.0, dashboard["totalRevenue"])
	assert.Equal(t, 2.0, dashboard["totalProducts"])

	status, body = env.do(t, http.MethodGet, "/api/analytics/summary?days=7&paymentMethod=COD", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	summary := body["analytics"].(map[string]interface{})
	payments := summary["revenueByPaymentMethod"].([]interface{})
	require.Len(t, payments, 1)
	assert.Equal(t, 250.0, payments[0].(map[string]interface{})["revenue"])

	status, body = env.do(t, http.MethodGet, "/api/analytics/summary?days=-1", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	status, body = env.do(t, http.MethodGet, "/api/seller/performance", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	sellers := body["sellers"].([]interface{})
	require.Len(t, sellers, 1)
	assert.Equal(t, "Acme", sellers[0].(map[string]interface{})["name"])
	assert.Equal(t, 250.0, sellers[0].(map[string]interface{})["revenue"])
}

func TestProductRoutes(t *testing.T) {
	env := setupApp(t)
	admin := env.adminToken(t)

	status, body := env.do(t, http.MethodPost, "/api/product/add", admin, fiber.Map{
		"name": "Wool Scarf", "price": 30, "category": "Women",
	})
	require.Equal(t, http.StatusOK, status, body)

	added := body["product"].(map[string]interface{})
	productID := added["_id"].(string)

	status, body = env.do(t, http.MethodPost, "/api/product/update", admin, fiber.Map{
		"_id": productID, "name": "Wool Scarf", "price": 35, "category": "Women", "sellername": "Knitters",
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Product Updated", body["message"])

	status, body = env.do(t, http.MethodPost, "/api/product/single", "", fiber.Map{"productId": productID})
	require.Equal(t, http.StatusOK, status, body)
	updated := body["product"].(map[string]interface{})
	assert.Equal(t, 35.0, updated["price"])
	assert.Equal(t, "Knitters", updated["sellername"])

	status, body = env.do(t, http.MethodPost, "/api/product/update", admin, fiber.Map{
		"_id": uuid.NewString(), "name": "Ghost Item", "price": 10, "category": "Men",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", body["message"])

	status, _ = env.do(t, http.MethodPost, "/api/product/update", "", fiber.Map{"_id": productID})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body = env.do(t, http.MethodGet, "/api/product/list", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["products"], 3)

	status, body = env.do(t, http.MethodPost, "/api/product/single", "", fiber.Map{"productId": "missing"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Product not found", body["message"])
}
