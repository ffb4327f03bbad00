package endpoint_test

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/slotwise/booking-api/endpoint"
	"github.com/slotwise/booking-api/middleware"
	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/notification"
	"github.com/slotwise/booking-api/queue"
	"github.com/slotwise/booking-api/util"
)

// testEnv bundles everything an endpoint test talks to.
type testEnv struct {
	Router *gin.Engine
	DB     *gorm.DB
	Store  *notification.MemoryStore
	Queue  *queue.Queue
}

// setupEndpointTest builds an in-memory database, an in-memory notification
// store, a local job queue and a router with the full route table, mirroring
// the wiring in main.go.
func setupEndpointTest(t *testing.T) testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:endpoint_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.File{}, &model.Appointment{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	store := notification.NewMemoryStore()
	q := queue.New(nil)

	r := gin.New()
	r.Use(middleware.DatabaseMiddleware(db))
	r.Use(middleware.NotificationStoreMiddleware(store))
	r.Use(middleware.QueueMiddleware(q))

	r.POST("/sessions", endpoint.Login)
	r.POST("/users", endpoint.CreateUser)

	auth := r.Group("/")
	auth.Use(middleware.Authenticate())
	{
		auth.PUT("/users", endpoint.UpdateUser)
		auth.GET("/providers", endpoint.ListProviders)
		auth.GET("/appointments", endpoint.ListAppointments)
		auth.POST("/appointments", endpoint.CreateAppointment)
		auth.DELETE("/appointments/:id", endpoint.CancelAppointment)
		auth.GET("/schedule", endpoint.Schedule)
		auth.GET("/available/:providerId", endpoint.ListAvailability)
		auth.GET("/notifications", endpoint.ListNotifications)
		auth.PUT("/notifications/:id", endpoint.MarkNotificationRead)
		auth.POST("/files", endpoint.UploadFile)
	}

	return testEnv{Router: r, DB: db, Store: store, Queue: q}
}

type requestParams struct {
	method  string
	path    string
	body    []byte
	headers map[string]string
}

// doRequest performs an in-process HTTP request against the router.
func doRequest(r *gin.Engine, params requestParams) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(params.method, params.path, bytes.NewReader(params.body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range params.headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

// createTestUser inserts an account with the password "password123".
func createTestUser(t *testing.T, db *gorm.DB, name, email string, provider bool) model.User {
	t.Helper()

	user := model.User{Name: name, Email: email, Provider: provider}
	salt, err := util.GenerateSalt()
	if err != nil {
		t.Fatalf("failed to generate salt: %v", err)
	}
	hash, err := util.HashPassword("password123", salt)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user.Password = hash
	user.PasswordSalt = salt

	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// authHeader returns the Authorization header for the user.
func authHeader(t *testing.T, userID uint) map[string]string {
	t.Helper()
	token, err := util.CreateToken(userID, time.Hour)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

// createTestAppointment inserts an active appointment row directly.
func createTestAppointment(t *testing.T, db *gorm.DB, userID, providerID uint, date time.Time) model.Appointment {
	t.Helper()
	key := model.SlotKeyFor(providerID, date)
	a := model.Appointment{UserID: userID, ProviderID: providerID, Date: date, SlotKey: &key}
	if err := db.Create(&a).Error; err != nil {
		t.Fatalf("failed to create test appointment: %v", err)
	}
	return a
}
