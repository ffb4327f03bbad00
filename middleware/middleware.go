package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/slotwise/booking-api/notification"
	"github.com/slotwise/booking-api/queue"
	"github.com/slotwise/booking-api/util"
)

// Context keys for request-scoped values.
const (
	DBKey                = "db"
	NotificationStoreKey = "notification_store"
	QueueKey             = "queue"
	UserIDKey            = "user_id"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE, PUT")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware injects the gorm handle into the request context.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(DBKey, db)
		c.Next()
	}
}

// GetDB returns the request-scoped gorm handle, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(DBKey); ok {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return nil
}

// NotificationStoreMiddleware injects the notification document store.
func NotificationStoreMiddleware(store notification.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(NotificationStoreKey, store)
		c.Next()
	}
}

// GetNotificationStore returns the request-scoped notification store, or nil.
func GetNotificationStore(c *gin.Context) notification.Store {
	if v, ok := c.Get(NotificationStoreKey); ok {
		if store, ok := v.(notification.Store); ok {
			return store
		}
	}
	return nil
}

// QueueMiddleware injects the deferred-job queue.
func QueueMiddleware(q *queue.Queue) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(QueueKey, q)
		c.Next()
	}
}

// GetQueue returns the request-scoped job queue, or nil.
func GetQueue(c *gin.Context) *queue.Queue {
	if v, ok := c.Get(QueueKey); ok {
		if q, ok := v.(*queue.Queue); ok {
			return q
		}
	}
	return nil
}

// Authenticate validates the bearer token on the Authorization header and
// attaches the caller's account id to the context. Absent, malformed and
// expired tokens all reject with 401.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Token not provided", Err: fmt.Errorf("missing authorization header")})
			c.Abort()
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid token", Err: fmt.Errorf("malformed authorization header")})
			c.Abort()
			return
		}

		userID, err := util.ParseToken(tokenString)
		if err != nil {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid token", Err: err})
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// GetUserID returns the authenticated caller's account id from the context.
func GetUserID(c *gin.Context) (uint, bool) {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(uint); ok && id != 0 {
			return id, true
		}
	}
	return 0, false
}
