package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/slotwise/booking-api/middleware"
	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/notification"
	"github.com/slotwise/booking-api/util"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func getUserIDOrRespond(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Invalid token", Err: fmt.Errorf("no authenticated user in context")})
		return 0, false
	}
	return userID, true
}

func getNotificationStoreOrRespond(c *gin.Context) (notification.Store, bool) {
	store := middleware.GetNotificationStore(c)
	if store == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Notification store not available", Err: fmt.Errorf("notification store is nil")})
		return nil, false
	}
	return store, true
}

func loadUserByID(db *gorm.DB, id uint) (model.User, error) {
	var user model.User
	err := db.Preload("Avatar").First(&user, id).Error
	return user, err
}
