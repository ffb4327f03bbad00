package endpoint

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/slotwise/booking-api/notification"
	"github.com/slotwise/booking-api/util"
)

// notificationsPageSize caps the notification listing at the most recent entries.
const notificationsPageSize = 20

// ListNotifications returns the provider's most recent notifications,
// newest first. Non-provider callers are rejected.
func ListNotifications(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	userID, ok := getUserIDOrRespond(c)
	if !ok {
		return
	}

	user, err := loadUserByID(db, userID)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load user", Err: err})
		return
	}
	if !user.Provider {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "You are not allowed to view this resource", Err: fmt.Errorf("user %d is not a provider", userID)})
		return
	}

	store, ok := getNotificationStoreOrRespond(c)
	if !ok {
		return
	}

	notifications, err := store.ListRecent(c.Request.Context(), userID, notificationsPageSize)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list notifications", Err: err})
		return
	}

	util.CallSuccessOK(c, notifications)
}

// MarkNotificationRead flags a notification as read and returns the
// updated document.
func MarkNotificationRead(c *gin.Context) {
	if _, ok := getUserIDOrRespond(c); !ok {
		return
	}
	store, ok := getNotificationStoreOrRespond(c)
	if !ok {
		return
	}

	updated, err := store.MarkRead(c.Request.Context(), c.Param("id"))
	if errors.Is(err, notification.ErrNotFound) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid identifier.", Err: err})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update notification", Err: err})
		return
	}

	util.CallSuccessOK(c, updated)
}
