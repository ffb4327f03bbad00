package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/slotwise/booking-api/config"
	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/util"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// Login authenticates a user with email and password and issues a signed
// bearer token with a fixed expiry. Unknown e-mail and wrong password get
// the same response so the endpoint does not leak which accounts exist.
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var user model.User
	err := db.Preload("Avatar").Where("email = ?", req.Email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Email and/or password are incorrect", Err: fmt.Errorf("user not found")})
		return
	}
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database error", Err: err})
		return
	}

	match, err := util.VerifyPassword(req.Password, user.Password, user.PasswordSalt)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Password verification failed", Err: err})
		return
	}
	if !match {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Email and/or password are incorrect", Err: fmt.Errorf("invalid password")})
		return
	}

	token, err := util.CreateToken(user.ID, config.LoadConfig().JWTExpiry)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	util.CallSuccessOK(c, gin.H{
		"user":  user,
		"token": token,
	})
}
