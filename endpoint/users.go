package endpoint

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/util"
)

// Sentinel errors for user update operations
var ErrUserEmailAlreadyExists = errors.New("email already exists")

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required" example:"John Doe"`
	Email    string `json:"email" binding:"required,email" example:"john@example.com"`
	Password string `json:"password" binding:"required,min=6" example:"password123"`
	Provider bool   `json:"provider"`
}

type UpdateUserRequest struct {
	Name        string `json:"name" example:"John Doe"`
	Email       string `json:"email" example:"john@example.com"`
	OldPassword string `json:"old_password"`
	Password    string `json:"password" example:"newpassword123"`
	AvatarID    *uint  `json:"avatar_id"`
}

// CreateUser registers a new account. The provider flag marks accounts
// that can receive bookings.
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Provider: req.Provider,
	}
	if err := hashUserPassword(&user, req.Password); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
		return
	}

	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create user", Err: err})
		return
	}

	util.CallSuccessOK(c, user)
}

// UpdateUser edits the authenticated caller's own profile. Changing the
// password requires the current one.
func UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}

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

	if !performUserUpdate(c, db, &user, &req) {
		return
	}

	util.CallSuccessOK(c, user)
}

// ListProviders returns the accounts that can receive bookings.
func ListProviders(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	var providers []model.User
	if err := db.Where("provider = ?", true).Preload("Avatar").Order("name asc").Find(&providers).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to list providers", Err: err})
		return
	}

	util.CallSuccessOK(c, providers)
}

// emailExists reports whether another user already owns the email.
func emailExists(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	err := db.Model(&model.User{}).Where("email = ? AND id <> ?", email, excludeID).Count(&count).Error
	return count > 0, err
}

// validateAndUpdateEmail checks email uniqueness and updates the user model if valid.
// Returns an error without sending HTTP responses, letting the caller handle the response.
func validateAndUpdateEmail(db *gorm.DB, user *model.User, newEmail string) error {
	if newEmail == "" || newEmail == user.Email {
		return nil
	}
	exists, err := emailExists(db, newEmail, user.ID)
	if err != nil {
		return fmt.Errorf("failed to validate email uniqueness: %w", err)
	}
	if exists {
		return ErrUserEmailAlreadyExists
	}
	user.Email = newEmail
	return nil
}

// hashUserPassword generates a salt and hashes the provided password, updating the user model.
func hashUserPassword(user *model.User, plainPassword string) error {
	salt, err := util.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate password salt: %w", err)
	}

	hashedPassword, err := util.HashPassword(plainPassword, salt)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.Password = hashedPassword
	user.PasswordSalt = salt
	return nil
}

// validateAvatar ensures the referenced file exists before attaching it.
func validateAvatar(db *gorm.DB, user *model.User, avatarID *uint) error {
	if avatarID == nil {
		return nil
	}
	var file model.File
	if err := db.First(&file, *avatarID).Error; err != nil {
		return fmt.Errorf("avatar file %d not found", *avatarID)
	}
	user.AvatarID = avatarID
	user.Avatar = &file
	return nil
}

// performUserUpdate applies the requested changes, handling all error responses.
func performUserUpdate(c *gin.Context, db *gorm.DB, user *model.User, req *UpdateUserRequest) bool {
	if err := validateAndUpdateEmail(db, user, req.Email); err != nil {
		if errors.Is(err, ErrUserEmailAlreadyExists) {
			util.CallUserError(c, util.APIErrorParams{Msg: "Email already exists", Err: err})
		} else {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update user", Err: err})
		}
		return false
	}

	if req.Name != "" {
		user.Name = req.Name
	}

	if req.Password != "" {
		match, err := util.VerifyPassword(req.OldPassword, user.Password, user.PasswordSalt)
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Password verification failed", Err: err})
			return false
		}
		if !match {
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: "Current password does not match", Err: fmt.Errorf("old password mismatch")})
			return false
		}
		if err := hashUserPassword(user, req.Password); err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to hash password", Err: err})
			return false
		}
	}

	if err := validateAvatar(db, user, req.AvatarID); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Avatar file not found", Err: err})
		return false
	}

	if err := db.Save(user).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update user", Err: err})
		return false
	}
	return true
}
