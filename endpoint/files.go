package endpoint

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/slotwise/booking-api/config"
	"github.com/slotwise/booking-api/model"
	"github.com/slotwise/booking-api/util"
)

// UploadFile stores a multipart upload under the configured upload
// directory with a generated name and records it, so it can be referenced
// as a user avatar.
func UploadFile(c *gin.Context) {
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	if _, ok := getUserIDOrRespond(c); !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "File is required", Err: err})
		return
	}

	cfg := config.LoadConfig()
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to prepare upload directory", Err: err})
		return
	}

	storedName := uuid.NewString() + filepath.Ext(fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, filepath.Join(cfg.UploadDir, storedName)); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to store file", Err: err})
		return
	}

	file := model.File{
		Name: fileHeader.Filename,
		Path: storedName,
	}
	if err := db.Create(&file).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record file", Err: fmt.Errorf("file insert: %w", err)})
		return
	}

	util.CallSuccessOK(c, file)
}
