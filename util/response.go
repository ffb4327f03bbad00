package util

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIErrorParams carries the client-facing message and the underlying error
// for an error response. Msg is what the client sees; Err goes to the log.
type APIErrorParams struct {
	Msg string
	Err error
}

func callError(c *gin.Context, status int, params APIErrorParams) {
	if params.Err != nil {
		Logger().WithField("status", status).Debug(params.Err)
	}
	c.JSON(status, gin.H{"error": params.Msg})
}

// CallUserError returns a 400 for malformed input or a business-rule violation.
func CallUserError(c *gin.Context, params APIErrorParams) {
	callError(c, http.StatusBadRequest, params)
}

// CallUserNotAuthorized returns a 401 for missing credentials, wrong role or wrong owner.
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	callError(c, http.StatusUnauthorized, params)
}

// CallErrorNotFound returns a 404 for an unknown identifier.
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	callError(c, http.StatusNotFound, params)
}

// CallServerError returns a 500 for unexpected failures.
func CallServerError(c *gin.Context, params APIErrorParams) {
	callError(c, http.StatusInternalServerError, params)
}

// CallSuccessOK returns the payload directly with status 200.
func CallSuccessOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
