package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Success: code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondError writes {success:false, error}. Unknown errors that are not a
// StorageError are reported as a generic server error.
func RespondError(c *gin.Context, err error) {
	code := StatusFor(err)
	msg := err.Error()

	var se *StorageError
	if code >= 500 && !errors.As(err, &se) {
		msg = "Server error"
	}
	if code >= 500 {
		ErrorLogger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
	}

	c.AbortWithStatusJSON(code, JSONResponse{
		Success: false,
		Error:   msg,
	})
}
