package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/recouphq/recoup/internal/errors"
)

// ErrorHandler converts errors attached via c.Error into the standard JSON
// error envelope. Runs after the handler; the last error wins.
func ErrorHandler(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 {
		return
	}

	err := c.Errors.Last().Err
	status, body := ierr.NewErrorResponse(err)
	c.JSON(status, body)
}
