package handlers

import (
	"github.com/gin-gonic/gin"

	"mrp-api-server/internal/apperr"
)

// respondError maps a service error onto the HTTP status and the uniform
// error envelope. Unexpected errors surface as a generic 500 message.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.Message(err)})
}
