package controllers

import (
	"errors"
	"net/http"

	"github.com/amal-sh/Blockchain-supplychain/apperr"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error onto the JSON shape the device firmware expects.
func respondError(c *gin.Context, err error) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Message})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error", "error": err.Error()})
}

// MethodNotAllowed answers verbs the API routes do not accept.
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "Method not allowed"})
}
