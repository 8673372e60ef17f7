package controllers

import (
	"errors"
	"net/http"

	"bitbucket.org/aahdc/lottery_backend/config"
	"bitbucket.org/aahdc/lottery_backend/models"
	"bitbucket.org/aahdc/lottery_backend/utils"
	"github.com/gin-gonic/gin"
)

// writeModelError maps model-layer errors onto HTTP statuses. Compliance
// failures carry their issue list so clients can show the full report.
func writeModelError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var conflictErr *models.ConflictError
	var complianceErr *models.ComplianceError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	case errors.As(err, &complianceErr):
		c.JSON(http.StatusForbidden, gin.H{
			"error":            complianceErr.Error(),
			"complianceIssues": complianceErr.Issues,
		})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password."})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found."})
	default:
		config.GetLogger().Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error."})
	}
}
