package controllers

import (
	"net/http"

	"bitbucket.org/aahdc/lottery_backend/models"
	"github.com/gin-gonic/gin"
)

type runAllocationInput struct {
	DistributionMethod string `json:"distributionMethod" binding:"required"`
}

// RunAllocation executes a distribution run. Only one run may be in flight
// at a time; a concurrent request gets a conflict response.
func RunAllocation(c *gin.Context) {
	var input runAllocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "distributionMethod is required."})
		return
	}

	outcome, err := models.RunAllocation(c.Request.Context(), input.DistributionMethod)
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// GetDistributionMethods lists the method names RunAllocation accepts.
func GetDistributionMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": models.KnownDistributionMethods()})
}

func GetUnallocatedUnits(c *gin.Context) {
	units, err := models.GetUnallocatedUnits(c.Request.Context())
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// GetAllocatedUnits returns the snapshot rows, enriched with candidate info
// where the snapshot predates the candidate match.
func GetAllocatedUnits(c *gin.Context) {
	units, err := models.GetAllocatedUnits(c.Request.Context())
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}
