package controllers

import (
	"net/http"

	"bitbucket.org/aahdc/lottery_backend/models"
	"github.com/gin-gonic/gin"
)

// SubmitUnits accepts a batch of units from a developer. The whole batch is
// validated, including per-block declared-vs-summed area, before any row is
// written.
func SubmitUnits(c *gin.Context) {
	var inputs []*models.NewUnit
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	units, err := models.SubmitUnits(c.Request.Context(), inputs)
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Units submitted successfully.",
		"units":   units,
	})
}

func GetUnits(c *gin.Context) {
	units, err := models.GetUnits(c.Request.Context())
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"units": units})
}

// ImportUnits accepts an Excel workbook as multipart form field "file".
// Any row error rejects the whole file.
func ImportUnits(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded."})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read uploaded file."})
		return
	}
	defer src.Close()

	result, err := models.ImportUnitsFromExcel(c.Request.Context(), src)
	if err != nil {
		writeModelError(c, err)
		return
	}
	if len(result.Errors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "Import rejected. Fix the listed rows and retry.",
			"errors":  result.Errors,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":       "Units imported successfully.",
		"importedCount": result.ImportedCount,
	})
}
