package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"bitbucket.org/aahdc/lottery_backend/models"
	"github.com/gin-gonic/gin"
)

// CreateCandidates accepts either a single candidate object or an array of
// them, matching the original wire contract.
func CreateCandidates(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body."})
		return
	}

	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var inputs []*models.NewCandidate
		if err := json.Unmarshal(body, &inputs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		candidates, err := models.CreateCandidates(c.Request.Context(), inputs)
		if err != nil {
			writeModelError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"candidates": candidates})
		return
	}

	var input models.NewCandidate
	if err := json.Unmarshal(body, &input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	candidate, err := models.CreateCandidate(c.Request.Context(), &input)
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"candidate": candidate})
}

func GetCandidates(c *gin.Context) {
	candidates, err := models.GetCandidates(c.Request.Context())
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": candidates})
}

// DownloadCandidateTemplate streams the Excel template with the expected
// header row.
func DownloadCandidateTemplate(c *gin.Context) {
	buf, err := models.CandidateTemplateExcel()
	if err != nil {
		writeModelError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="candidate_template.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ImportCandidates accepts an Excel workbook as multipart form field
// "file". Row errors do not abort the import; failed rows are reported back.
func ImportCandidates(c *gin.Context) {
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

	result, err := models.ImportCandidatesFromExcel(c.Request.Context(), src)
	if err != nil {
		writeModelError(c, err)
		return
	}
	status := http.StatusCreated
	if result.ImportedCount == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}
