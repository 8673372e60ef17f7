package controllers

import (
	"bytes"
	"net/http"

	"bitbucket.org/aahdc/lottery_backend/models/reports"
	"github.com/gin-gonic/gin"
)

// ExportAllocationExcel streams the allocation report workbook.
func ExportAllocationExcel(c *gin.Context) {
	var buf bytes.Buffer
	if err := reports.WriteAllocationExcel(c.Request.Context(), &buf); err != nil {
		writeModelError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="allocation_report.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

// ExportAllocationPdf streams the allocation report as a PDF.
func ExportAllocationPdf(c *gin.Context) {
	var buf bytes.Buffer
	if err := reports.WriteAllocationPdf(c.Request.Context(), &buf); err != nil {
		writeModelError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="allocation_report.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
