package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/data-lake-api/internal/ingest"
)

// Upload accepts a multipart CSV (`file`) plus a record type form field
// (`type`) and runs the ingestion pipeline. Validation and schema errors
// come back as 400 before anything is written; a failed chunk write comes
// back as 500 with the partial result attached.
func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "No file part"})
		return
	}
	defer file.Close()

	recordType := c.PostForm("type")
	if recordType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": "Missing file type"})
		return
	}

	contents, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": http.StatusInternalServerError, "message": "failed to read upload: " + err.Error()})
		return
	}

	result, err := h.pipeline.Run(c.Request.Context(), contents, header.Filename, recordType)
	if err != nil {
		if ingest.IsClientError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"status": http.StatusBadRequest, "message": err.Error()})
			return
		}
		h.log.Error("upload failed", zap.String("filename", header.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  http.StatusInternalServerError,
			"message": err.Error(),
			"result":  result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     http.StatusOK,
		"message":    "File uploaded successfully",
		"num_chunks": result.NumChunks,
		"batch_id":   result.BatchID,
		"rows":       result.Rows,
		"warnings":   result.Warnings,
	})
}
