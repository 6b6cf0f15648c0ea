// Package api exposes the HTTP surface: CSV upload into the data lake and
// the Athena-backed read endpoints.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/data-lake-api/internal/athena"
	"github.com/yourorg/data-lake-api/internal/ingest"
)

const (
	defaultMaxResults = 50
	// Athena caps GetQueryResults pages at 1000 rows.
	maxMaxResults = 1000
)

type Handler struct {
	pipeline *ingest.Pipeline
	engine   athena.Engine
	log      *zap.Logger
}

func NewHandler(pipeline *ingest.Pipeline, engine athena.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{pipeline: pipeline, engine: engine, log: log}
}

// Register wires all routes onto the gin engine.
func (h *Handler) Register(r *gin.Engine) {
	r.GET("/", h.Index)
	r.GET("/employee-hires", h.EmployeeHires)
	r.GET("/over-mean-employee-hires", h.OverMeanEmployeeHires)
	r.POST("/upload", h.Upload)
}

func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": http.StatusOK, "message": "data lake api"})
}

// EmployeeHires serves the 2021 per-department, per-job quarterly hire counts.
func (h *Handler) EmployeeHires(c *gin.Context) {
	h.runQuery(c, employeeHiresPerJobQuery)
}

// OverMeanEmployeeHires serves the departments that hired above the 2021 mean.
func (h *Handler) OverMeanEmployeeHires(c *gin.Context) {
	h.runQuery(c, overMeanEmployeeHiresQuery)
}

func (h *Handler) runQuery(c *gin.Context, sql string) {
	pageToken := c.Query("page_token")
	maxResults, err := parseMaxResults(c.Query("max_results"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.engine.Run(c.Request.Context(), sql, pageToken, maxResults)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, athena.ErrQueryTimeout) {
			status = http.StatusGatewayTimeout
		}
		h.log.Error("query endpoint failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, page)
}

func parseMaxResults(raw string) (int32, error) {
	if raw == "" {
		return defaultMaxResults, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("max_results must be a positive integer")
	}
	if n > maxMaxResults {
		n = maxMaxResults
	}
	return int32(n), nil
}
