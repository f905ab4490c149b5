package rest

import (
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/engine-monitor/internal/domain"
	"github.com/quentinrf/engine-monitor/internal/ports"
)

const defaultGenerateDays = 30

// Handler exposes the readings store over HTTP
type Handler struct {
	service *ports.ReadingsService
}

// NewHandler creates a new HTTP handler
func NewHandler(service *ports.ReadingsService) *Handler {
	return &Handler{service: service}
}

// NewRouter builds the gin engine with logging, recovery and all routes
func NewRouter(service *ports.ReadingsService) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	NewHandler(service).Register(router.Group("/api/v1"))
	return router
}

// Register mounts the API routes on r
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/readings", h.GetReadings)
	r.POST("/readings", h.AddReading)
	r.POST("/readings/import", h.ImportReadings)
	r.POST("/readings/generate", h.GenerateReadings)
	r.GET("/reports", h.DownloadReport)
	r.GET("/ships", h.GetShips)
	r.GET("/engines", h.GetEngines)
}

// GetReadings returns the filtered series, newest first, with statistics
// GET /api/v1/readings?ship=Sebuku&ship=Jatra&engine=Mesin%201
func (h *Handler) GetReadings(c *gin.Context) {
	result, err := h.service.Query(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}

	readings := make([]readingDTO, len(result.Readings))
	for i, r := range result.Readings {
		readings[i] = toDTO(r)
	}

	c.JSON(http.StatusOK, gin.H{
		"readings": readings,
		"count":    len(readings),
		"stats":    toStatsDTO(result.Stats),
	})
}

// AddReading records one manually entered reading
// POST /api/v1/readings
func (h *Handler) AddReading(c *gin.Context) {
	var req readingDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid reading",
			"details": err.Error(),
		})
		return
	}

	reading, err := req.toDomain()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid reading",
			"details": err.Error(),
		})
		return
	}

	saved, err := h.service.AddReading(c.Request.Context(), reading)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"reading": toDTO(saved)})
}

// ImportReadings imports an uploaded XLSX workbook as one batch
// POST /api/v1/readings/import (multipart field "file")
func (h *Handler) ImportReadings(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing upload",
			"details": err.Error(),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "unreadable upload",
			"details": err.Error(),
		})
		return
	}
	defer file.Close()

	n, err := h.service.ImportSpreadsheet(c.Request.Context(), file)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": n,
		"filename": header.Filename,
	})
}

type generateRequest struct {
	Seed  int64  `json:"seed"`
	Start string `json:"start"`
	Days  int    `json:"days"`
}

// GenerateReadings appends a synthetic batch
// POST /api/v1/readings/generate
func (h *Handler) GenerateReadings(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid generate request",
				"details": err.Error(),
			})
			return
		}
	}

	if req.Days == 0 {
		req.Days = defaultGenerateDays
	}

	start := time.Now().AddDate(0, 0, -(req.Days - 1))
	if req.Start != "" {
		d, err := domain.ParseDate(req.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid start date",
				"details": err.Error(),
			})
			return
		}
		start = d
	}

	n, err := h.service.Generate(c.Request.Context(), req.Seed, start, req.Days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"generated": n})
}

// DownloadReport exports the filtered series and sends it as an attachment
// GET /api/v1/reports?ship=Sebuku&engine=Mesin%201
func (h *Handler) DownloadReport(c *gin.Context) {
	path, err := h.service.ExportReport(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}

// GetShips lists ships present in the store
// GET /api/v1/ships
func (h *Handler) GetShips(c *gin.Context) {
	ships, err := h.service.Ships(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if ships == nil {
		ships = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"ships": ships})
}

// GetEngines lists engines recorded for the selected ships
// GET /api/v1/engines?ship=Sebuku
func (h *Handler) GetEngines(c *gin.Context) {
	engines, err := h.service.Engines(c.Request.Context(), c.QueryArray("ship"))
	if err != nil {
		writeError(c, err)
		return
	}
	if engines == nil {
		engines = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"engines": engines})
}

func filterFromQuery(c *gin.Context) domain.Filter {
	return domain.Filter{
		Ships:  c.QueryArray("ship"),
		Engine: c.Query("engine"),
	}
}

// writeError maps domain errors to HTTP statuses
func writeError(c *gin.Context, err error) {
	var (
		schemaErr *domain.SchemaError
		parseErr  *domain.ParseError
	)

	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "batch does not match the reading schema",
			"missing": schemaErr.Missing,
		})
	case errors.As(err, &parseErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "could not parse import",
			"details": parseErr.Error(),
		})
	case errors.Is(err, domain.ErrInvalidReading), errors.Is(err, domain.ErrInvalidFilter),
		errors.Is(err, domain.ErrInvalidDays):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "store changed concurrently, retry the action",
			"details": err.Error(),
		})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "storage failure",
			"details": err.Error(),
		})
	}
}

// requestLogger logs each request through zerolog, tagged with a request id
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)

		start := time.Now()
		c.Next()

		log.Info().
			Str("request_id", id).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
