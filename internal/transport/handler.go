package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/anime-shed/blur-culler/internal/config"
	apperrors "github.com/anime-shed/blur-culler/internal/errors"
	"github.com/anime-shed/blur-culler/internal/logger"
	"github.com/anime-shed/blur-culler/internal/service"
	"github.com/anime-shed/blur-culler/pkg/models"
)

// MetricsSource exposes counters for the /metrics route
type MetricsSource interface {
	GetMetrics() map[string]interface{}
}

type handler struct {
	svc     service.CullService
	metrics MetricsSource
	cfg     *config.Config
}

func NewHandler(svc service.CullService, metrics MetricsSource, cfg *config.Config) http.Handler {
	r := gin.New()
	h := &handler{svc: svc, metrics: metrics, cfg: cfg}

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		rateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/metrics", h.getMetrics)
	r.POST("/scan", h.scanFolder)
	r.GET("/scans", h.listScans)
	r.GET("/scans/:id", h.getScan)
	r.POST("/score", h.scoreUpload)
	r.POST("/score/url", h.scoreURL)
	r.POST("/score/blob", h.scoreBlob)
	r.POST("/move", h.moveToReview)
	r.POST("/restore", h.restoreFromReview)
	r.GET("/thumbnail", h.thumbnail)

	return r
}

func (h *handler) scanFolder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.ScanTimeout)
	defer cancel()

	var req models.ScanRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.ScanFolder(ctx, req)
	if err != nil {
		respondAppError(c, "scan failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"scan_id":    resp.ID,
		"folder":     resp.Folder,
		"total":      resp.Summary.Total,
		"blurry":     resp.Summary.Blurry,
		"borderline": resp.Summary.Borderline,
		"failed":     resp.Summary.Failed,
		"elapsed_s":  resp.ProcessingTimeSec,
	}).Info("Folder scan completed")

	c.JSON(http.StatusOK, resp)
}

func (h *handler) listScans(c *gin.Context) {
	scans, err := h.svc.ListScans(c.Request.Context())
	if err != nil {
		respondAppError(c, "failed to list scans", err)
		return
	}
	c.JSON(http.StatusOK, scans)
}

func (h *handler) getScan(c *gin.Context) {
	scan, err := h.svc.GetScan(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondAppError(c, "failed to load scan", err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

func (h *handler) scoreUpload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	fh, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		respondAppError(c, "invalid upload", apperrors.NewValidationError("multipart field \"file\" is required", err))
		return
	}

	var threshold *float64
	if raw := c.PostForm("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondAppError(c, "invalid upload", apperrors.NewValidationError("threshold must be a number", err))
			return
		}
		threshold = &v
	}

	f, err := fh.Open()
	if err != nil {
		respondAppError(c, "invalid upload", apperrors.NewValidationError("failed to open upload", err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		respondAppError(c, "invalid upload", apperrors.NewValidationError("failed to read upload", err))
		return
	}

	res, err := h.svc.ScoreUpload(ctx, data, fh.Filename, threshold)
	if err != nil {
		respondAppError(c, "scoring failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) scoreURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.ImageFetchTimeout)
	defer cancel()

	var req models.ScoreURLRequest
	if !bindJSON(c, &req) {
		return
	}

	logger.WithField("url", req.URL).Debug("Fetching image")

	res, err := h.svc.ScoreURL(ctx, req)
	if err != nil {
		respondAppError(c, "scoring failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) scoreBlob(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.ImageFetchTimeout)
	defer cancel()

	var req models.ScoreBlobRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.svc.ScoreBlob(ctx, req)
	if err != nil {
		respondAppError(c, "scoring failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) moveToReview(c *gin.Context) {
	h.move(c, h.svc.MoveToReview)
}

func (h *handler) restoreFromReview(c *gin.Context) {
	h.move(c, h.svc.RestoreFromReview)
}

func (h *handler) move(c *gin.Context, fn func(context.Context, models.MoveRequest) (*models.MoveResponse, error)) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.MoveRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := fn(ctx, req)
	if err != nil {
		respondAppError(c, "move failed", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) thumbnail(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		respondAppError(c, "invalid request", apperrors.NewValidationError("query parameter \"path\" is required", nil))
		return
	}

	data, err := h.svc.Thumbnail(c.Request.Context(), path)
	if err != nil {
		respondAppError(c, "thumbnail failed", err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/jpeg", data)
}

func (h *handler) getMetrics(c *gin.Context) {
	if h.metrics == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, h.metrics.GetMetrics())
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		if isBodyTooLarge(err) {
			respondError(c, http.StatusRequestEntityTooLarge, "request body too large", err)
			return false
		}
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return false
	}
	return true
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}).Debug("Request handled")
	}
}

// rateLimiter applies one token bucket to every request; rps <= 0 disables it
func rateLimiter(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		if !limiter.Allow() {
			c.Header("Retry-After", "1")
			respondAppError(c, "request rejected", apperrors.NewRateLimitedError("too many requests"))
			return
		}
		c.Next()
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondAppError(c *gin.Context, message string, err error) {
	respondError(c, determineStatusCode(err), message, err)
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	resp := models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		resp.Message = message + ": " + appErr.Message
		resp.Details = appErr.Details
	} else if err != nil {
		resp.Message = message + ": " + err.Error()
	}
	c.AbortWithStatusJSON(code, resp)
}
