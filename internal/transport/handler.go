package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"go-outfit-advisor/internal/config"
	apperrors "go-outfit-advisor/internal/errors"
	"go-outfit-advisor/internal/logger"
	"go-outfit-advisor/internal/observer"
	"go-outfit-advisor/internal/service"
	"go-outfit-advisor/pkg/models"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// sessionHeader carries the working-set session id. Requests without one get
// a fresh session whose id is echoed back in the response.
const sessionHeader = "X-Session-ID"

// analyzeURLRequest is the JSON body for analyze-by-URL
type analyzeURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// NewHandler wires the HTTP routes. uploadsDir is served statically when the
// local storage backend is active; pass "" for blob-backed storage.
func NewHandler(svc service.OutfitService, counters *observer.CountingObserver, cfg *config.Config, uploadsDir string) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		sessionMiddleware(),
		errorHandler(),
	)

	// Configure routes
	api := r.Group("/api")
	api.GET("/health", healthCheck(counters))
	api.POST("/upload", uploadImages(svc, cfg))
	api.POST("/generate-combinations", generateCombinations(svc, cfg))
	api.POST("/analyze-image", analyzeImage(svc, cfg))
	api.DELETE("/images/:id", removeImage(svc))

	if uploadsDir != "" {
		r.Static("/uploads", uploadsDir)
	}

	return r
}

func healthCheck(counters *observer.CountingObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := models.HealthResponse{
			Status:    "available",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   Version,
		}
		if counters != nil {
			activity := make(map[string]int64)
			for event, count := range counters.Snapshot() {
				activity[string(event)] = count
			}
			resp.Activity = activity
		}
		c.JSON(http.StatusOK, resp)
	}
}

func uploadImages(svc service.OutfitService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		sessionID := sessionFrom(c)
		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"session_id": sessionID,
			"ip":         c.ClientIP(),
		}).Info("Processing upload request")

		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid multipart form", err)
			return
		}

		fileHeaders := form.File["images"]
		if len(fileHeaders) == 0 {
			respondError(c, http.StatusBadRequest, "no images in request",
				apperrors.NewValidationError("multipart field 'images' is required", nil))
			return
		}

		files := make([]service.UploadFile, 0, len(fileHeaders))
		for _, fh := range fileHeaders {
			f, err := fh.Open()
			if err != nil {
				logger.WithError(err).WithField("file", fh.Filename).Warn("Failed to open upload part")
				continue
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				logger.WithError(err).WithField("file", fh.Filename).Warn("Failed to read upload part")
				continue
			}
			files = append(files, service.UploadFile{OriginalName: fh.Filename, Data: data})
		}

		resp, err := svc.UploadImages(ctx, sessionID, files)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "upload failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func generateCombinations(svc service.OutfitService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		sessionID := sessionFrom(c)

		var req models.GenerateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		resp, err := svc.GenerateCombinations(ctx, sessionID, req)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "generation failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"session_id":         sessionID,
			"occasion":           req.Occasion,
			"combinations":       resp.TotalCombinations,
			"sequence":           resp.Sequence,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Combinations generated")

		c.JSON(http.StatusOK, resp)
	}
}

func analyzeImage(svc service.OutfitService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Ad hoc analysis may fetch a remote image, so it gets its own
		// tighter deadline instead of the general request timeout.
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.AnalysisTimeout)
		defer cancel()

		// JSON body selects the analyze-by-URL path; multipart carries a file
		if c.ContentType() == "application/json" {
			var req analyzeURLRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "invalid request format", err)
				return
			}
			resp, err := svc.AnalyzeURL(ctx, req.URL)
			if err != nil {
				respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
				return
			}
			c.JSON(http.StatusOK, resp)
			return
		}

		fh, err := c.FormFile("image")
		if err != nil {
			// A form-encoded url is the other accepted shape
			if u := c.PostForm("url"); u != "" {
				resp, err := svc.AnalyzeURL(ctx, u)
				if err != nil {
					respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
					return
				}
				c.JSON(http.StatusOK, resp)
				return
			}
			respondError(c, http.StatusBadRequest, "no image in request",
				apperrors.NewValidationError("multipart field 'image' or 'url' is required", err))
			return
		}

		f, err := fh.Open()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to open image", err)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read image", err)
			return
		}

		resp, err := svc.AnalyzeUpload(ctx, fh.Filename, data)
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "analysis failed", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func removeImage(svc service.OutfitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := sessionFrom(c)
		resp, err := svc.RemoveImage(c.Request.Context(), sessionID, c.Param("id"))
		if err != nil {
			respondError(c, apperrors.GetStatusCode(err), "remove failed", err)
			return
		}
		logger.WithSession(sessionID).WithFields(logrus.Fields{
			"image_id":  resp.RemovedID,
			"remaining": resp.Remaining,
		}).Info("Image removed from working set")
		c.JSON(http.StatusOK, resp)
	}
}

// Middleware and helper functions

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		c.Set("session_id", sessionID)
		c.Header(sessionHeader, sessionID)
		c.Next()
	}
}

func sessionFrom(c *gin.Context) string {
	if v, ok := c.Get("session_id"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Custom app errors carry their own status
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
