package gateway

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vitwit/tokensmith/logger"
	"github.com/vitwit/tokensmith/types"
)

const (
	maxBodyBytes    = 1 << 20
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NoopLogger{}
	}
	return &Handler{service: service, logger: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	api := rg.Group("/api")
	{
		api.POST("/generate-token", h.GenerateToken)
		api.GET("/get-prices", h.GetPrices)
	}
}

// NewRouter builds the gin engine serving the gateway. Unsupported methods on
// known paths get a JSON 405 with an Allow header.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true

	r.Use(RequestID(), AccessLog(h.logger), gin.CustomRecovery(func(c *gin.Context, recovered any) {
		h.logger.Error("panic while serving request", map[string]any{"panic": recovered, requestIDKey: c.GetString(requestIDKey)})
		writeError(c, types.NewError(types.ErrCodeUnknown, "An unknown server error occurred.", nil))
	}))

	r.NoMethod(func(c *gin.Context) {
		writeError(c, types.NewError(types.ErrCodeMethodNotAllowed, "Method Not Allowed", nil))
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Error: "Not Found"})
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	h.RegisterRoutes(&r.RouterGroup)
	return r
}

func (h *Handler) GenerateToken(c *gin.Context) {
	// A missing credential is reported before the body is read.
	if err := h.service.Ready(); err != nil {
		writeError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req types.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, types.NewError(types.ErrCodeInvalidRequest, invalidBodyMessage, err))
		return
	}

	res, err := h.service.Generate(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetPrices(c *gin.Context) {
	network := types.FeeNetwork(c.Query("network"))
	address := c.Query("address")

	resp, err := h.service.Prices(c.Request.Context(), network, address)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeError(c *gin.Context, err error) {
	var e *types.Error
	if !errors.As(err, &e) {
		e = types.NewError(types.ErrCodeUnknown, "An unknown server error occurred.", err)
	}
	c.AbortWithStatusJSON(e.Status(), types.ErrorResponse{Error: e.Message, Code: e.Code})
}

// RequestID tags every request with an id, reusing the caller's X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog writes one entry per request.
func AccessLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]any{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			requestIDKey: c.GetString(requestIDKey),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("request failed", fields)
			return
		}
		log.Info("request", fields)
	}
}
