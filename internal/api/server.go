// Package api is the debug/ops HTTP surface: health, Prometheus metrics,
// the status-push WebSocket upgrade, and a manual debug-submit endpoint
// that passes one still image to the capture controller as a camera frame
// (dropped unless a capture session is running). Grounded on iluha78-FD's internal/api (gin router
// setup, LoggingMiddleware, handlers.SystemHandler's health/ready shape).
package api

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/irislab/irisgo/internal/capture"
	"github.com/irislab/irisgo/internal/config"
	"github.com/irislab/irisgo/internal/logger"
	"github.com/irislab/irisgo/internal/opencv/convert"
	"github.com/irislab/irisgo/internal/statuspush"
)

// Server is the debug/ops HTTP daemon.
type Server struct {
	engine     *gin.Engine
	log        logger.Logger
	controller *capture.Controller
	hub        *statuspush.Hub
	addr       string
}

// New builds the router: health, metrics, status-push upgrade, and a
// manual debug-submit endpoint that passes one uploaded still image to
// controller.Feed.
func New(cfg config.API, log logger.Logger, controller *capture.Controller, hub *statuspush.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), loggingMiddleware(log))

	s := &Server{engine: engine, log: log, controller: controller, hub: hub, addr: cfg.Addr}

	engine.GET("/healthz", s.healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/ws/status", hub.HandleWS)
	engine.POST("/debug/submit", s.debugSubmit)

	return s
}

func (s *Server) Run() error {
	return s.engine.Run(s.addr)
}

func loggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("api", "request", map[string]interface{}{
			"method":   c.Request.Method,
			"path":     path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// debugSubmit decodes an uploaded image and passes it to Controller.Feed
// as one camera frame, bypassing the live camera loop. Feed drops the frame
// while the controller is idle, and this server never calls
// Controller.Start, so the frame is only analysed if a session was started
// elsewhere.
func (s *Server) debugSubmit(c *gin.Context) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing image field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("read upload: %v", err)})
		return
	}

	gray, err := convert.DecodeToGray(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("decode image: %v", err)})
		return
	}

	if err := s.controller.Feed(c.Request.Context(), gray); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "submitted"})
}
