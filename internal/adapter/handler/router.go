package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/meeting-enrichment/errors"
	httpmw "github.com/johnquangdev/meeting-enrichment/internal/infrastructure/http/middleware"
	"github.com/johnquangdev/meeting-enrichment/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg             *config.Config
	meetingHandler  *Meeting
	pipelineHandler *Pipeline
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, meetingHandler *Meeting, pipelineHandler *Pipeline) *Router {
	return &Router{
		cfg:             cfg,
		meetingHandler:  meetingHandler,
		pipelineHandler: pipelineHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group, signed when an ops secret is configured
	v1 := e.Group("/v1", httpmw.EchoSignature(rt.cfg.Ops.Secret, func(c echo.Context) error {
		return HandleError(nil, c, errors.ErrInvalidSignature())
	}))

	rt.setupMeetingRoutes(v1)
	rt.setupPipelineRoutes(v1)
}

// setupMeetingRoutes configures meeting routes
func (rt *Router) setupMeetingRoutes(g *echo.Group) {
	meetingGroup := g.Group("/meetings")

	if rt.meetingHandler == nil {
		meetingGroup.Any("*", rt.notImplemented)
		return
	}
	meetingGroup.POST("", rt.meetingHandler.Submit)
	meetingGroup.GET("", rt.meetingHandler.List)
	meetingGroup.GET("/:id", rt.meetingHandler.Get)
	meetingGroup.GET("/:id/conversation", rt.meetingHandler.Conversation)
}

// setupPipelineRoutes configures the pipeline ops routes
func (rt *Router) setupPipelineRoutes(g *echo.Group) {
	pipelineGroup := g.Group("/pipeline")

	if rt.pipelineHandler == nil {
		pipelineGroup.Any("*", rt.notImplemented)
		return
	}
	pipelineGroup.POST("/poll", rt.pipelineHandler.Poll)
	pipelineGroup.GET("/last", rt.pipelineHandler.Last)
}

// notImplemented returns 501 Not Implemented response
func (rt *Router) notImplemented(c echo.Context) error {
	return c.JSON(http.StatusNotImplemented, map[string]interface{}{
		"error":  "This endpoint is not configured",
		"path":   c.Request().URL.Path,
		"method": c.Request().Method,
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"environment": rt.cfg.Server.Environment,
	})
}
