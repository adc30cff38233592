package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fleet/api"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

// Observer records one finished request.
type Observer interface {
	ObserveHTTP(method, path, status string, d time.Duration)
	Handler() http.Handler
}

// NewRouter builds the echo instance with every route registered. Requests
// under /api/v1 are validated against the embedded OpenAPI document.
func NewRouter(server *Server, observer Observer, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := api.Load()
	if err != nil {
		return nil, err
	}
	if err = registerSwaggerDoc(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(Observability(observer, logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(observer.Handler()))
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", api.Document)
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))

	v1 := e.Group(api.BasePath, ValidateRequests(doc))

	v1.POST("/loads", server.CreateLoad)
	v1.GET("/loads", server.GetActiveLoads)
	v1.GET("/loads/:id", server.GetLoad)
	v1.POST("/loads/:id/stage", server.AdvanceLoadStage)
	v1.POST("/loads/:id/assignments", server.CreateAssignment)

	v1.POST("/assignments/:id/accept", server.AcceptAssignment)
	v1.POST("/assignments/:id/reject", server.RejectAssignment)
	v1.POST("/assignments/:id/cancel", server.CancelAssignment)

	v1.POST("/resources", server.RegisterResource)
	v1.GET("/resources/available", server.GetAvailableResources)
	v1.PUT("/resources/:id/availability", server.ChangeAvailability)

	v1.GET("/notifications", server.GetNotifications)

	return e, nil
}

type swaggerDoc string

func (d swaggerDoc) ReadDoc() string { return string(d) }

var swaggerOnce sync.Once

// registerSwaggerDoc publishes doc as /swagger/doc.json. swag keeps a
// process-wide registry, so only the first router registers.
func registerSwaggerDoc(doc *openapi3.T) error {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal openapi document: %w", err)
	}
	swaggerOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc(raw))
	})
	return nil
}

// Observability records request metrics by route pattern so path parameters
// do not explode label cardinality.
func Observability(observer Observer, logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			started := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			status := c.Response().Status
			elapsed := time.Since(started)

			observer.ObserveHTTP(c.Request().Method, path, strconv.Itoa(status), elapsed)
			logger.DebugContext(c.Request().Context(), "HTTP request",
				"method", c.Request().Method,
				"path", path,
				"status", status,
				"duration", elapsed,
			)
			return nil
		}
	}
}
