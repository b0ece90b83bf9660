// Package httpapi exposes the engine over HTTP with gin. Callers assert who
// they are with X-Actor-* headers; authentication happens upstream.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/alexanderramin/docket/internal/clock"
	"github.com/alexanderramin/docket/internal/metrics"
	"github.com/alexanderramin/docket/internal/service"
)

// Services are the use cases the router dispatches to.
type Services struct {
	Templates   service.TemplateService
	Employees   service.EmployeeService
	Assignments service.AssignmentService
	Escalation  service.EscalationService
	AutoAssign  service.AutoAssignService
	Directory   service.DirectoryService

	// Clock stamps resources built by the handlers. Defaults to the system
	// clock.
	Clock clock.Clock
}

type handler struct {
	svc Services
	log zerolog.Logger
}

// NewRouter builds the gin engine. rec may be nil, in which case /metrics
// answers 404.
func NewRouter(svc Services, rec *metrics.Recorder, log zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if svc.Clock == nil {
		svc.Clock = clock.System{}
	}
	h := &handler{svc: svc, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(rec.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/templates", h.listTemplates)
		v1.GET("/templates/:id", h.getTemplate)
		v1.GET("/templates/:id/assignments", h.listAssignments)
		v1.GET("/templates/:id/instances", h.listInstances)
		v1.GET("/templates/:id/stats", h.templateStats)
		v1.GET("/stats", h.allStats)
		v1.GET("/assignments/:id", h.getAssignment)
		v1.GET("/assignments/:id/history", h.assignmentHistory)
		v1.GET("/employees", h.listEmployees)
		v1.POST("/rules/test", h.testRule)
		v1.POST("/events/preview", h.previewEvent)
	}

	w := v1.Group("", requireActor())
	{
		w.POST("/templates", h.createTemplate)
		w.POST("/templates/:id/archive", h.archiveTemplate)
		w.POST("/templates/:id/unarchive", h.unarchiveTemplate)
		w.PUT("/templates/:id/escalation-policy", h.editPolicy)
		w.PUT("/templates/:id/rules", h.editRules)
		w.POST("/templates/:id/rules", h.upsertRule)
		w.DELETE("/templates/:id/rules/:ruleID", h.removeRule)

		w.POST("/assignments", h.createAssignment)
		w.POST("/assignments/:id/schedule", h.schedule)
		w.POST("/assignments/:id/send", h.send)
		w.POST("/assignments/:id/submit", h.submit)
		w.POST("/assignments/:id/approve", h.approve)
		w.POST("/assignments/:id/reject", h.reject)
		w.POST("/assignments/:id/decline", h.decline)
		w.POST("/assignments/:id/cancel", h.cancel)
		w.POST("/assignments/:id/remind", h.remind)

		w.PUT("/employees/:id", h.upsertEmployee)
		w.POST("/events", h.handleEvent)
		w.POST("/sweep", h.sweep)
	}
	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		ev := log.Info()
		if status >= http.StatusInternalServerError {
			ev = log.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	}
}

// Serve runs the handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("http: listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
