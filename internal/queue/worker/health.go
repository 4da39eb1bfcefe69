package worker

import (
	"errors"
	"net/http"

	"github.com/codewright/jobhub/internal/domain/task"
	"github.com/gin-gonic/gin"
)

// HealthHandler serves the worker's liveness/readiness probes plus a small
// counters snapshot for debugging, separate from the Prometheus registry.
func (w *Worker) HealthHandler() http.Handler {
	r := gin.New()

	r.Use(gin.Recovery())

	// liveness: process is up
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	// readiness: polling loops are running and not draining
	r.GET("/readyz", func(c *gin.Context) {
		w.readyMu.RLock()
		ready := w.ready
		w.readyMu.RUnlock()

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	// single-task lookup for on-call debugging: status, attempts, last_error
	r.GET("/tasks/:id", func(c *gin.Context) {
		t, err := w.repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, task.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "task lookup failed"})
			return
		}
		c.JSON(http.StatusOK, t)
	})

	r.GET("/stats", func(c *gin.Context) {
		s := w.metrics.Snapshot()
		c.JSON(http.StatusOK, gin.H{
			"claimed":      s.Claimed,
			"done":         s.Done,
			"failed":       s.Failed,
			"retried":      s.Retried,
			"deadLettered": s.DeadLettered,
			"avgDuration":  s.AverageDuration.String(),
			"maxDuration":  s.MaxDuration.String(),
		})
	})

	return r
}
