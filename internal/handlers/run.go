package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/registry"
	"signaly.chapter42.de/a/internal/scheduler"
)

// NewTriggerHandler stößt einen manuellen Lauf an. Der manuelle Weg
// ist identisch zum geplanten; Parameter gibt es nicht.
func NewTriggerHandler(s *scheduler.Scheduler) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := s.Trigger(data.TriggerManual)
		c.JSON(http.StatusAccepted, gin.H{"message": "Lauf gestartet", "uid": uid})
	}
}

func NewListRunsHandler(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"runs": reg.List()})
	}
}

func NewLatestRunHandler(reg *registry.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		run, ok := reg.Latest()
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Noch kein Lauf vorhanden"})
			return
		}
		c.JSON(http.StatusOK, run)
	}
}

func NewHealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
