package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// RunWorkflowSweep triggers one scheduler pass over all active cycles.
// Admin-only; the same sweep runs from the background ticker and the
// cmd/sweep binary.
func RunWorkflowSweep(c *gin.Context) {
	result := newWorkflowScheduler().RunSweep(time.Now())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  result,
	})
}
