package controllers

import (
	"errors"
	"net/http"

	"performance-review-api/config"
	"performance-review-api/models"
	"performance-review-api/services"

	"github.com/gin-gonic/gin"
)

func getCurrentUserID(c *gin.Context) (int, bool) {
	value, exists := c.Get("userID")
	if !exists {
		return 0, false
	}
	id, ok := value.(int)
	return id, ok
}

func getCurrentRoleID(c *gin.Context) int {
	value, exists := c.Get("roleID")
	if !exists {
		return 0
	}
	id, _ := value.(int)
	return id
}

func isAdmin(c *gin.Context) bool {
	return getCurrentRoleID(c) == models.RoleAdminID
}

// respondServiceError maps the workflow error taxonomy onto HTTP statuses.
// Invalid-state responses include the current state so the UI can explain
// why the action was rejected.
func respondServiceError(c *gin.Context, err error) {
	var validation *services.ValidationError
	var notFound *services.NotFoundError
	var notAuthorized *services.NotAuthorizedError
	var invalidState *services.InvalidStateError
	var transient *services.TransientStoreError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
	case errors.As(err, &notAuthorized):
		c.JSON(http.StatusForbidden, gin.H{
			"error":         notAuthorized.Error(),
			"required_role": notAuthorized.RequiredRole,
		})
	case errors.As(err, &invalidState):
		c.JSON(http.StatusConflict, gin.H{
			"error":         invalidState.Error(),
			"state":         invalidState.Kind,
			"current_state": invalidState.CurrentState,
		})
	case errors.As(err, &transient):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary storage failure, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Workflow service wiring. The services are cheap stateless structs over
// config.DB, constructed per call site.

func newDirectory() services.Directory {
	return services.NewGormDirectory(config.DB)
}

func newAssignmentEngine() *services.AssignmentEngine {
	return services.NewAssignmentEngine(
		services.NewGormCycleStore(config.DB),
		services.NewGormReviewStore(config.DB),
		newDirectory(),
		nil,
	)
}

func newPhaseMachine() *services.PhaseMachine {
	return services.NewPhaseMachine(services.NewGormCycleStore(config.DB), newAssignmentEngine())
}

func newApprovalService() *services.ApprovalService {
	return services.NewApprovalService(services.NewGormReviewStore(config.DB), newDirectory())
}

func newWorkflowScheduler() *services.WorkflowScheduler {
	directory := newDirectory()
	return services.NewWorkflowScheduler(
		services.NewGormCycleStore(config.DB),
		services.NewGormReviewStore(config.DB),
		newPhaseMachine(),
		directory,
		services.NewNotificationCenter(config.DB, directory),
	)
}
