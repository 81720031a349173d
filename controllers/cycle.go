package controllers

import (
	"net/http"
	"strconv"
	"time"

	"performance-review-api/config"
	"performance-review-api/models"
	"performance-review-api/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var validCycleTypes = map[string]bool{
	models.CycleTypeQuarterly:  true,
	models.CycleTypeHalfYearly: true,
	models.CycleTypeAnnual:     true,
	models.CycleTypeCustom:     true,
}

var validAnonymity = map[string]bool{
	models.AnonymityFull:    true,
	models.AnonymityPartial: true,
	models.AnonymityNone:    true,
	"":                      true, // defaults to none
}

func cycleIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cycle ID"})
		return 0, false
	}
	return id, true
}

// GetCycles lists review cycles, optionally filtered by status.
func GetCycles(c *gin.Context) {
	query := config.DB.Preload("Phases").Where("delete_at IS NULL")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var cycles []models.ReviewCycle
	if err := query.Order("start_date DESC").Find(&cycles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cycles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"cycles":  cycles,
		"total":   len(cycles),
	})
}

// GetCycle returns a single cycle with its phases and template.
func GetCycle(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	var cycle models.ReviewCycle
	if err := config.DB.Preload("Phases").Preload("Template").
		Where("cycle_id = ? AND delete_at IS NULL", cycleID).
		First(&cycle).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cycle not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cycle": cycle})
}

type cycleRequest struct {
	CycleName   string  `json:"cycle_name" binding:"required"`
	Description *string `json:"description"`
	CycleType   string  `json:"cycle_type" binding:"required"`
	TemplateID  *int    `json:"template_id"`

	StartDate time.Time `json:"start_date" binding:"required"`
	EndDate   time.Time `json:"end_date" binding:"required"`

	IncludeSelf    bool `json:"include_self"`
	IncludePeer    bool `json:"include_peer"`
	IncludeManager bool `json:"include_manager"`
	IncludeUpward  bool `json:"include_upward"`

	PeerAnonymity    string `json:"peer_anonymity"`
	UpwardAnonymity  string `json:"upward_anonymity"`
	ManagerAnonymity string `json:"manager_anonymity"`

	IsRecurring         bool    `json:"is_recurring"`
	RecurrenceFrequency *string `json:"recurrence_frequency"`

	RequireApproval    bool `json:"require_approval"`
	AutoAdvancePhases  bool `json:"auto_advance_phases"`
	SkipDisabledPhases bool `json:"skip_disabled_phases"`

	RemindersEnabled      bool `json:"reminders_enabled"`
	ReminderFrequencyDays int  `json:"reminder_frequency_days"`
	EscalateToManager     bool `json:"escalate_to_manager"`
	EscalationDelayDays   int  `json:"escalation_delay_days"`
}

func (req *cycleRequest) validate() (string, bool) {
	if !validCycleTypes[req.CycleType] {
		return "Invalid cycle type", false
	}
	if !validAnonymity[req.PeerAnonymity] || !validAnonymity[req.UpwardAnonymity] || !validAnonymity[req.ManagerAnonymity] {
		return "Anonymity must be one of full, partial, none", false
	}
	if !req.EndDate.After(req.StartDate) {
		return "Cycle must end after it starts", false
	}
	if req.ReminderFrequencyDays < 0 || req.EscalationDelayDays < 0 {
		return "Reminder settings must not be negative", false
	}
	return "", true
}

func anonymityOrNone(v string) string {
	if v == "" {
		return models.AnonymityNone
	}
	return v
}

// CreateCycle creates a new review cycle in the planning phase.
func CreateCycle(c *gin.Context) {
	var req cycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg, ok := req.validate(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	now := time.Now()
	cycle := models.ReviewCycle{
		CycleName:             req.CycleName,
		Description:           req.Description,
		CycleType:             req.CycleType,
		TemplateID:            req.TemplateID,
		StartDate:             req.StartDate,
		EndDate:               req.EndDate,
		Status:                models.PhasePlanning,
		CurrentPhase:          models.PhasePlanning,
		IncludeSelf:           req.IncludeSelf,
		IncludePeer:           req.IncludePeer,
		IncludeManager:        req.IncludeManager,
		IncludeUpward:         req.IncludeUpward,
		PeerAnonymity:         anonymityOrNone(req.PeerAnonymity),
		UpwardAnonymity:       anonymityOrNone(req.UpwardAnonymity),
		ManagerAnonymity:      anonymityOrNone(req.ManagerAnonymity),
		IsRecurring:           req.IsRecurring,
		RecurrenceFrequency:   req.RecurrenceFrequency,
		RequireApproval:       req.RequireApproval,
		AutoAdvancePhases:     req.AutoAdvancePhases,
		SkipDisabledPhases:    req.SkipDisabledPhases,
		RemindersEnabled:      req.RemindersEnabled,
		ReminderFrequencyDays: req.ReminderFrequencyDays,
		EscalateToManager:     req.EscalateToManager,
		EscalationDelayDays:   req.EscalationDelayDays,
		CreateAt:              &now,
	}

	if err := config.DB.Create(&cycle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cycle"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "cycle": cycle})
}

// UpdateCycle updates cycle configuration. Phase position is not touched
// here; transitions go through the start/advance endpoints.
func UpdateCycle(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	var cycle models.ReviewCycle
	if err := config.DB.Where("cycle_id = ? AND delete_at IS NULL", cycleID).First(&cycle).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cycle not found"})
		return
	}

	var req cycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg, ok := req.validate(); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"cycle_name":              req.CycleName,
		"description":             req.Description,
		"cycle_type":              req.CycleType,
		"template_id":             req.TemplateID,
		"start_date":              req.StartDate,
		"end_date":                req.EndDate,
		"include_self":            req.IncludeSelf,
		"include_peer":            req.IncludePeer,
		"include_manager":         req.IncludeManager,
		"include_upward":          req.IncludeUpward,
		"peer_anonymity":          anonymityOrNone(req.PeerAnonymity),
		"upward_anonymity":        anonymityOrNone(req.UpwardAnonymity),
		"manager_anonymity":       anonymityOrNone(req.ManagerAnonymity),
		"is_recurring":            req.IsRecurring,
		"recurrence_frequency":    req.RecurrenceFrequency,
		"require_approval":        req.RequireApproval,
		"auto_advance_phases":     req.AutoAdvancePhases,
		"skip_disabled_phases":    req.SkipDisabledPhases,
		"reminders_enabled":       req.RemindersEnabled,
		"reminder_frequency_days": req.ReminderFrequencyDays,
		"escalate_to_manager":     req.EscalateToManager,
		"escalation_delay_days":   req.EscalationDelayDays,
		"update_at":               now,
	}

	if err := config.DB.Model(&cycle).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cycle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cycle": cycle})
}

// DeleteCycle soft-deletes a cycle. Reviews referencing the cycle are
// removed first so no review ever points at a deleted cycle.
func DeleteCycle(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	var cycle models.ReviewCycle
	if err := config.DB.Where("cycle_id = ? AND delete_at IS NULL", cycleID).First(&cycle).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cycle not found"})
		return
	}

	now := time.Now()
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cycle_id = ?", cycleID).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cycle_id = ?", cycleID).Delete(&models.CyclePhase{}).Error; err != nil {
			return err
		}
		return tx.Model(&cycle).Update("delete_at", now).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete cycle"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cycle deleted"})
}

// StartCycle moves a planning cycle into its first enabled phase and
// creates that phase's review assignments.
func StartCycle(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	cycle, err := newPhaseMachine().Start(cycleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cycle": cycle})
}

// AdvancePhase completes the current phase and enters the next one.
func AdvancePhase(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	cycle, err := newPhaseMachine().Advance(cycleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cycle": cycle})
}

type phaseDescriptorRequest struct {
	PhaseName     string    `json:"phase_name" binding:"required"`
	StartDate     time.Time `json:"start_date" binding:"required"`
	EndDate       time.Time `json:"end_date" binding:"required"`
	ReminderDates *string   `json:"reminder_dates"`
}

// ConfigurePhases replaces the cycle's phase schedule.
func ConfigurePhases(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Phases []phaseDescriptorRequest `json:"phases" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	phases := make([]models.CyclePhase, 0, len(req.Phases))
	for _, p := range req.Phases {
		phases = append(phases, models.CyclePhase{
			CycleID:       cycleID,
			PhaseName:     p.PhaseName,
			StartDate:     p.StartDate,
			EndDate:       p.EndDate,
			ReminderDates: p.ReminderDates,
		})
	}

	cycle, err := newPhaseMachine().ConfigurePhases(cycleID, phases)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cycle": cycle})
}

// AssignReviews runs phase assignment for a cycle on demand. Idempotent:
// re-running fills gaps and never duplicates.
func AssignReviews(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Phase string `json:"phase"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := services.NewGormCycleStore(config.DB)
	cycle, err := store.GetCycle(cycleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	phase := req.Phase
	if phase == "" {
		phase = cycle.CurrentPhase
	}
	if !services.IsCanonicalPhase(phase) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phase name"})
		return
	}

	created, err := newAssignmentEngine().AssignForPhase(cycle, phase)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "created_count": created})
}

// BulkAssignReviews runs administrator-driven assignment for an explicit
// set of review types and optional user subset.
func BulkAssignReviews(c *gin.Context) {
	cycleID, ok := cycleIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Types       []string `json:"types" binding:"required"`
		UserIDs     []int    `json:"user_ids"`
		PeerCount   int      `json:"peer_count"`
		UpwardCount int      `json:"upward_count"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := services.NewGormCycleStore(config.DB)
	cycle, err := store.GetCycle(cycleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	created, err := newAssignmentEngine().BulkAssign(cycle, services.BulkAssignInput{
		Types:       req.Types,
		UserIDs:     req.UserIDs,
		PeerCount:   req.PeerCount,
		UpwardCount: req.UpwardCount,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "created_count": created})
}
