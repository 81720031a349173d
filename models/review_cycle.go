package models

import "time"

// Canonical phase names, in lifecycle order.
const (
	PhasePlanning    = "planning"
	PhaseSelf        = "self"
	PhasePeer        = "peer"
	PhaseManager     = "manager"
	PhaseUpward      = "upward"
	PhaseCalibration = "calibration"
	PhaseCompleted   = "completed"
)

// Cycle types.
const (
	CycleTypeQuarterly  = "quarterly"
	CycleTypeHalfYearly = "half-yearly"
	CycleTypeAnnual     = "annual"
	CycleTypeCustom     = "custom"
)

// Anonymity levels for a review type.
const (
	AnonymityFull    = "full"
	AnonymityPartial = "partial"
	AnonymityNone    = "none"
)

type ReviewCycle struct {
	CycleID     int     `gorm:"primaryKey;column:cycle_id" json:"cycle_id"`
	CycleName   string  `gorm:"column:cycle_name" json:"cycle_name"`
	Description *string `gorm:"column:description" json:"description,omitempty"`
	CycleType   string  `gorm:"column:cycle_type" json:"cycle_type"`
	TemplateID  *int    `gorm:"column:template_id" json:"template_id,omitempty"`

	StartDate time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date" json:"end_date"`

	// Status and CurrentPhase are written together on every transition and
	// always hold the same canonical phase name.
	Status       string `gorm:"column:status" json:"status"`
	CurrentPhase string `gorm:"column:current_phase" json:"current_phase"`

	// Review type flags.
	IncludeSelf    bool `gorm:"column:include_self" json:"include_self"`
	IncludePeer    bool `gorm:"column:include_peer" json:"include_peer"`
	IncludeManager bool `gorm:"column:include_manager" json:"include_manager"`
	IncludeUpward  bool `gorm:"column:include_upward" json:"include_upward"`

	// Anonymity per review type (full|partial|none).
	PeerAnonymity    string `gorm:"column:peer_anonymity" json:"peer_anonymity"`
	UpwardAnonymity  string `gorm:"column:upward_anonymity" json:"upward_anonymity"`
	ManagerAnonymity string `gorm:"column:manager_anonymity" json:"manager_anonymity"`

	IsRecurring         bool    `gorm:"column:is_recurring" json:"is_recurring"`
	RecurrenceFrequency *string `gorm:"column:recurrence_frequency" json:"recurrence_frequency,omitempty"`

	RequireApproval   bool `gorm:"column:require_approval" json:"require_approval"`
	AutoAdvancePhases bool `gorm:"column:auto_advance_phases" json:"auto_advance_phases"`
	// When set, Advance skips phases whose review-type flag is disabled
	// instead of entering them as empty phases. Off by default.
	SkipDisabledPhases bool `gorm:"column:skip_disabled_phases" json:"skip_disabled_phases"`

	// Reminder settings.
	RemindersEnabled      bool `gorm:"column:reminders_enabled" json:"reminders_enabled"`
	ReminderFrequencyDays int  `gorm:"column:reminder_frequency_days" json:"reminder_frequency_days"`
	EscalateToManager     bool `gorm:"column:escalate_to_manager" json:"escalate_to_manager"`
	EscalationDelayDays   int  `gorm:"column:escalation_delay_days" json:"escalation_delay_days"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Phases   []CyclePhase    `gorm:"foreignKey:CycleID" json:"phases,omitempty"`
	Template *ReviewTemplate `gorm:"foreignKey:TemplateID" json:"template,omitempty"`
}

type CyclePhase struct {
	PhaseID   int       `gorm:"primaryKey;column:phase_id" json:"phase_id"`
	CycleID   int       `gorm:"column:cycle_id" json:"cycle_id"`
	PhaseName string    `gorm:"column:phase_name" json:"phase_name"`
	StartDate time.Time `gorm:"column:start_date" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date" json:"end_date"`
	// JSON-encoded list of reminder timestamps for this phase.
	ReminderDates *string `gorm:"column:reminder_dates" json:"reminder_dates,omitempty"`
	IsComplete    bool    `gorm:"column:is_complete" json:"is_complete"`
}

// TableName overrides
func (ReviewCycle) TableName() string {
	return "review_cycles"
}

func (CyclePhase) TableName() string {
	return "cycle_phases"
}

// PhaseDescriptor returns the phase row matching name, or nil.
func (c *ReviewCycle) PhaseDescriptor(name string) *CyclePhase {
	for i := range c.Phases {
		if c.Phases[i].PhaseName == name {
			return &c.Phases[i]
		}
	}
	return nil
}

// IncludesType reports whether the given review type is enabled for the
// cycle. Calibration is always on; planning and completed carry no reviews.
func (c *ReviewCycle) IncludesType(phase string) bool {
	switch phase {
	case PhaseSelf:
		return c.IncludeSelf
	case PhasePeer:
		return c.IncludePeer
	case PhaseManager:
		return c.IncludeManager
	case PhaseUpward:
		return c.IncludeUpward
	case PhaseCalibration:
		return true
	default:
		return false
	}
}
