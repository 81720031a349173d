package services

import (
	"time"

	"performance-review-api/models"
)

// phaseOrder is the fixed lifecycle of a review cycle. Encoding it as an
// index into a constant slice makes "next phase" and "is terminal" O(1).
var phaseOrder = []string{
	models.PhasePlanning,
	models.PhaseSelf,
	models.PhasePeer,
	models.PhaseManager,
	models.PhaseUpward,
	models.PhaseCalibration,
	models.PhaseCompleted,
}

func phaseIndex(name string) int {
	for i, p := range phaseOrder {
		if p == name {
			return i
		}
	}
	return -1
}

// IsCanonicalPhase reports whether name is one of the seven phase names.
func IsCanonicalPhase(name string) bool {
	return phaseIndex(name) >= 0
}

// PhaseMachine owns cycle phase transitions. All mutations go through the
// CycleStore's compare-and-set, so concurrent transitions on one cycle are
// serialized: the loser observes the already-advanced state and fails with
// a conflict InvalidStateError.
type PhaseMachine struct {
	cycles   CycleStore
	assigner *AssignmentEngine
}

func NewPhaseMachine(cycles CycleStore, assigner *AssignmentEngine) *PhaseMachine {
	return &PhaseMachine{cycles: cycles, assigner: assigner}
}

// Start moves a cycle out of planning into its first enabled phase and
// materializes that phase's review assignments.
func (m *PhaseMachine) Start(cycleID int) (*models.ReviewCycle, error) {
	cycle, err := m.cycles.GetCycle(cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.Status != models.PhasePlanning {
		return nil, &InvalidStateError{Kind: StateAlreadyStarted, CurrentState: cycle.Status}
	}

	first := firstEnabledPhase(cycle)
	if first == "" {
		return nil, &InvalidStateError{Kind: StateNoValidPhase, CurrentState: cycle.Status}
	}

	ok, err := m.cycles.TransitionPhase(cycle.CycleID, models.PhasePlanning, first)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &InvalidStateError{Kind: StateConflict, CurrentState: cycle.Status}
	}
	cycle.Status = first
	cycle.CurrentPhase = first

	if _, err := m.assigner.AssignForPhase(cycle, first); err != nil {
		return nil, err
	}
	return cycle, nil
}

// Advance completes the current phase and enters the next one in canonical
// order. By default disabled phases are still entered (they just assign
// nothing); cycles with SkipDisabledPhases set jump over them.
func (m *PhaseMachine) Advance(cycleID int) (*models.ReviewCycle, error) {
	cycle, err := m.cycles.GetCycle(cycleID)
	if err != nil {
		return nil, err
	}
	if cycle.CurrentPhase == models.PhaseCompleted {
		return nil, &InvalidStateError{Kind: StateAlreadyCompleted, CurrentState: cycle.CurrentPhase}
	}

	idx := phaseIndex(cycle.CurrentPhase)
	if idx < 0 {
		return nil, &InvalidStateError{Kind: StateConflict, CurrentState: cycle.CurrentPhase}
	}
	next := nextPhase(cycle, idx)

	if err := m.cycles.MarkPhaseComplete(cycle.CycleID, cycle.CurrentPhase); err != nil {
		return nil, err
	}
	ok, err := m.cycles.TransitionPhase(cycle.CycleID, cycle.CurrentPhase, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &InvalidStateError{Kind: StateConflict, CurrentState: cycle.CurrentPhase}
	}
	if desc := cycle.PhaseDescriptor(cycle.CurrentPhase); desc != nil {
		desc.IsComplete = true
	}
	cycle.Status = next
	cycle.CurrentPhase = next

	if next != models.PhaseCompleted {
		if _, err := m.assigner.AssignForPhase(cycle, next); err != nil {
			return nil, err
		}
	}
	return cycle, nil
}

// ConfigurePhases replaces the cycle's phase descriptors. Pure
// configuration, no transition.
func (m *PhaseMachine) ConfigurePhases(cycleID int, phases []models.CyclePhase) (*models.ReviewCycle, error) {
	cycle, err := m.cycles.GetCycle(cycleID)
	if err != nil {
		return nil, err
	}
	for _, p := range phases {
		if !IsCanonicalPhase(p.PhaseName) {
			return nil, NewValidationError("invalid phase name %q", p.PhaseName)
		}
		if !p.EndDate.After(p.StartDate) {
			return nil, NewValidationError("phase %q must end after it starts", p.PhaseName)
		}
	}
	if err := m.cycles.ReplacePhases(cycle.CycleID, phases); err != nil {
		return nil, err
	}
	cycle.Phases = phases
	return cycle, nil
}

// IsCurrentPhaseOverdue reports whether the cycle's current phase deadline
// has passed. Cycles without a descriptor for the current phase are never
// overdue.
func IsCurrentPhaseOverdue(cycle *models.ReviewCycle, now time.Time) bool {
	desc := cycle.PhaseDescriptor(cycle.CurrentPhase)
	if desc == nil {
		return false
	}
	return now.After(desc.EndDate)
}

// firstEnabledPhase scans the canonical order and returns the first phase
// whose review type the cycle enables. Calibration counts as always-on, so
// a cycle with every review-type flag off still lands on calibration.
func firstEnabledPhase(cycle *models.ReviewCycle) string {
	for _, name := range phaseOrder[1 : len(phaseOrder)-1] {
		if cycle.IncludesType(name) {
			return name
		}
	}
	return ""
}

func nextPhase(cycle *models.ReviewCycle, idx int) string {
	next := phaseOrder[idx+1]
	if !cycle.SkipDisabledPhases {
		return next
	}
	for i := idx + 1; i < len(phaseOrder)-1; i++ {
		if cycle.IncludesType(phaseOrder[i]) {
			return phaseOrder[i]
		}
	}
	return models.PhaseCompleted
}
