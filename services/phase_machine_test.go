package services

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"performance-review-api/models"
)

func fourPersonOrg() *fakeDirectory {
	// 1 is the manager of 2, 3 and 4.
	return newFakeDirectory(
		DirectoryUser{ID: 1, Name: "Ava Lind", RoleName: RoleManager, Department: "Engineering"},
		DirectoryUser{ID: 2, Name: "Ben Osei", RoleName: RoleEmployee, ManagerID: intPtr(1), Department: "Engineering"},
		DirectoryUser{ID: 3, Name: "Cleo Park", RoleName: RoleEmployee, ManagerID: intPtr(1), Department: "Engineering"},
		DirectoryUser{ID: 4, Name: "Dan Reyes", RoleName: RoleEmployee, ManagerID: intPtr(1), Department: "Engineering"},
	)
}

func newTestCycle(id int) *models.ReviewCycle {
	return &models.ReviewCycle{
		CycleID:        id,
		CycleName:      "FY26 Q1",
		CycleType:      models.CycleTypeQuarterly,
		TemplateID:     intPtr(7),
		Status:         models.PhasePlanning,
		CurrentPhase:   models.PhasePlanning,
		IncludeSelf:    true,
		IncludePeer:    true,
		IncludeManager: true,
		IncludeUpward:  true,
		Phases:         testPhases(id, time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)),
	}
}

func newTestMachine(cycle *models.ReviewCycle, directory Directory) (*PhaseMachine, *fakeCycleStore, *fakeReviewStore) {
	cycles := newFakeCycleStore(cycle)
	reviews := newFakeReviewStore()
	engine := NewAssignmentEngine(cycles, reviews, directory, rand.New(rand.NewSource(1)))
	return NewPhaseMachine(cycles, engine), cycles, reviews
}

func TestStartEntersFirstEnabledPhase(t *testing.T) {
	cycle := newTestCycle(1)
	cycle.IncludeSelf = false
	cycle.IncludeUpward = false
	machine, _, _ := newTestMachine(cycle, fourPersonOrg())

	got, err := machine.Start(1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got.CurrentPhase != models.PhasePeer {
		t.Fatalf("first phase = %q, want %q", got.CurrentPhase, models.PhasePeer)
	}
	if got.Status != got.CurrentPhase {
		t.Fatalf("status %q diverged from current phase %q", got.Status, got.CurrentPhase)
	}
}

func TestStartCreatesSelfReviewsForEveryParticipant(t *testing.T) {
	cycle := newTestCycle(1)
	cycle.IncludeManager = false
	cycle.IncludeUpward = false
	machine, _, reviews := newTestMachine(cycle, fourPersonOrg())

	got, err := machine.Start(1)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got.CurrentPhase != models.PhaseSelf {
		t.Fatalf("first phase = %q, want self", got.CurrentPhase)
	}

	selfReviews := reviews.byType(1, models.ReviewTypeSelf)
	if len(selfReviews) != 4 {
		t.Fatalf("self reviews = %d, want 4", len(selfReviews))
	}
	for _, r := range selfReviews {
		if r.ReviewerID != r.RevieweeID {
			t.Errorf("self review %d: reviewer %d != reviewee %d", r.ReviewID, r.ReviewerID, r.RevieweeID)
		}
		if r.Status != models.ReviewStatusPending {
			t.Errorf("self review %d: status %q, want pending", r.ReviewID, r.Status)
		}
	}
}

func TestStartRejectsAlreadyStartedCycle(t *testing.T) {
	cycle := newTestCycle(1)
	cycle.Status = models.PhaseSelf
	cycle.CurrentPhase = models.PhaseSelf
	machine, _, _ := newTestMachine(cycle, fourPersonOrg())

	_, err := machine.Start(1)
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) || invalid.Kind != StateAlreadyStarted {
		t.Fatalf("err = %v, want already_started InvalidStateError", err)
	}
	if invalid.CurrentState != models.PhaseSelf {
		t.Fatalf("CurrentState = %q, want self", invalid.CurrentState)
	}
}

func TestAdvanceWalksCanonicalOrderToCompletion(t *testing.T) {
	cycle := newTestCycle(1)
	machine, cycles, _ := newTestMachine(cycle, fourPersonOrg())

	if _, err := machine.Start(1); err != nil {
		t.Fatalf("Start: %v", err)
	}

	want := []string{
		models.PhasePeer,
		models.PhaseManager,
		models.PhaseUpward,
		models.PhaseCalibration,
		models.PhaseCompleted,
	}
	for _, expected := range want {
		got, err := machine.Advance(1)
		if err != nil {
			t.Fatalf("Advance to %s: %v", expected, err)
		}
		if got.CurrentPhase != expected {
			t.Fatalf("phase = %q, want %q", got.CurrentPhase, expected)
		}
		if got.Status != got.CurrentPhase {
			t.Fatalf("status %q diverged from phase %q", got.Status, got.CurrentPhase)
		}
	}

	stored, _ := cycles.GetCycle(1)
	if stored.CurrentPhase != models.PhaseCompleted {
		t.Fatalf("stored phase = %q, want completed", stored.CurrentPhase)
	}
}

func TestAdvanceOnCompletedCycleFailsWithoutMutation(t *testing.T) {
	cycle := newTestCycle(1)
	cycle.Status = models.PhaseCompleted
	cycle.CurrentPhase = models.PhaseCompleted
	machine, cycles, _ := newTestMachine(cycle, fourPersonOrg())

	_, err := machine.Advance(1)
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) || invalid.Kind != StateAlreadyCompleted {
		t.Fatalf("err = %v, want already_completed InvalidStateError", err)
	}

	stored, _ := cycles.GetCycle(1)
	if stored.CurrentPhase != models.PhaseCompleted || stored.Status != models.PhaseCompleted {
		t.Fatalf("completed cycle was mutated: %+v", stored)
	}
}

func TestAdvanceEntersDisabledPhaseByDefault(t *testing.T) {
	cycle := newTestCycle(1)
	cycle.IncludeUpward = false
	cycle.Status = models.PhaseManager
	cycle.CurrentPhase = models.PhaseManager
	machine, cycles, reviews := newTestMachine(cycle, fourPersonOrg())

	got, err := machine.Advance(1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got.CurrentPhase != models.PhaseUpward || got.Status != models.PhaseUpward {
		t.Fatalf("phase/status = %q/%q, want upward/upward", got.CurrentPhase, got.Status)
	}

	stored, _ := cycles.GetCycle(1)
	if desc := stored.PhaseDescriptor(models.PhaseManager); desc == nil || !desc.IsComplete {
		t.Fatalf("manager phase descriptor not marked complete: %+v", desc)
	}
	// The disabled phase is a pure timeline slot: no upward reviews.
	if n := len(reviews.byType(1, models.ReviewTypeUpward)); n != 0 {
		t.Fatalf("disabled upward phase assigned %d reviews, want 0", n)
	}
}

func TestAdvanceSkipsDisabledPhasesWhenConfigured(t *testing.T) {
	cycle := newTestCycle(1)
	cycle.IncludeUpward = false
	cycle.SkipDisabledPhases = true
	cycle.Status = models.PhaseManager
	cycle.CurrentPhase = models.PhaseManager
	machine, _, _ := newTestMachine(cycle, fourPersonOrg())

	got, err := machine.Advance(1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if got.CurrentPhase != models.PhaseCalibration {
		t.Fatalf("phase = %q, want calibration (upward skipped)", got.CurrentPhase)
	}
}

func TestConfigurePhasesValidation(t *testing.T) {
	cycle := newTestCycle(1)
	machine, _, _ := newTestMachine(cycle, fourPersonOrg())
	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		phases []models.CyclePhase
	}{
		{
			name: "unknown phase name",
			phases: []models.CyclePhase{
				{PhaseName: "retrospective", StartDate: start, EndDate: start.Add(24 * time.Hour)},
			},
		},
		{
			name: "end before start",
			phases: []models.CyclePhase{
				{PhaseName: models.PhaseSelf, StartDate: start, EndDate: start.Add(-time.Hour)},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := machine.ConfigurePhases(1, tc.phases)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestConfigurePhasesReplacesDescriptors(t *testing.T) {
	cycle := newTestCycle(1)
	machine, cycles, _ := newTestMachine(cycle, fourPersonOrg())

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	phases := []models.CyclePhase{
		{PhaseName: models.PhaseSelf, StartDate: start, EndDate: start.Add(7 * 24 * time.Hour)},
		{PhaseName: models.PhaseManager, StartDate: start.Add(7 * 24 * time.Hour), EndDate: start.Add(14 * 24 * time.Hour)},
	}

	if _, err := machine.ConfigurePhases(1, phases); err != nil {
		t.Fatalf("ConfigurePhases: %v", err)
	}

	stored, _ := cycles.GetCycle(1)
	if len(stored.Phases) != 2 {
		t.Fatalf("stored phases = %d, want 2", len(stored.Phases))
	}
	if stored.CurrentPhase != models.PhasePlanning {
		t.Fatalf("ConfigurePhases transitioned the cycle to %q", stored.CurrentPhase)
	}
}

func TestIsCurrentPhaseOverdue(t *testing.T) {
	cycle := newTestCycle(1)
	cycle.Status = models.PhaseSelf
	cycle.CurrentPhase = models.PhaseSelf
	desc := cycle.PhaseDescriptor(models.PhaseSelf)

	if IsCurrentPhaseOverdue(cycle, desc.EndDate.Add(-time.Minute)) {
		t.Error("phase reported overdue before its deadline")
	}
	if !IsCurrentPhaseOverdue(cycle, desc.EndDate.Add(time.Minute)) {
		t.Error("phase not reported overdue after its deadline")
	}

	cycle.Phases = nil
	if IsCurrentPhaseOverdue(cycle, desc.EndDate.Add(time.Hour)) {
		t.Error("cycle without descriptors reported overdue")
	}
}
