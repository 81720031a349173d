package services

import (
	"fmt"
	"log"
	"time"

	"performance-review-api/models"
)

// escalationThreshold is the reminder count at which an unresponsive
// reviewer's manager is notified.
const escalationThreshold = 3

// SweepResult reports what a single scheduler pass did.
type SweepResult struct {
	AdvancedCycles []int    `json:"advanced_cycles"`
	RemindersSent  []int    `json:"reminders_sent"`
	Escalations    []int    `json:"escalations"`
	Errors         []string `json:"errors,omitempty"`
}

// WorkflowScheduler is the periodic sweep over active cycles: it advances
// phases whose deadlines passed and drives reminder/escalation processing
// for phases still open. It holds no state between runs — reminder history
// lives on the review records — so multiple instances can sweep the same
// store safely.
type WorkflowScheduler struct {
	cycles    CycleStore
	reviews   ReviewStore
	machine   *PhaseMachine
	directory Directory
	notifier  Notifier
}

func NewWorkflowScheduler(cycles CycleStore, reviews ReviewStore, machine *PhaseMachine, directory Directory, notifier Notifier) *WorkflowScheduler {
	return &WorkflowScheduler{
		cycles:    cycles,
		reviews:   reviews,
		machine:   machine,
		directory: directory,
		notifier:  notifier,
	}
}

// RunSweep processes every cycle that is neither in planning nor completed.
// One cycle's failure never aborts the sweep for the others; failures are
// collected in the result and logged.
func (s *WorkflowScheduler) RunSweep(now time.Time) SweepResult {
	var result SweepResult

	cycles, err := s.cycles.ListActiveCycles()
	if err != nil {
		log.Printf("workflow sweep: listing active cycles failed: %v", err)
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	for i := range cycles {
		cycle := &cycles[i]
		if err := s.sweepCycle(cycle, now, &result); err != nil {
			log.Printf("workflow sweep: cycle %d: %v", cycle.CycleID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("cycle %d: %v", cycle.CycleID, err))
		}
	}
	return result
}

func (s *WorkflowScheduler) sweepCycle(cycle *models.ReviewCycle, now time.Time, result *SweepResult) error {
	desc := cycle.PhaseDescriptor(cycle.CurrentPhase)
	if desc == nil {
		// Should not happen when phases were configured through the state
		// machine; skip rather than guess a deadline.
		log.Printf("workflow sweep: cycle %d has no descriptor for phase %q, skipping",
			cycle.CycleID, cycle.CurrentPhase)
		return nil
	}

	if now.After(desc.EndDate) {
		if cycle.AutoAdvancePhases {
			if _, err := s.machine.Advance(cycle.CycleID); err != nil {
				return err
			}
			result.AdvancedCycles = append(result.AdvancedCycles, cycle.CycleID)
			return nil
		}
		// Manual advance required; record the phase as complete and wait.
		return s.cycles.MarkPhaseComplete(cycle.CycleID, cycle.CurrentPhase)
	}

	return s.processReminders(cycle, now, result)
}

func (s *WorkflowScheduler) processReminders(cycle *models.ReviewCycle, now time.Time, result *SweepResult) error {
	if !cycle.RemindersEnabled {
		return nil
	}
	frequency := time.Duration(cycle.ReminderFrequencyDays) * 24 * time.Hour

	reviews, err := s.reviews.ListOpenForPhase(cycle.CycleID, cycle.CurrentPhase)
	if err != nil {
		return err
	}

	for i := range reviews {
		review := &reviews[i]
		if review.LastReminderSent != nil && now.Sub(*review.LastReminderSent) < frequency {
			continue
		}

		if err := s.notifier.SendReminder(review); err != nil {
			log.Printf("workflow sweep: reminder for review %d failed: %v", review.ReviewID, err)
			continue
		}
		review.ReminderCount++
		sent := now
		review.LastReminderSent = &sent
		if err := s.reviews.UpdateReview(review); err != nil {
			return err
		}
		result.RemindersSent = append(result.RemindersSent, review.ReviewID)

		if review.ReminderCount >= escalationThreshold && cycle.EscalateToManager {
			s.escalate(review, result)
		}
	}
	return nil
}

// escalate notifies the reviewer's manager. It neither resets the reminder
// counter nor touches review state; reviewers without a manager are simply
// not escalated.
func (s *WorkflowScheduler) escalate(review *models.Review, result *SweepResult) {
	reviewer, err := s.directory.GetUser(review.ReviewerID)
	if err != nil {
		log.Printf("workflow sweep: escalation lookup for reviewer %d failed: %v", review.ReviewerID, err)
		return
	}
	if reviewer.ManagerID == nil {
		return
	}
	manager, err := s.directory.GetUser(*reviewer.ManagerID)
	if err != nil {
		log.Printf("workflow sweep: escalation lookup for manager %d failed: %v", *reviewer.ManagerID, err)
		return
	}
	if err := s.notifier.SendEscalation(manager, review); err != nil {
		log.Printf("workflow sweep: escalation for review %d failed: %v", review.ReviewID, err)
		return
	}
	result.Escalations = append(result.Escalations, review.ReviewID)
}
