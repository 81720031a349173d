package services

import (
	"fmt"
	"sort"
	"time"

	"performance-review-api/models"
)

func intPtr(i int) *int { return &i }

// fakeCycleStore keeps cycles in memory with the same compare-and-set
// semantics as the GORM store.
type fakeCycleStore struct {
	cycles map[int]*models.ReviewCycle
}

func newFakeCycleStore(cycles ...*models.ReviewCycle) *fakeCycleStore {
	s := &fakeCycleStore{cycles: make(map[int]*models.ReviewCycle)}
	for _, c := range cycles {
		s.cycles[c.CycleID] = c
	}
	return s
}

func (s *fakeCycleStore) snapshot(c *models.ReviewCycle) *models.ReviewCycle {
	copied := *c
	copied.Phases = append([]models.CyclePhase(nil), c.Phases...)
	return &copied
}

func (s *fakeCycleStore) GetCycle(id int) (*models.ReviewCycle, error) {
	c, ok := s.cycles[id]
	if !ok {
		return nil, &NotFoundError{Resource: "cycle", ID: id}
	}
	return s.snapshot(c), nil
}

func (s *fakeCycleStore) ListActiveCycles() ([]models.ReviewCycle, error) {
	ids := make([]int, 0, len(s.cycles))
	for id := range s.cycles {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var out []models.ReviewCycle
	for _, id := range ids {
		c := s.cycles[id]
		if c.Status == models.PhasePlanning || c.Status == models.PhaseCompleted {
			continue
		}
		out = append(out, *s.snapshot(c))
	}
	return out, nil
}

func (s *fakeCycleStore) TransitionPhase(cycleID int, from, to string) (bool, error) {
	c, ok := s.cycles[cycleID]
	if !ok {
		return false, &NotFoundError{Resource: "cycle", ID: cycleID}
	}
	if c.CurrentPhase != from {
		return false, nil
	}
	c.CurrentPhase = to
	c.Status = to
	return true, nil
}

func (s *fakeCycleStore) ReplacePhases(cycleID int, phases []models.CyclePhase) error {
	c, ok := s.cycles[cycleID]
	if !ok {
		return &NotFoundError{Resource: "cycle", ID: cycleID}
	}
	c.Phases = append([]models.CyclePhase(nil), phases...)
	return nil
}

func (s *fakeCycleStore) MarkPhaseComplete(cycleID int, phaseName string) error {
	c, ok := s.cycles[cycleID]
	if !ok {
		return &NotFoundError{Resource: "cycle", ID: cycleID}
	}
	for i := range c.Phases {
		if c.Phases[i].PhaseName == phaseName {
			c.Phases[i].IsComplete = true
		}
	}
	return nil
}

func (s *fakeCycleStore) SetStatus(cycleID int, status string) error {
	c, ok := s.cycles[cycleID]
	if !ok {
		return &NotFoundError{Resource: "cycle", ID: cycleID}
	}
	c.Status = status
	c.CurrentPhase = status
	return nil
}

// fakeReviewStore enforces the (cycle, reviewer, reviewee, type) uniqueness
// constraint in memory.
type fakeReviewStore struct {
	nextID  int
	reviews []models.Review
	// listOpenErr, when set for a cycle ID, makes ListOpenForPhase fail.
	listOpenErr map[int]error
}

func newFakeReviewStore() *fakeReviewStore {
	return &fakeReviewStore{nextID: 1, listOpenErr: make(map[int]error)}
}

func (s *fakeReviewStore) GetReview(id int) (*models.Review, error) {
	for i := range s.reviews {
		if s.reviews[i].ReviewID == id {
			copied := s.reviews[i]
			return &copied, nil
		}
	}
	return nil, &NotFoundError{Resource: "review", ID: id}
}

func (s *fakeReviewStore) InsertIfAbsent(review *models.Review) (bool, error) {
	for i := range s.reviews {
		r := &s.reviews[i]
		if r.CycleID == review.CycleID &&
			r.ReviewerID == review.ReviewerID &&
			r.RevieweeID == review.RevieweeID &&
			r.ReviewType == review.ReviewType {
			return false, nil
		}
	}
	review.ReviewID = s.nextID
	s.nextID++
	s.reviews = append(s.reviews, *review)
	return true, nil
}

func (s *fakeReviewStore) UpdateReview(review *models.Review) error {
	for i := range s.reviews {
		if s.reviews[i].ReviewID == review.ReviewID {
			s.reviews[i] = *review
			return nil
		}
	}
	return &NotFoundError{Resource: "review", ID: review.ReviewID}
}

func (s *fakeReviewStore) ListOpenForPhase(cycleID int, reviewType string) ([]models.Review, error) {
	if err := s.listOpenErr[cycleID]; err != nil {
		return nil, err
	}
	var out []models.Review
	for _, r := range s.reviews {
		if r.CycleID == cycleID && r.ReviewType == reviewType && r.IsOpen() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReviewStore) ListPendingForReviewees(revieweeIDs []int) ([]models.Review, error) {
	wanted := make(map[int]bool, len(revieweeIDs))
	for _, id := range revieweeIDs {
		wanted[id] = true
	}
	var out []models.Review
	for _, r := range s.reviews {
		if wanted[r.RevieweeID] && r.Status == models.ReviewStatusSubmitted && r.ApprovalStatus == models.ApprovalPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReviewStore) ListPendingByReviewer(reviewerID int, reviewType string) ([]models.Review, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if r.ReviewerID == reviewerID && r.ReviewType == reviewType &&
			r.Status == models.ReviewStatusSubmitted && r.ApprovalStatus == models.ApprovalPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeReviewStore) ListAllPending() ([]models.Review, error) {
	var out []models.Review
	for _, r := range s.reviews {
		if r.Status == models.ReviewStatusSubmitted && r.ApprovalStatus == models.ApprovalPending {
			out = append(out, r)
		}
	}
	return out, nil
}

// byType returns the stored reviews for a cycle and review type.
func (s *fakeReviewStore) byType(cycleID int, reviewType string) []models.Review {
	var out []models.Review
	for _, r := range s.reviews {
		if r.CycleID == cycleID && r.ReviewType == reviewType {
			out = append(out, r)
		}
	}
	return out
}

// fakeDirectory serves a static org chart.
type fakeDirectory struct {
	users map[int]DirectoryUser
}

func newFakeDirectory(users ...DirectoryUser) *fakeDirectory {
	d := &fakeDirectory{users: make(map[int]DirectoryUser)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) GetUser(id int) (*DirectoryUser, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: id}
	}
	return &u, nil
}

func (d *fakeDirectory) ListParticipants(cycleID int) ([]DirectoryUser, error) {
	ids := make([]int, 0, len(d.users))
	for id := range d.users {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]DirectoryUser, 0, len(ids))
	for _, id := range ids {
		out = append(out, d.users[id])
	}
	return out, nil
}

func (d *fakeDirectory) GetDirectReports(managerID int) ([]DirectoryUser, error) {
	all, _ := d.ListParticipants(0)
	var out []DirectoryUser
	for _, u := range all {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeNotifier records deliveries.
type fakeNotifier struct {
	reminders   []int
	escalations []string
	err         error
}

func (n *fakeNotifier) SendReminder(review *models.Review) error {
	if n.err != nil {
		return n.err
	}
	n.reminders = append(n.reminders, review.ReviewID)
	return nil
}

func (n *fakeNotifier) SendEscalation(manager *DirectoryUser, review *models.Review) error {
	if n.err != nil {
		return n.err
	}
	n.escalations = append(n.escalations, fmt.Sprintf("%d->%d", review.ReviewID, manager.ID))
	return nil
}

// testPhases builds descriptors for every canonical phase, each one day
// long, starting at start.
func testPhases(cycleID int, start time.Time) []models.CyclePhase {
	phases := make([]models.CyclePhase, 0, len(phaseOrder))
	for i, name := range phaseOrder {
		phases = append(phases, models.CyclePhase{
			PhaseID:   i + 1,
			CycleID:   cycleID,
			PhaseName: name,
			StartDate: start.Add(time.Duration(i) * 24 * time.Hour),
			EndDate:   start.Add(time.Duration(i+1) * 24 * time.Hour),
		})
	}
	return phases
}
