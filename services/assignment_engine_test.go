package services

import (
	"errors"
	"math/rand"
	"testing"

	"performance-review-api/models"
)

func newTestEngine(directory Directory, seed int64) (*AssignmentEngine, *fakeCycleStore, *fakeReviewStore) {
	cycles := newFakeCycleStore()
	reviews := newFakeReviewStore()
	engine := NewAssignmentEngine(cycles, reviews, directory, rand.New(rand.NewSource(seed)))
	return engine, cycles, reviews
}

func TestAssignForPhaseIsIdempotent(t *testing.T) {
	engine, _, reviews := newTestEngine(fourPersonOrg(), 1)
	cycle := newTestCycle(1)
	cycle.Status = models.PhaseSelf
	cycle.CurrentPhase = cycle.Status

	first, err := engine.AssignForPhase(cycle, cycle.CurrentPhase)
	if err != nil {
		t.Fatalf("first AssignForPhase: %v", err)
	}
	if first != 4 {
		t.Fatalf("first run created %d reviews, want 4", first)
	}

	second, err := engine.AssignForPhase(cycle, cycle.CurrentPhase)
	if err != nil {
		t.Fatalf("second AssignForPhase: %v", err)
	}
	if second != 0 {
		t.Fatalf("second run created %d reviews, want 0", second)
	}
	if n := len(reviews.byType(1, "self")); n != 4 {
		t.Fatalf("stored self reviews = %d after two runs, want 4", n)
	}
}

func TestAssignForPhaseRequiresTemplate(t *testing.T) {
	engine, _, reviews := newTestEngine(fourPersonOrg(), 1)
	cycle := newTestCycle(1)
	cycle.TemplateID = nil

	_, err := engine.AssignForPhase(cycle, "self")
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) || invalid.Kind != StateTemplateRequired {
		t.Fatalf("err = %v, want template_required InvalidStateError", err)
	}
	if len(reviews.reviews) != 0 {
		t.Fatalf("reviews created despite missing template: %d", len(reviews.reviews))
	}
}

func TestAssignForPhaseNoOpPhases(t *testing.T) {
	engine, _, reviews := newTestEngine(fourPersonOrg(), 1)
	cycle := newTestCycle(1)
	cycle.TemplateID = nil // a no-op phase must not even reach the template check

	for _, phase := range []string{"planning", "calibration", "completed"} {
		created, err := engine.AssignForPhase(cycle, phase)
		if err != nil {
			t.Fatalf("AssignForPhase(%s): %v", phase, err)
		}
		if created != 0 {
			t.Fatalf("AssignForPhase(%s) created %d reviews, want 0", phase, created)
		}
	}
	if len(reviews.reviews) != 0 {
		t.Fatalf("no-op phases stored %d reviews", len(reviews.reviews))
	}
}

func TestAssignManagerSkipsUsersWithoutManager(t *testing.T) {
	engine, _, reviews := newTestEngine(fourPersonOrg(), 1)
	cycle := newTestCycle(1)

	created, err := engine.AssignForPhase(cycle, "manager")
	if err != nil {
		t.Fatalf("AssignForPhase: %v", err)
	}
	// User 1 has no manager; 2, 3 and 4 report to 1.
	if created != 3 {
		t.Fatalf("created %d manager reviews, want 3", created)
	}
	for _, r := range reviews.byType(1, "manager") {
		if r.ReviewerID != 1 {
			t.Errorf("manager review %d has reviewer %d, want 1", r.ReviewID, r.ReviewerID)
		}
		if r.RevieweeID == 1 {
			t.Errorf("manager review created for the unmanaged user")
		}
	}
}

func TestPeerSelectionCascade(t *testing.T) {
	// Reviewee 2 has one same-manager colleague (3), one same-department
	// colleague with a different manager (4), and two colleagues elsewhere
	// (5, 6). With three slots the cascade must take 3, then 4, then one of
	// the remainder.
	directory := newFakeDirectory(
		DirectoryUser{ID: 1, RoleName: RoleManager, Department: "Exec"},
		DirectoryUser{ID: 2, RoleName: RoleEmployee, ManagerID: intPtr(1), Department: "Engineering"},
		DirectoryUser{ID: 3, RoleName: RoleEmployee, ManagerID: intPtr(1), Department: "Engineering"},
		DirectoryUser{ID: 4, RoleName: RoleEmployee, ManagerID: intPtr(9), Department: "Engineering"},
		DirectoryUser{ID: 5, RoleName: RoleEmployee, ManagerID: intPtr(9), Department: "Sales"},
		DirectoryUser{ID: 6, RoleName: RoleEmployee, ManagerID: intPtr(9), Department: "Sales"},
	)
	engine, _, reviews := newTestEngine(directory, 42)
	cycle := newTestCycle(1)

	if _, err := engine.AssignForPhase(cycle, "peer"); err != nil {
		t.Fatalf("AssignForPhase: %v", err)
	}

	reviewers := map[int]bool{}
	for _, r := range reviews.byType(1, "peer") {
		if r.RevieweeID != 2 {
			continue
		}
		if r.ReviewerID == r.RevieweeID {
			t.Fatalf("peer review with reviewer == reviewee: %+v", r)
		}
		if reviewers[r.ReviewerID] {
			t.Fatalf("duplicate peer reviewer %d for reviewee 2", r.ReviewerID)
		}
		reviewers[r.ReviewerID] = true
	}

	if len(reviewers) != 3 {
		t.Fatalf("reviewee 2 has %d peer reviewers, want 3", len(reviewers))
	}
	if !reviewers[3] {
		t.Error("same-manager colleague 3 not selected first")
	}
	if !reviewers[4] {
		t.Error("same-department colleague 4 not selected second")
	}
	if !reviewers[1] && !reviewers[5] && !reviewers[6] {
		t.Error("no random-remainder reviewer selected")
	}
}

func TestPeerSelectionIsDeterministicForSeed(t *testing.T) {
	org := func() *fakeDirectory {
		users := make([]DirectoryUser, 0, 10)
		for id := 1; id <= 10; id++ {
			users = append(users, DirectoryUser{ID: id, RoleName: RoleEmployee, Department: "Ops"})
		}
		return newFakeDirectory(users...)
	}

	pairs := func(seed int64) map[[2]int]bool {
		engine, _, reviews := newTestEngine(org(), seed)
		cycle := newTestCycle(1)
		if _, err := engine.AssignForPhase(cycle, "peer"); err != nil {
			t.Fatalf("AssignForPhase: %v", err)
		}
		out := map[[2]int]bool{}
		for _, r := range reviews.byType(1, "peer") {
			out[[2]int{r.ReviewerID, r.RevieweeID}] = true
		}
		return out
	}

	a, b := pairs(7), pairs(7)
	if len(a) != len(b) {
		t.Fatalf("same seed produced %d vs %d pairs", len(a), len(b))
	}
	for pair := range a {
		if !b[pair] {
			t.Fatalf("same seed produced different pair sets: %v missing", pair)
		}
	}
}

func TestPeerAnonymityFollowsCycleSetting(t *testing.T) {
	engine, _, reviews := newTestEngine(fourPersonOrg(), 1)
	cycle := newTestCycle(1)
	cycle.PeerAnonymity = "full"

	if _, err := engine.AssignForPhase(cycle, "peer"); err != nil {
		t.Fatalf("AssignForPhase: %v", err)
	}
	for _, r := range reviews.byType(1, "peer") {
		if !r.IsAnonymous {
			t.Fatalf("peer review %d not anonymous under full anonymity", r.ReviewID)
		}
	}
}

func TestUpwardAssignsReportsAsReviewers(t *testing.T) {
	engine, _, reviews := newTestEngine(fourPersonOrg(), 1)
	cycle := newTestCycle(1)

	created, err := engine.AssignForPhase(cycle, "upward")
	if err != nil {
		t.Fatalf("AssignForPhase: %v", err)
	}
	if created != 3 {
		t.Fatalf("created %d upward reviews, want 3", created)
	}
	for _, r := range reviews.byType(1, "upward") {
		if r.RevieweeID != 1 {
			t.Errorf("upward review %d targets %d, want manager 1", r.ReviewID, r.RevieweeID)
		}
		if r.ReviewerID == r.RevieweeID {
			t.Errorf("upward review %d has reviewer == reviewee", r.ReviewID)
		}
	}
}

func TestBulkAssignFlipsCycleStatus(t *testing.T) {
	directory := fourPersonOrg()
	cycles := newFakeCycleStore(newTestCycle(1))
	reviews := newFakeReviewStore()
	engine := NewAssignmentEngine(cycles, reviews, directory, rand.New(rand.NewSource(1)))

	cycle, _ := cycles.GetCycle(1)
	created, err := engine.BulkAssign(cycle, BulkAssignInput{Types: []string{"manager"}})
	if err != nil {
		t.Fatalf("BulkAssign: %v", err)
	}
	if created != 3 {
		t.Fatalf("created %d reviews, want 3", created)
	}

	// Status flips to self even though self reviews were not requested.
	stored, _ := cycles.GetCycle(1)
	if stored.Status != "self" || stored.CurrentPhase != "self" {
		t.Fatalf("cycle status/phase = %q/%q after bulk assign, want self/self", stored.Status, stored.CurrentPhase)
	}
}

func TestBulkAssignValidatesTypes(t *testing.T) {
	engine, cycles, _ := newTestEngine(fourPersonOrg(), 1)
	cycles.cycles[1] = newTestCycle(1)
	cycle, _ := cycles.GetCycle(1)

	cases := []BulkAssignInput{
		{},
		{Types: []string{"sideways"}},
	}
	for _, in := range cases {
		_, err := engine.BulkAssign(cycle, in)
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("BulkAssign(%v) err = %v, want ValidationError", in.Types, err)
		}
	}
}

func TestBulkAssignHonorsUserSubsetAndCounts(t *testing.T) {
	engine, cycles, reviews := newTestEngine(fourPersonOrg(), 3)
	cycles.cycles[1] = newTestCycle(1)
	cycle, _ := cycles.GetCycle(1)

	_, err := engine.BulkAssign(cycle, BulkAssignInput{
		Types:     []string{"self", "peer"},
		UserIDs:   []int{2, 3},
		PeerCount: 1,
	})
	if err != nil {
		t.Fatalf("BulkAssign: %v", err)
	}

	if n := len(reviews.byType(1, "self")); n != 2 {
		t.Fatalf("self reviews = %d, want 2 (subset)", n)
	}
	for _, r := range reviews.byType(1, "peer") {
		if r.ReviewerID != 2 && r.ReviewerID != 3 {
			t.Errorf("peer reviewer %d outside requested subset", r.ReviewerID)
		}
	}
	perReviewee := map[int]int{}
	for _, r := range reviews.byType(1, "peer") {
		perReviewee[r.RevieweeID]++
	}
	for reviewee, n := range perReviewee {
		if n > 1 {
			t.Errorf("reviewee %d has %d peer reviews, want at most 1", reviewee, n)
		}
	}
}
