package services

import (
	"math/rand"
	"sort"
	"time"

	"performance-review-api/models"

	"github.com/google/uuid"
)

// Default reviewer counts per reviewee for sampled review types.
const (
	DefaultPeerReviewers   = 3
	DefaultUpwardReviewers = 3
)

// AssignmentEngine derives reviewer→reviewee pairs for a cycle phase and
// persists the missing review records. Re-running an assignment is safe:
// every candidate pair goes through ReviewStore.InsertIfAbsent, so existing
// reviews are left alone and only the gaps are filled.
//
// The random source is injected so peer/upward sampling is reproducible
// under test.
type AssignmentEngine struct {
	cycles    CycleStore
	reviews   ReviewStore
	directory Directory
	rng       *rand.Rand
}

func NewAssignmentEngine(cycles CycleStore, reviews ReviewStore, directory Directory, rng *rand.Rand) *AssignmentEngine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &AssignmentEngine{cycles: cycles, reviews: reviews, directory: directory, rng: rng}
}

// AssignForPhase materializes review records for the given phase. Planning,
// calibration and completed carry no reviews and are explicit no-ops.
// Returns the number of reviews actually created.
func (e *AssignmentEngine) AssignForPhase(cycle *models.ReviewCycle, phase string) (int, error) {
	switch phase {
	case models.PhasePlanning, models.PhaseCalibration, models.PhaseCompleted:
		return 0, nil
	}
	// A disabled review type makes its phase a pure timeline slot: the
	// cycle still passes through it, but nothing is assigned.
	if !cycle.IncludesType(phase) {
		return 0, nil
	}
	if cycle.TemplateID == nil {
		return 0, &InvalidStateError{Kind: StateTemplateRequired, CurrentState: cycle.Status}
	}

	participants, err := e.directory.ListParticipants(cycle.CycleID)
	if err != nil {
		return 0, err
	}

	switch phase {
	case models.PhaseSelf:
		return e.assignSelf(cycle, participants)
	case models.PhasePeer:
		return e.assignPeers(cycle, participants, DefaultPeerReviewers)
	case models.PhaseManager:
		return e.assignManagers(cycle, participants)
	case models.PhaseUpward:
		return e.assignUpward(cycle, participants, DefaultUpwardReviewers)
	}
	return 0, NewValidationError("unknown review phase %q", phase)
}

// BulkAssignInput describes an administrator-invoked assignment run.
type BulkAssignInput struct {
	Types       []string
	UserIDs     []int
	PeerCount   int
	UpwardCount int
}

// BulkAssign applies the per-type algorithms to an explicit population.
// It also flips the cycle status to the self phase to reflect that
// assignment has begun, regardless of which types were requested.
func (e *AssignmentEngine) BulkAssign(cycle *models.ReviewCycle, in BulkAssignInput) (int, error) {
	if len(in.Types) == 0 {
		return 0, NewValidationError("at least one review type is required")
	}
	for _, t := range in.Types {
		switch t {
		case models.ReviewTypeSelf, models.ReviewTypePeer, models.ReviewTypeManager, models.ReviewTypeUpward:
		default:
			return 0, NewValidationError("invalid review type %q", t)
		}
	}
	if cycle.TemplateID == nil {
		return 0, &InvalidStateError{Kind: StateTemplateRequired, CurrentState: cycle.Status}
	}

	participants, err := e.directory.ListParticipants(cycle.CycleID)
	if err != nil {
		return 0, err
	}
	if len(in.UserIDs) > 0 {
		subset := make(map[int]bool, len(in.UserIDs))
		for _, id := range in.UserIDs {
			subset[id] = true
		}
		filtered := participants[:0]
		for _, p := range participants {
			if subset[p.ID] {
				filtered = append(filtered, p)
			}
		}
		participants = filtered
	}

	peerCount := in.PeerCount
	if peerCount <= 0 {
		peerCount = DefaultPeerReviewers
	}
	upwardCount := in.UpwardCount
	if upwardCount <= 0 {
		upwardCount = DefaultUpwardReviewers
	}

	created := 0
	for _, t := range in.Types {
		var n int
		var err error
		switch t {
		case models.ReviewTypeSelf:
			n, err = e.assignSelf(cycle, participants)
		case models.ReviewTypePeer:
			n, err = e.assignPeers(cycle, participants, peerCount)
		case models.ReviewTypeManager:
			n, err = e.assignManagers(cycle, participants)
		case models.ReviewTypeUpward:
			n, err = e.assignUpward(cycle, participants, upwardCount)
		}
		created += n
		if err != nil {
			return created, err
		}
	}

	if err := e.cycles.SetStatus(cycle.CycleID, models.PhaseSelf); err != nil {
		return created, err
	}
	cycle.Status = models.PhaseSelf
	cycle.CurrentPhase = models.PhaseSelf
	return created, nil
}

func (e *AssignmentEngine) newReview(cycle *models.ReviewCycle, reviewerID, revieweeID int, reviewType string, anonymous bool) *models.Review {
	now := time.Now()
	return &models.Review{
		ReferenceNumber:   uuid.NewString(),
		CycleID:           cycle.CycleID,
		TemplateID:        *cycle.TemplateID,
		ReviewerID:        reviewerID,
		RevieweeID:        revieweeID,
		ReviewType:        reviewType,
		Status:            models.ReviewStatusPending,
		ApprovalStatus:    models.ApprovalPending,
		IsAnonymous:       anonymous,
		VisibleToReviewee: reviewType == models.ReviewTypeSelf,
		CreateAt:          &now,
	}
}

// assignSelf creates one self review per participant. Never anonymous.
func (e *AssignmentEngine) assignSelf(cycle *models.ReviewCycle, participants []DirectoryUser) (int, error) {
	created := 0
	for _, p := range participants {
		review := e.newReview(cycle, p.ID, p.ID, models.ReviewTypeSelf, false)
		ok, err := e.reviews.InsertIfAbsent(review)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// assignPeers creates up to n peer reviews per reviewee, preferring
// colleagues under the same manager, then the same department, then a
// random sample of everyone else.
func (e *AssignmentEngine) assignPeers(cycle *models.ReviewCycle, participants []DirectoryUser, n int) (int, error) {
	anonymous := cycle.PeerAnonymity == models.AnonymityFull
	created := 0
	for _, reviewee := range participants {
		for _, peer := range e.pickPeers(reviewee, participants, n) {
			review := e.newReview(cycle, peer.ID, reviewee.ID, models.ReviewTypePeer, anonymous)
			ok, err := e.reviews.InsertIfAbsent(review)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}

// pickPeers applies the fallback cascade: same manager, same department,
// then random remainder. Candidates are deduplicated by user ID and the
// reviewee is never a candidate.
func (e *AssignmentEngine) pickPeers(reviewee DirectoryUser, participants []DirectoryUser, n int) []DirectoryUser {
	chosen := make([]DirectoryUser, 0, n)
	seen := map[int]bool{reviewee.ID: true}

	take := func(pool []DirectoryUser) {
		e.shuffle(pool)
		for _, p := range pool {
			if len(chosen) >= n {
				return
			}
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			chosen = append(chosen, p)
		}
	}

	var sameManager, sameDept, rest []DirectoryUser
	for _, p := range participants {
		if p.ID == reviewee.ID {
			continue
		}
		switch {
		case reviewee.ManagerID != nil && p.ManagerID != nil && *p.ManagerID == *reviewee.ManagerID:
			sameManager = append(sameManager, p)
		case p.Department != "" && p.Department == reviewee.Department:
			sameDept = append(sameDept, p)
		default:
			rest = append(rest, p)
		}
	}

	take(sameManager)
	if len(chosen) < n {
		take(sameDept)
	}
	if len(chosen) < n {
		take(rest)
	}
	return chosen
}

// assignManagers creates exactly one manager review per reviewee that has a
// manager. Participants without a manager are skipped, not an error.
func (e *AssignmentEngine) assignManagers(cycle *models.ReviewCycle, participants []DirectoryUser) (int, error) {
	created := 0
	for _, p := range participants {
		if p.ManagerID == nil {
			continue
		}
		review := e.newReview(cycle, *p.ManagerID, p.ID, models.ReviewTypeManager, false)
		ok, err := e.reviews.InsertIfAbsent(review)
		if err != nil {
			return created, err
		}
		if ok {
			created++
		}
	}
	return created, nil
}

// assignUpward creates up to n upward reviews per manager, drawn from that
// manager's reports within the participant population.
func (e *AssignmentEngine) assignUpward(cycle *models.ReviewCycle, participants []DirectoryUser, n int) (int, error) {
	anonymous := cycle.UpwardAnonymity == models.AnonymityFull
	byManager := make(map[int][]DirectoryUser)
	for _, p := range participants {
		if p.ManagerID == nil {
			continue
		}
		byManager[*p.ManagerID] = append(byManager[*p.ManagerID], p)
	}

	managerIDs := make([]int, 0, len(byManager))
	for id := range byManager {
		managerIDs = append(managerIDs, id)
	}
	sort.Ints(managerIDs)

	created := 0
	for _, managerID := range managerIDs {
		reports := byManager[managerID]
		e.shuffle(reports)
		count := 0
		for _, reviewer := range reports {
			if count >= n {
				break
			}
			if reviewer.ID == managerID {
				continue
			}
			review := e.newReview(cycle, reviewer.ID, managerID, models.ReviewTypeUpward, anonymous)
			ok, err := e.reviews.InsertIfAbsent(review)
			if err != nil {
				return created, err
			}
			if ok {
				created++
			}
			count++
		}
	}
	return created, nil
}

func (e *AssignmentEngine) shuffle(users []DirectoryUser) {
	e.rng.Shuffle(len(users), func(i, j int) {
		users[i], users[j] = users[j], users[i]
	})
}
