package services

import (
	"errors"
	"time"

	"performance-review-api/models"

	"gorm.io/gorm"
)

// CycleStore is the persistence boundary for review cycles. Phase
// transitions are compare-and-set so two concurrent advances on the same
// cycle cannot both succeed.
type CycleStore interface {
	GetCycle(id int) (*models.ReviewCycle, error)
	ListActiveCycles() ([]models.ReviewCycle, error)
	TransitionPhase(cycleID int, from, to string) (bool, error)
	ReplacePhases(cycleID int, phases []models.CyclePhase) error
	MarkPhaseComplete(cycleID int, phaseName string) error
	SetStatus(cycleID int, status string) error
}

// ReviewStore is the persistence boundary for review records.
// InsertIfAbsent carries the idempotence contract: at most one review per
// (cycle, reviewer, reviewee, type) tuple.
type ReviewStore interface {
	GetReview(id int) (*models.Review, error)
	InsertIfAbsent(review *models.Review) (bool, error)
	UpdateReview(review *models.Review) error
	ListOpenForPhase(cycleID int, reviewType string) ([]models.Review, error)
	ListPendingForReviewees(revieweeIDs []int) ([]models.Review, error)
	ListPendingByReviewer(reviewerID int, reviewType string) ([]models.Review, error)
	ListAllPending() ([]models.Review, error)
}

type GormCycleStore struct {
	db *gorm.DB
}

func NewGormCycleStore(db *gorm.DB) *GormCycleStore {
	return &GormCycleStore{db: db}
}

func (s *GormCycleStore) GetCycle(id int) (*models.ReviewCycle, error) {
	var cycle models.ReviewCycle
	err := s.db.Preload("Phases").
		Where("cycle_id = ? AND delete_at IS NULL", id).
		First(&cycle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "cycle", ID: id}
		}
		return nil, storeErr("cycles.GetCycle", err)
	}
	return &cycle, nil
}

func (s *GormCycleStore) ListActiveCycles() ([]models.ReviewCycle, error) {
	var cycles []models.ReviewCycle
	err := s.db.Preload("Phases").
		Where("status NOT IN ? AND delete_at IS NULL",
			[]string{models.PhasePlanning, models.PhaseCompleted}).
		Order("cycle_id ASC").
		Find(&cycles).Error
	if err != nil {
		return nil, storeErr("cycles.ListActiveCycles", err)
	}
	return cycles, nil
}

// TransitionPhase moves the cycle from one phase to another, keeping status
// and current_phase equal. Returns false when the cycle was no longer in
// the expected phase (a concurrent transition won).
func (s *GormCycleStore) TransitionPhase(cycleID int, from, to string) (bool, error) {
	res := s.db.Model(&models.ReviewCycle{}).
		Where("cycle_id = ? AND current_phase = ? AND delete_at IS NULL", cycleID, from).
		Updates(map[string]interface{}{
			"status":        to,
			"current_phase": to,
			"update_at":     time.Now(),
		})
	if res.Error != nil {
		return false, storeErr("cycles.TransitionPhase", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormCycleStore) ReplacePhases(cycleID int, phases []models.CyclePhase) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cycle_id = ?", cycleID).Delete(&models.CyclePhase{}).Error; err != nil {
			return err
		}
		for i := range phases {
			phases[i].PhaseID = 0
			phases[i].CycleID = cycleID
			if err := tx.Create(&phases[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return storeErr("cycles.ReplacePhases", err)
}

func (s *GormCycleStore) MarkPhaseComplete(cycleID int, phaseName string) error {
	err := s.db.Model(&models.CyclePhase{}).
		Where("cycle_id = ? AND phase_name = ?", cycleID, phaseName).
		Update("is_complete", true).Error
	return storeErr("cycles.MarkPhaseComplete", err)
}

func (s *GormCycleStore) SetStatus(cycleID int, status string) error {
	err := s.db.Model(&models.ReviewCycle{}).
		Where("cycle_id = ? AND delete_at IS NULL", cycleID).
		Updates(map[string]interface{}{
			"status":        status,
			"current_phase": status,
			"update_at":     time.Now(),
		}).Error
	return storeErr("cycles.SetStatus", err)
}

type GormReviewStore struct {
	db *gorm.DB
}

func NewGormReviewStore(db *gorm.DB) *GormReviewStore {
	return &GormReviewStore{db: db}
}

func (s *GormReviewStore) GetReview(id int) (*models.Review, error) {
	var review models.Review
	err := s.db.Preload("Reviewer").Preload("Reviewee").
		Where("review_id = ?", id).
		First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "review", ID: id}
		}
		return nil, storeErr("reviews.GetReview", err)
	}
	return &review, nil
}

// InsertIfAbsent creates the review unless one already exists for the same
// (cycle, reviewer, reviewee, type) tuple. The unique index on that tuple
// is the backstop against concurrent inserts; a duplicate-key failure is
// reported as "not created", not as an error.
func (s *GormReviewStore) InsertIfAbsent(review *models.Review) (bool, error) {
	var count int64
	err := s.db.Model(&models.Review{}).
		Where("cycle_id = ? AND reviewer_id = ? AND reviewee_id = ? AND review_type = ?",
			review.CycleID, review.ReviewerID, review.RevieweeID, review.ReviewType).
		Count(&count).Error
	if err != nil {
		return false, storeErr("reviews.InsertIfAbsent", err)
	}
	if count > 0 {
		return false, nil
	}
	if err := s.db.Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, storeErr("reviews.InsertIfAbsent", err)
	}
	return true, nil
}

func (s *GormReviewStore) UpdateReview(review *models.Review) error {
	now := time.Now()
	review.UpdateAt = &now
	err := s.db.Save(review).Error
	return storeErr("reviews.UpdateReview", err)
}

func (s *GormReviewStore) ListOpenForPhase(cycleID int, reviewType string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Reviewer").
		Where("cycle_id = ? AND review_type = ? AND status IN ?",
			cycleID, reviewType,
			[]string{models.ReviewStatusPending, models.ReviewStatusInProgress}).
		Order("review_id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, storeErr("reviews.ListOpenForPhase", err)
	}
	return reviews, nil
}

func (s *GormReviewStore) ListPendingForReviewees(revieweeIDs []int) ([]models.Review, error) {
	if len(revieweeIDs) == 0 {
		return nil, nil
	}
	var reviews []models.Review
	err := s.db.Preload("Reviewer").Preload("Reviewee").
		Where("reviewee_id IN ? AND status = ? AND approval_status = ?",
			revieweeIDs, models.ReviewStatusSubmitted, models.ApprovalPending).
		Order("submitted_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, storeErr("reviews.ListPendingForReviewees", err)
	}
	return reviews, nil
}

func (s *GormReviewStore) ListPendingByReviewer(reviewerID int, reviewType string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Reviewer").Preload("Reviewee").
		Where("reviewer_id = ? AND review_type = ? AND status = ? AND approval_status = ?",
			reviewerID, reviewType, models.ReviewStatusSubmitted, models.ApprovalPending).
		Order("submitted_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, storeErr("reviews.ListPendingByReviewer", err)
	}
	return reviews, nil
}

func (s *GormReviewStore) ListAllPending() ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Preload("Reviewer").Preload("Reviewee").
		Where("status = ? AND approval_status = ?",
			models.ReviewStatusSubmitted, models.ApprovalPending).
		Order("submitted_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, storeErr("reviews.ListAllPending", err)
	}
	return reviews, nil
}
