package services

import (
	"errors"
	"strings"

	"performance-review-api/models"

	"gorm.io/gorm"
)

// Normalized role names as the core sees them. The raw roles table may hold
// arbitrary labels; normalization happens here, at the directory boundary,
// so the workflow code never inspects raw role records.
const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// DirectoryUser is the normalized shape the workflow engine works with.
type DirectoryUser struct {
	ID         int
	Name       string
	Email      string
	RoleName   string
	ManagerID  *int
	Department string
	Team       string
}

// Directory is the read-only organizational lookup the workflow engine
// consumes. Implementations must return normalized role names.
type Directory interface {
	GetUser(id int) (*DirectoryUser, error)
	ListParticipants(cycleID int) ([]DirectoryUser, error)
	GetDirectReports(managerID int) ([]DirectoryUser, error)
}

// GormDirectory resolves directory queries against the users table. Cycle
// participation is currently company-wide: every active user participates
// in every cycle.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func normalizeRole(roleID int, roleLabel string) string {
	switch roleID {
	case models.RoleManagerID:
		return RoleManager
	case models.RoleAdminID:
		return RoleAdmin
	}
	// Fall back to the label for rows with nonstandard role IDs.
	switch strings.ToLower(strings.TrimSpace(roleLabel)) {
	case RoleManager:
		return RoleManager
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleEmployee
	}
}

func toDirectoryUser(u *models.User) DirectoryUser {
	return DirectoryUser{
		ID:         u.UserID,
		Name:       u.FullName(),
		Email:      u.Email,
		RoleName:   normalizeRole(u.RoleID, u.Role.Role),
		ManagerID:  u.ManagerID,
		Department: u.Department,
		Team:       u.Team,
	}
}

func (d *GormDirectory) GetUser(id int) (*DirectoryUser, error) {
	var user models.User
	err := d.db.Preload("Role").
		Where("user_id = ? AND delete_at IS NULL", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: id}
		}
		return nil, storeErr("directory.GetUser", err)
	}
	du := toDirectoryUser(&user)
	return &du, nil
}

func (d *GormDirectory) ListParticipants(cycleID int) ([]DirectoryUser, error) {
	var users []models.User
	err := d.db.Preload("Role").
		Where("delete_at IS NULL").
		Order("user_id ASC").
		Find(&users).Error
	if err != nil {
		return nil, storeErr("directory.ListParticipants", err)
	}
	out := make([]DirectoryUser, 0, len(users))
	for i := range users {
		out = append(out, toDirectoryUser(&users[i]))
	}
	return out, nil
}

func (d *GormDirectory) GetDirectReports(managerID int) ([]DirectoryUser, error) {
	var users []models.User
	err := d.db.Preload("Role").
		Where("manager_id = ? AND delete_at IS NULL", managerID).
		Order("user_id ASC").
		Find(&users).Error
	if err != nil {
		return nil, storeErr("directory.GetDirectReports", err)
	}
	out := make([]DirectoryUser, 0, len(users))
	for i := range users {
		out = append(out, toDirectoryUser(&users[i]))
	}
	return out, nil
}
