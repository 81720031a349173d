package models

import (
	"time"
)

// Role IDs seeded in the roles table.
const (
	RoleEmployeeID = 1
	RoleManagerID  = 2
	RoleAdminID    = 3
)

type User struct {
	UserID     int     `gorm:"primaryKey;column:user_id" json:"user_id"`
	FirstName  string  `gorm:"column:first_name" json:"first_name"`
	LastName   string  `gorm:"column:last_name" json:"last_name"`
	Email      string  `gorm:"column:email;unique" json:"email"`
	Password   string  `gorm:"column:password" json:"-"`
	RoleID     int     `gorm:"column:role_id" json:"role_id"`
	ManagerID  *int    `gorm:"column:manager_id" json:"manager_id,omitempty"`
	Department string  `gorm:"column:department" json:"department"`
	Team       string  `gorm:"column:team" json:"team"`
	JobTitle   *string `gorm:"column:job_title" json:"job_title,omitempty"`

	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role    Role  `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Manager *User `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}
