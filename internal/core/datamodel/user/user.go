package user

import "time"

type User struct {
	ID           int64      `gorm:"primaryKey"`
	Name         string     `gorm:"column:name;size:100;not null"`
	Email        string     `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string     `gorm:"column:password_hash;not null"`
	Role         string     `gorm:"column:role;not null"`
	CompanyID    int64      `gorm:"column:company_id;not null;index"`
	DepartmentID *int64     `gorm:"column:department_id;index"`
	IsActive     bool       `gorm:"column:is_active;not null"`
	LastSeenAt   *time.Time `gorm:"column:last_seen_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
