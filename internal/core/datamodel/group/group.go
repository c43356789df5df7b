package group

import (
	"time"

	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
)

type Group struct {
	ID           int64                           `gorm:"primaryKey"`
	Name         string                          `gorm:"column:name;not null"`
	Description  string                          `gorm:"column:description"`
	CompanyID    int64                           `gorm:"column:company_id;not null;uniqueIndex:idx_group_department_company"`
	DepartmentID int64                           `gorm:"column:department_id;not null;uniqueIndex:idx_group_department_company"`
	Department   *departmentDatamodel.Department `gorm:"foreignKey:DepartmentID"`
	IsActive     bool                            `gorm:"column:is_active;not null"`
	CreatedAt    time.Time                       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                       `gorm:"column:updated_at;autoUpdateTime"`
}

func (Group) TableName() string {
	return "chat_groups"
}
