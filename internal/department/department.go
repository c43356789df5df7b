package department

import (
	"fmt"
	"time"

	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
)

type Department struct {
	ID          int64
	Name        string
	Description string
	CompanyID   int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewDepartment(companyID int64, name, description string) *Department {
	now := time.Now()
	return &Department{
		Name:        name,
		Description: description,
		CompanyID:   companyID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TeamGroup is the chat group every new department gets.
func (d *Department) TeamGroup() *groupDatamodel.Group {
	return &groupDatamodel.Group{
		Name:         fmt.Sprintf("%s Team", d.Name),
		Description:  fmt.Sprintf("Chat group for %s department", d.Name),
		CompanyID:    d.CompanyID,
		DepartmentID: d.ID,
		IsActive:     true,
	}
}

func (d *Department) ToResponse() DepartmentResponse {
	return DepartmentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CompanyID:   d.CompanyID,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ToDataModel(d *Department) *departmentDatamodel.Department {
	return &departmentDatamodel.Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CompanyID:   d.CompanyID,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func FromDataModel(d *departmentDatamodel.Department) *Department {
	return &Department{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CompanyID:   d.CompanyID,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}
