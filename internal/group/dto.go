package group

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/common/validation"
)

type CreateGroupDTO struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	DepartmentID int64  `json:"departmentId"`
}

func (d *CreateGroupDTO) Validate() *errors.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("description", d.Description).MaxLength(validation.MaxDescriptionLength)
	v.Field("departmentId", d.DepartmentID).Required()
	return v.Validate()
}

type DepartmentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type GroupResponse struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	CompanyID    int64          `json:"companyId"`
	DepartmentID int64          `json:"departmentId"`
	Department   *DepartmentRef `json:"department,omitempty"`
	IsActive     bool           `json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type GroupsResponse struct {
	Groups []GroupResponse `json:"groups"`
}

type GroupEnvelope struct {
	Group GroupResponse `json:"group"`
}
