package department

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/core/common/validation"
)

type CreateDepartmentDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *CreateDepartmentDTO) Validate() *errors.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)

	if err := validation.ValidateDepartmentName(d.Name); err != nil {
		return err
	}
	v := validation.NewValidator()
	v.Field("description", d.Description).MaxLength(validation.MaxDescriptionLength)
	return v.Validate()
}

type UpdateDepartmentDTO struct {
	Description string `json:"description"`
}

func (d *UpdateDepartmentDTO) Validate() *errors.AppError {
	d.Description = strings.TrimSpace(d.Description)
	v := validation.NewValidator()
	v.Field("description", d.Description).MaxLength(validation.MaxDescriptionLength)
	return v.Validate()
}

type DepartmentResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CompanyID   int64     `json:"companyId"`
	IsActive    bool      `json:"isActive"`
	MemberCount *int64    `json:"memberCount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type DepartmentsResponse struct {
	Departments []DepartmentResponse `json:"departments"`
}

type DepartmentEnvelope struct {
	Department DepartmentResponse `json:"department"`
}

type DepartmentDetailResponse struct {
	Department DepartmentResponse `json:"department"`
	Members    []account.Profile  `json:"members"`
}
