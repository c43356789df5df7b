package company

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/common/validation"
)

type CreateCompanyDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (d *CreateCompanyDTO) Validate() *errors.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Description = strings.TrimSpace(d.Description)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("description", d.Description).MaxLength(validation.MaxDescriptionLength)
	return v.Validate()
}

// UpdateCompanyDTO leaves fields that are nil untouched.
type UpdateCompanyDTO struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (d *UpdateCompanyDTO) Validate() *errors.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		trimmed := strings.TrimSpace(*d.Name)
		d.Name = &trimmed
		v.Field("name", trimmed).Required().MaxLength(validation.MaxNameLength)
	}
	if d.Description != nil {
		trimmed := strings.TrimSpace(*d.Description)
		d.Description = &trimmed
		v.Field("description", trimmed).MaxLength(validation.MaxDescriptionLength)
	}
	return v.Validate()
}

type CompanyResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CompanyStats struct {
	Departments int64 `json:"departments"`
	Employees   int64 `json:"employees"`
}

type CompanyDetailResponse struct {
	Company CompanyResponse `json:"company"`
	Stats   CompanyStats    `json:"stats"`
}

type CompanyEnvelope struct {
	Company CompanyResponse `json:"company"`
}
