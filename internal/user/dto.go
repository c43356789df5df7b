package user

import (
	"strings"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/core/common/validation"
)

type CreateUserDTO struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID *int64 `json:"departmentId"`
}

func (d *CreateUserDTO) Validate() *errors.AppError {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = validation.NormalizeEmail(d.Email)

	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("email", d.Email).Required().Email()
	v.Field("password", d.Password).Required().MinLength(validation.MinPasswordLength)
	return v.Validate()
}

// AssignDepartmentDTO moves an employee. A nil DepartmentID unassigns.
type AssignDepartmentDTO struct {
	DepartmentID *int64 `json:"departmentId"`
}

type UserResponse struct {
	account.Profile
	DepartmentName string `json:"departmentName,omitempty"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

type UserEnvelope struct {
	User UserResponse `json:"user"`
}

type StatusResponse struct {
	Message  string `json:"message"`
	IsActive bool   `json:"isActive"`
}
