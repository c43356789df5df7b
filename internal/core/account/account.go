package account

import "time"

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Affiliation is either Admin or Employee. An account holds exactly one.
type Affiliation interface {
	role() Role
}

// Admin sees every group of its company.
type Admin struct{}

func (Admin) role() Role { return RoleAdmin }

// Employee is bound to a single department. DepartmentID 0 means not yet assigned.
type Employee struct {
	DepartmentID int64
}

func (Employee) role() Role { return RoleEmployee }

type Account struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CompanyID    int64
	Affiliation  Affiliation
	IsActive     bool
	LastSeenAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a *Account) Role() Role {
	if a == nil || a.Affiliation == nil {
		return ""
	}
	return a.Affiliation.role()
}

func (a *Account) IsAdmin() bool {
	return a.Role() == RoleAdmin
}

// DepartmentID returns the employee's department, or 0 for admins and unassigned employees.
func (a *Account) DepartmentID() int64 {
	if a == nil {
		return 0
	}
	if e, ok := a.Affiliation.(Employee); ok {
		return e.DepartmentID
	}
	return 0
}

// NewAffiliation builds the variant for a stored role. Unknown roles degrade to an unassigned employee.
func NewAffiliation(role Role, departmentID *int64) Affiliation {
	if role == RoleAdmin {
		return Admin{}
	}
	var dept int64
	if departmentID != nil {
		dept = *departmentID
	}
	return Employee{DepartmentID: dept}
}
