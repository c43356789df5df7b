package account

import (
	"time"

	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

// Profile is the public view of an account. It never carries the password hash.
type Profile struct {
	ID           int64      `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Role         Role       `json:"role"`
	CompanyID    int64      `json:"companyId"`
	DepartmentID *int64     `json:"departmentId"`
	IsActive     bool       `json:"isActive"`
	LastSeenAt   *time.Time `json:"lastSeen,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (a *Account) ToProfile() Profile {
	p := Profile{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role(),
		CompanyID:  a.CompanyID,
		IsActive:   a.IsActive,
		LastSeenAt: a.LastSeenAt,
		CreatedAt:  a.CreatedAt,
	}
	if dept := a.DepartmentID(); dept != 0 {
		p.DepartmentID = &dept
	}
	return p
}

func FromDataModel(u *userDatamodel.User) *Account {
	if u == nil {
		return nil
	}
	return &Account{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CompanyID:    u.CompanyID,
		Affiliation:  NewAffiliation(Role(u.Role), u.DepartmentID),
		IsActive:     u.IsActive,
		LastSeenAt:   u.LastSeenAt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func ToDataModel(a *Account) *userDatamodel.User {
	u := &userDatamodel.User{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role()),
		CompanyID:    a.CompanyID,
		IsActive:     a.IsActive,
		LastSeenAt:   a.LastSeenAt,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
	if dept := a.DepartmentID(); dept != 0 {
		u.DepartmentID = &dept
	}
	return u
}
