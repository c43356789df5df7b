// Package access holds the tenant and department authorization rules shared by
// the REST handlers and the realtime session manager.
package access

import (
	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
)

// Scope is the tenant placement of a group.
type Scope struct {
	CompanyID    int64
	DepartmentID int64
}

// CanAccessGroup reports whether a may read or post in a group placed at s.
// Admins see every group of their company; employees only their department's.
func CanAccessGroup(a *account.Account, s Scope) bool {
	if a == nil || a.CompanyID == 0 || a.CompanyID != s.CompanyID {
		return false
	}
	switch aff := a.Affiliation.(type) {
	case account.Admin:
		return true
	case account.Employee:
		return aff.DepartmentID != 0 && aff.DepartmentID == s.DepartmentID
	}
	return false
}

// CanDeleteMessage allows the sender, or an admin of the message's company.
func CanDeleteMessage(a *account.Account, senderID, companyID int64) bool {
	if a == nil || a.CompanyID != companyID {
		return false
	}
	return a.ID == senderID || a.IsAdmin()
}

func IsAdmin(a *account.Account) bool {
	return a != nil && a.IsAdmin()
}

func CanViewCompany(a *account.Account, companyID int64) bool {
	return a != nil && a.CompanyID == companyID
}

func CanManageCompany(a *account.Account, companyID int64) bool {
	return IsAdmin(a) && a.CompanyID == companyID
}

func CanViewDepartment(a *account.Account, companyID, departmentID int64) bool {
	return CanAccessGroup(a, Scope{CompanyID: companyID, DepartmentID: departmentID})
}

// CanViewAccount allows self, admins of the same company, and colleagues in the same department.
func CanViewAccount(a *account.Account, target *account.Account) bool {
	if a == nil || target == nil || a.CompanyID != target.CompanyID {
		return false
	}
	if a.ID == target.ID || a.IsAdmin() {
		return true
	}
	return a.DepartmentID() != 0 && a.DepartmentID() == target.DepartmentID()
}

// RequireAdmin returns ErrAdminRequired unless a is an admin.
func RequireAdmin(a *account.Account) error {
	if !IsAdmin(a) {
		return errors.ErrAdminRequired
	}
	return nil
}

// RequireGroup returns ErrAccessDenied unless a may access s.
func RequireGroup(a *account.Account, s Scope) error {
	if !CanAccessGroup(a, s) {
		return errors.ErrAccessDenied
	}
	return nil
}
