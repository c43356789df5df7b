package dbtest

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	companyDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

// Password is the plain-text password of every fixture account.
const Password = "password"

var passwordHash string

func hash() string {
	if passwordHash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		passwordHash = string(h)
	}
	return passwordHash
}

func Company(db *gorm.DB, name string) *companyDatamodel.Company {
	c := &companyDatamodel.Company{Name: name, IsActive: true}
	must(db.Create(c).Error)
	return c
}

// Department creates a department and its "<name> Team" group.
func Department(db *gorm.DB, companyID int64, name string) (*departmentDatamodel.Department, *groupDatamodel.Group) {
	d := &departmentDatamodel.Department{Name: name, CompanyID: companyID, IsActive: true}
	must(db.Create(d).Error)
	g := &groupDatamodel.Group{
		Name:         name + " Team",
		Description:  fmt.Sprintf("Chat group for %s department", name),
		CompanyID:    companyID,
		DepartmentID: d.ID,
		IsActive:     true,
	}
	must(db.Create(g).Error)
	return d, g
}

func Admin(db *gorm.DB, companyID int64, email string) *userDatamodel.User {
	u := &userDatamodel.User{
		Name:         "Admin " + email,
		Email:        email,
		PasswordHash: hash(),
		Role:         "ADMIN",
		CompanyID:    companyID,
		IsActive:     true,
	}
	must(db.Create(u).Error)
	return u
}

// Employee creates an active employee. A departmentID of 0 leaves the employee unassigned.
func Employee(db *gorm.DB, companyID, departmentID int64, name, email string) *userDatamodel.User {
	u := &userDatamodel.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash(),
		Role:         "EMPLOYEE",
		CompanyID:    companyID,
		IsActive:     true,
	}
	if departmentID != 0 {
		u.DepartmentID = &departmentID
	}
	must(db.Create(u).Error)
	return u
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
