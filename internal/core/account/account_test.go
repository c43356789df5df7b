package account_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/teamchat/internal/core/account"
)

func TestAccount(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Account Suite")
}

var _ = Describe("Account", func() {
	It("derives role and department from the affiliation", func() {
		admin := &account.Account{Affiliation: account.Admin{}}
		Expect(admin.Role()).To(Equal(account.RoleAdmin))
		Expect(admin.IsAdmin()).To(BeTrue())
		Expect(admin.DepartmentID()).To(BeZero())

		emp := &account.Account{Affiliation: account.Employee{DepartmentID: 7}}
		Expect(emp.Role()).To(Equal(account.RoleEmployee))
		Expect(emp.IsAdmin()).To(BeFalse())
		Expect(emp.DepartmentID()).To(Equal(int64(7)))
	})

	It("builds affiliations from stored rows", func() {
		dept := int64(3)
		Expect(account.NewAffiliation(account.RoleAdmin, &dept)).To(Equal(account.Admin{}))
		Expect(account.NewAffiliation(account.RoleEmployee, &dept)).To(Equal(account.Employee{DepartmentID: 3}))
		Expect(account.NewAffiliation(account.RoleEmployee, nil)).To(Equal(account.Employee{}))
	})

	It("treats a nil account as roleless", func() {
		var a *account.Account
		Expect(a.Role()).To(BeEmpty())
		Expect(a.DepartmentID()).To(BeZero())
	})
})
