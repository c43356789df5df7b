package access_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/access"
	"github.com/frahmantamala/teamchat/internal/core/account"
)

func TestAccess(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Access Suite")
}

func admin(id, company int64) *account.Account {
	return &account.Account{ID: id, CompanyID: company, Affiliation: account.Admin{}, IsActive: true}
}

func employee(id, company, dept int64) *account.Account {
	return &account.Account{ID: id, CompanyID: company, Affiliation: account.Employee{DepartmentID: dept}, IsActive: true}
}

var _ = Describe("Policy", func() {
	DescribeTable("CanAccessGroup",
		func(a *account.Account, scope access.Scope, expected bool) {
			Expect(access.CanAccessGroup(a, scope)).To(Equal(expected))
		},
		Entry("admin, own company, any department", admin(1, 10), access.Scope{CompanyID: 10, DepartmentID: 3}, true),
		Entry("admin, other company", admin(1, 10), access.Scope{CompanyID: 11, DepartmentID: 3}, false),
		Entry("employee, own department", employee(2, 10, 3), access.Scope{CompanyID: 10, DepartmentID: 3}, true),
		Entry("employee, other department", employee(2, 10, 3), access.Scope{CompanyID: 10, DepartmentID: 4}, false),
		Entry("employee, same department id in another company", employee(2, 10, 3), access.Scope{CompanyID: 11, DepartmentID: 3}, false),
		Entry("employee without department", employee(2, 10, 0), access.Scope{CompanyID: 10, DepartmentID: 0}, false),
		Entry("nil account", nil, access.Scope{CompanyID: 10, DepartmentID: 3}, false),
		Entry("account without affiliation", &account.Account{ID: 5, CompanyID: 10}, access.Scope{CompanyID: 10, DepartmentID: 3}, false),
	)

	DescribeTable("CanDeleteMessage",
		func(a *account.Account, senderID, companyID int64, expected bool) {
			Expect(access.CanDeleteMessage(a, senderID, companyID)).To(Equal(expected))
		},
		Entry("sender", employee(2, 10, 3), int64(2), int64(10), true),
		Entry("colleague", employee(3, 10, 3), int64(2), int64(10), false),
		Entry("admin same tenant", admin(1, 10), int64(2), int64(10), true),
		Entry("admin other tenant", admin(1, 11), int64(2), int64(10), false),
		Entry("sender id reused in other tenant", employee(2, 11, 3), int64(2), int64(10), false),
	)

	DescribeTable("CanViewAccount",
		func(a, target *account.Account, expected bool) {
			Expect(access.CanViewAccount(a, target)).To(Equal(expected))
		},
		Entry("self", employee(2, 10, 3), employee(2, 10, 3), true),
		Entry("department colleague", employee(2, 10, 3), employee(3, 10, 3), true),
		Entry("other department", employee(2, 10, 3), employee(4, 10, 4), false),
		Entry("admin", admin(1, 10), employee(4, 10, 4), true),
		Entry("other company admin", admin(1, 11), employee(4, 10, 4), false),
	)

	It("maps denials to taxonomy errors", func() {
		Expect(access.RequireAdmin(employee(2, 10, 3))).To(MatchError(errors.ErrAdminRequired))
		Expect(access.RequireAdmin(admin(1, 10))).To(Succeed())
		Expect(access.RequireGroup(employee(2, 10, 3), access.Scope{CompanyID: 10, DepartmentID: 4})).To(MatchError(errors.ErrAccessDenied))
	})

	It("limits company management to its admins", func() {
		Expect(access.CanManageCompany(admin(1, 10), 10)).To(BeTrue())
		Expect(access.CanManageCompany(employee(2, 10, 3), 10)).To(BeFalse())
		Expect(access.CanViewCompany(employee(2, 10, 3), 10)).To(BeTrue())
		Expect(access.CanViewCompany(employee(2, 10, 3), 11)).To(BeFalse())
	})
})
