package cmd

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/teamchat/internal/core/datamodel/dbtest"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

func TestCmd(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Cmd Suite")
}

var _ = ginkgo.Describe("seed", func() {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))

	ginkgo.It("creates the demo tenant once", func() {
		// Given an empty database
		db := dbtest.MustOpen()
		ctx := context.Background()

		// When seeding twice
		gomega.Expect(seed(ctx, db, bcrypt.MinCost, false, quiet)).To(gomega.Succeed())
		gomega.Expect(seed(ctx, db, bcrypt.MinCost, false, quiet)).To(gomega.Succeed())

		// Then every department has exactly one team group and accounts are not duplicated
		var groups []groupDatamodel.Group
		gomega.Expect(db.Order("id").Find(&groups).Error).To(gomega.Succeed())
		gomega.Expect(groups).To(gomega.HaveLen(5))
		gomega.Expect(groups[0].Name).To(gomega.Equal("Frontend Team"))

		var users int64
		gomega.Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(gomega.Succeed())
		gomega.Expect(users).To(gomega.BeEquivalentTo(8))

		var alice userDatamodel.User
		gomega.Expect(db.Where("email = ?", "alice@nexuscorp.com").First(&alice).Error).To(gomega.Succeed())
		gomega.Expect(bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte("emp123"))).To(gomega.Succeed())
		gomega.Expect(alice.DepartmentID).NotTo(gomega.BeNil())
	})

	ginkgo.It("rebuilds from scratch with clear", func() {
		// Given a seeded database with an extra account
		db := dbtest.MustOpen()
		ctx := context.Background()
		gomega.Expect(seed(ctx, db, bcrypt.MinCost, false, quiet)).To(gomega.Succeed())
		var existing groupDatamodel.Group
		gomega.Expect(db.First(&existing).Error).To(gomega.Succeed())
		dbtest.Employee(db, existing.CompanyID, 0, "Extra", "extra@nexuscorp.com")

		// When seeding with clear
		gomega.Expect(seed(ctx, db, bcrypt.MinCost, true, quiet)).To(gomega.Succeed())

		// Then only the seed accounts remain
		var users int64
		gomega.Expect(db.Model(&userDatamodel.User{}).Count(&users).Error).To(gomega.Succeed())
		gomega.Expect(users).To(gomega.BeEquivalentTo(8))
	})
})
