package realtime_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/realtime"
)

var _ = Describe("Hub", func() {
	var (
		hub   *realtime.Hub
		alice *realtime.Session
		bob   *realtime.Session
	)

	BeforeEach(func() {
		hub = realtime.NewHub()
		alice = realtime.NewSession(&account.Account{ID: 1, Name: "Alice", CompanyID: 1}, 4)
		bob = realtime.NewSession(&account.Account{ID: 2, Name: "Bob", CompanyID: 1}, 4)
		hub.Add(alice)
		hub.Add(bob)
	})

	It("keeps a session in at most one room", func() {
		Expect(hub.Join(alice, 1)).To(BeTrue())
		Expect(hub.Join(alice, 2)).To(BeTrue())

		Expect(hub.Members(realtime.RoomName(1))).To(BeEmpty())
		Expect(hub.Members(realtime.RoomName(2))).To(ConsistOf(alice.ID))

		groupID, ok := hub.Current(alice)
		Expect(ok).To(BeTrue())
		Expect(groupID).To(BeEquivalentTo(2))
	})

	It("leaves a room only while still in it", func() {
		hub.Join(alice, 1)
		hub.Join(alice, 2)
		Expect(hub.LeaveIf(alice, 1)).To(BeFalse())
		Expect(hub.Members(realtime.RoomName(2))).To(ConsistOf(alice.ID))

		Expect(hub.LeaveIf(alice, 2)).To(BeTrue())
		Expect(hub.Members(realtime.RoomName(2))).To(BeEmpty())
		_, ok := hub.Current(alice)
		Expect(ok).To(BeFalse())
	})

	It("does not join removed sessions", func() {
		hub.Remove(alice)
		Expect(hub.Join(alice, 1)).To(BeFalse())
		Expect(hub.Members(realtime.RoomName(1))).To(BeEmpty())
	})

	It("broadcasts to members except the excluded session", func() {
		hub.Join(alice, 1)
		hub.Join(bob, 1)

		Expect(hub.Broadcast(realtime.RoomName(1), []byte("x"), alice.ID)).To(Equal(1))
		Expect(bob.Outbound()).To(Receive(Equal([]byte("x"))))
		Expect(alice.Outbound()).NotTo(Receive())
	})

	It("closes slow consumers instead of blocking", func() {
		slow := realtime.NewSession(&account.Account{ID: 3, CompanyID: 1}, 1)
		hub.Add(slow)
		hub.Join(slow, 1)

		Expect(hub.Broadcast(realtime.RoomName(1), []byte("a"), "")).To(Equal(1))
		Expect(hub.Broadcast(realtime.RoomName(1), []byte("b"), "")).To(Equal(0))
		Expect(slow.Closed()).To(BeTrue())
	})

	It("finds every session of an account", func() {
		second := realtime.NewSession(&account.Account{ID: 1, Name: "Alice", CompanyID: 1}, 1)
		hub.Add(second)
		Expect(hub.SessionsOf(1)).To(HaveLen(2))

		hub.Remove(second)
		Expect(hub.SessionsOf(1)).To(HaveLen(1))
		Expect(hub.Len()).To(Equal(2))
	})
})
