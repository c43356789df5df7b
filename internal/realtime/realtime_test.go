package realtime_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"gorm.io/gorm"

	"github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/auth"
	authPostgres "github.com/frahmantamala/teamchat/internal/auth/postgres"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/core/datamodel/dbtest"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
	"github.com/frahmantamala/teamchat/internal/core/events"
	"github.com/frahmantamala/teamchat/internal/group"
	groupPostgres "github.com/frahmantamala/teamchat/internal/group/postgres"
	"github.com/frahmantamala/teamchat/internal/message"
	messagePostgres "github.com/frahmantamala/teamchat/internal/message/postgres"
	"github.com/frahmantamala/teamchat/internal/realtime"
	"github.com/frahmantamala/teamchat/internal/user"
	userPostgres "github.com/frahmantamala/teamchat/internal/user/postgres"
)

func TestRealtime(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Realtime Suite")
}

const secret = "realtime-test-secret-with-32-chars!!"

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (f frame) field(name string) interface{} {
	var m map[string]interface{}
	Expect(json.Unmarshal(f.Data, &m)).To(Succeed())
	return m[name]
}

func (f frame) message() message.MessageResponse {
	var p struct {
		Message message.MessageResponse `json:"message"`
	}
	Expect(json.Unmarshal(f.Data, &p)).To(Succeed())
	return p.Message
}

func next(conn *websocket.Conn) frame {
	GinkgoHelper()
	Expect(conn.SetReadDeadline(time.Now().Add(3 * time.Second))).To(Succeed())
	var f frame
	Expect(conn.ReadJSON(&f)).To(Succeed())
	return f
}

func emit(conn *websocket.Conn, eventType string, data interface{}) {
	GinkgoHelper()
	body := map[string]interface{}{"type": eventType}
	if data != nil {
		body["data"] = data
	}
	Expect(conn.WriteJSON(body)).To(Succeed())
}

var _ = Describe("Realtime", func() {
	var (
		ctx           context.Context
		db            *gorm.DB
		logs          *gbytes.Buffer
		srv           *httptest.Server
		hub           *realtime.Hub
		tokens        *auth.JWTTokenGenerator
		messages      *message.Service
		users         *user.Service
		admin         *account.Account
		alice         *account.Account
		bob           *account.Account
		carol         *account.Account
		frontendID    int64
		backendID     int64
		backendDeptID int64
		otherGroupID  int64
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = dbtest.MustOpen()
		logs = gbytes.NewBuffer()
		logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn}))
		bus := events.NewEventBus(logger)

		tokens = auth.NewJWTTokenGenerator(secret, time.Hour)
		authSvc := auth.NewService(authPostgres.NewRepository(db), tokens, logger)
		groups := group.NewService(groupPostgres.NewGroupRepository(db), logger)
		messages = message.NewService(messagePostgres.NewMessageRepository(db), groups, bus, logger)
		users = user.NewService(userPostgres.NewUserRepository(db), bus, 10, logger)

		hub = realtime.NewHub()
		mgr := realtime.NewManager(hub, authSvc, groups, messages, nil, logger)
		mgr.Subscribe(bus)
		srv = httptest.NewServer(realtime.NewServer(mgr, authSvc, internal.RealtimeConfig{}, []string{"http://localhost:3000"}, nil))
		DeferCleanup(srv.Close)

		c := dbtest.Company(db, "Nexus Corp")
		frontend, fg := dbtest.Department(db, c.ID, "Frontend")
		backend, bg := dbtest.Department(db, c.ID, "Backend")
		frontendID, backendID = fg.ID, bg.ID
		backendDeptID = backend.ID

		admin = account.FromDataModel(dbtest.Admin(db, c.ID, "admin@nexus.test"))
		alice = account.FromDataModel(dbtest.Employee(db, c.ID, frontend.ID, "Alice", "alice@nexus.test"))
		bob = account.FromDataModel(dbtest.Employee(db, c.ID, frontend.ID, "Bob", "bob@nexus.test"))
		carol = account.FromDataModel(dbtest.Employee(db, c.ID, backend.ID, "Carol", "carol@nexus.test"))

		other := dbtest.Company(db, "Other")
		_, og := dbtest.Department(db, other.ID, "Frontend")
		otherGroupID = og.ID
	})

	wsURL := func() string {
		return "ws" + strings.TrimPrefix(srv.URL, "http")
	}

	// connect dials with a query token and consumes the greeting.
	connect := func(a *account.Account) *websocket.Conn {
		GinkgoHelper()
		token, _, err := tokens.GenerateAccessToken(a.ID, a.Role())
		Expect(err).NotTo(HaveOccurred())

		conn, _, err := websocket.DefaultDialer.Dial(wsURL()+"?token="+token, nil)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(conn.Close)

		hello := next(conn)
		Expect(hello.Type).To(Equal(realtime.EventConnected))
		Expect(hello.field("userId")).To(BeEquivalentTo(a.ID))
		return conn
	}

	join := func(conn *websocket.Conn, groupID int64) frame {
		GinkgoHelper()
		emit(conn, realtime.EventJoinRoom, map[string]int64{"groupId": groupID})
		return next(conn)
	}

	Describe("handshake", func() {
		It("rejects connections without a token before upgrading", func() {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(), nil)
			Expect(err).To(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("rejects forged tokens", func() {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL()+"?token=not-a-token", nil)
			Expect(err).To(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("accepts a bearer header", func() {
			token, _, err := tokens.GenerateAccessToken(alice.ID, alice.Role())
			Expect(err).NotTo(HaveOccurred())

			header := http.Header{"Authorization": {"Bearer " + token}}
			conn, _, err := websocket.DefaultDialer.Dial(wsURL(), header)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			Expect(next(conn).Type).To(Equal(realtime.EventConnected))
		})

		It("rejects foreign origins", func() {
			token, _, err := tokens.GenerateAccessToken(alice.ID, alice.Role())
			Expect(err).NotTo(HaveOccurred())

			header := http.Header{"Origin": {"http://evil.example"}}
			_, resp, err := websocket.DefaultDialer.Dial(wsURL()+"?token="+token, header)
			Expect(err).To(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
		})
	})

	Describe("join_room", func() {
		It("joins the department group", func() {
			conn := connect(alice)
			joined := join(conn, frontendID)
			Expect(joined.Type).To(Equal(realtime.EventJoinedRoom))
			Expect(joined.field("groupName")).To(Equal("Frontend Team"))
			Expect(hub.Members(realtime.RoomName(frontendID))).To(HaveLen(1))
		})

		It("denies another department's group without touching membership", func() {
			conn := connect(carol)
			reply := join(conn, frontendID)
			Expect(reply.Type).To(Equal(realtime.EventError))
			Expect(reply.field("message")).To(Equal("Access denied"))
			Expect(hub.Members(realtime.RoomName(frontendID))).To(BeEmpty())
			Expect(hub.Members(realtime.RoomName(backendID))).To(BeEmpty())
		})

		It("reports unknown groups as access denied", func() {
			conn := connect(admin)
			reply := join(conn, 9999)
			Expect(reply.Type).To(Equal(realtime.EventError))
			Expect(reply.field("message")).To(Equal("Access denied"))
		})

		It("logs joins aimed at another company's group", func() {
			conn := connect(alice)
			Expect(join(conn, frontendID).Type).To(Equal(realtime.EventJoinedRoom))

			reply := join(conn, otherGroupID)
			Expect(reply.Type).To(Equal(realtime.EventError))
			Expect(reply.field("message")).To(Equal("Access denied"))
			Expect(logs).To(gbytes.Say(fmt.Sprintf(
				`msg="realtime access denied".*actor_id=%d.*event_type=join_room group_id=%d reason=GROUP_NOT_FOUND`,
				alice.ID, otherGroupID)))
			Expect(hub.Members(realtime.RoomName(frontendID))).To(HaveLen(1))
		})

		It("keeps the previous room when a later join is denied", func() {
			conn := connect(carol)
			Expect(join(conn, backendID).Type).To(Equal(realtime.EventJoinedRoom))
			Expect(join(conn, frontendID).Type).To(Equal(realtime.EventError))
			Expect(hub.Members(realtime.RoomName(backendID))).To(HaveLen(1))
		})

		It("leaves the old room when an admin switches groups", func() {
			b := connect(bob)
			c := connect(carol)
			join(b, frontendID)
			join(c, backendID)

			conn := connect(admin)
			Expect(join(conn, frontendID).Type).To(Equal(realtime.EventJoinedRoom))
			Expect(join(conn, backendID).Type).To(Equal(realtime.EventJoinedRoom))
			Expect(hub.Members(realtime.RoomName(frontendID))).To(HaveLen(1))
			Expect(hub.Members(realtime.RoomName(backendID))).To(HaveLen(2))

			_, err := messages.Send(ctx, bob, frontendID, "frontend only")
			Expect(err).NotTo(HaveOccurred())
			Expect(next(b).message().Content).To(Equal("frontend only"))

			_, err = messages.Send(ctx, carol, backendID, "backend only")
			Expect(err).NotTo(HaveOccurred())
			Expect(next(c).message().Content).To(Equal("backend only"))

			// the first frame after the switch comes from the new room
			got := next(conn)
			Expect(got.Type).To(Equal(realtime.EventNewMessage))
			Expect(got.message().Content).To(Equal("backend only"))
		})
	})

	Describe("send_message", func() {
		It("requires a joined room", func() {
			conn := connect(alice)
			emit(conn, realtime.EventSendMessage, map[string]string{"content": "hi"})
			reply := next(conn)
			Expect(reply.Type).To(Equal(realtime.EventError))
			Expect(reply.field("message")).To(Equal("You must join a room first"))
		})

		It("delivers exactly one copy to every member including the sender", func() {
			a := connect(alice)
			b := connect(bob)
			join(a, frontendID)
			join(b, frontendID)

			emit(a, realtime.EventSendMessage, map[string]string{"content": "hello"})
			emit(a, realtime.EventSendMessage, map[string]string{"content": "second"})

			for _, conn := range []*websocket.Conn{a, b} {
				first := next(conn)
				Expect(first.Type).To(Equal(realtime.EventNewMessage))
				Expect(first.message().Content).To(Equal("hello"))
				Expect(first.message().Sender.Name).To(Equal("Alice"))

				second := next(conn)
				Expect(second.message().Content).To(Equal("second"))
			}
		})

		It("rejects oversize content with the same error as the REST path", func() {
			conn := connect(alice)
			join(conn, frontendID)

			long := strings.Repeat("x", 2001)
			emit(conn, realtime.EventSendMessage, map[string]string{"content": long})
			reply := next(conn)
			Expect(reply.Type).To(Equal(realtime.EventError))

			_, restErr := messages.Send(ctx, alice, frontendID, long)
			Expect(restErr).To(MatchError(internal.ErrContentTooLong))
			Expect(reply.field("message")).To(Equal(internal.ErrContentTooLong.Message))

			page, err := messages.History(ctx, admin, frontendID, 1, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Pagination.Total).To(BeZero())
		})

		It("re-checks access on every send instead of trusting the join", func() {
			conn := connect(alice)
			Expect(join(conn, frontendID).Type).To(Equal(realtime.EventJoinedRoom))

			// move alice behind the realtime layer's back so no event evicts her
			Expect(db.Model(&userDatamodel.User{}).
				Where("id = ?", alice.ID).
				Update("department_id", backendDeptID).Error).To(Succeed())

			emit(conn, realtime.EventSendMessage, map[string]string{"content": "stale room"})
			reply := next(conn)
			Expect(reply.Type).To(Equal(realtime.EventError))
			Expect(reply.field("message")).To(Equal("Access denied"))
			Expect(logs).To(gbytes.Say(fmt.Sprintf(
				`msg="realtime access denied".*actor_id=%d.*event_type=send_message group_id=%d reason=ACCESS_DENIED`,
				alice.ID, frontendID)))

			page, err := messages.History(ctx, admin, frontendID, 1, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Pagination.Total).To(BeZero())
		})

		It("broadcasts messages sent over REST to the room", func() {
			conn := connect(bob)
			join(conn, frontendID)

			_, err := messages.Send(ctx, alice, frontendID, "from rest")
			Expect(err).NotTo(HaveOccurred())

			got := next(conn)
			Expect(got.Type).To(Equal(realtime.EventNewMessage))
			Expect(got.message().Content).To(Equal("from rest"))
		})

		It("broadcasts deletions to the room", func() {
			conn := connect(bob)
			join(conn, frontendID)

			msg, err := messages.Send(ctx, alice, frontendID, "oops")
			Expect(err).NotTo(HaveOccurred())
			Expect(next(conn).Type).To(Equal(realtime.EventNewMessage))

			Expect(messages.Delete(ctx, alice, msg.ID)).To(Succeed())
			got := next(conn)
			Expect(got.Type).To(Equal(realtime.EventMessageDeleted))
			Expect(got.field("messageId")).To(BeEquivalentTo(msg.ID))
		})
	})

	Describe("typing", func() {
		It("tells everyone else in the room", func() {
			a := connect(alice)
			b := connect(bob)
			join(a, frontendID)
			join(b, frontendID)

			emit(a, realtime.EventTypingStart, nil)
			got := next(b)
			Expect(got.Type).To(Equal(realtime.EventUserTyping))
			Expect(got.field("userId")).To(BeEquivalentTo(alice.ID))
			Expect(got.field("name")).To(Equal("Alice"))

			emit(a, realtime.EventTypingStop, nil)
			Expect(next(b).Type).To(Equal(realtime.EventUserStoppedTyping))

			// the typist gets no echo; the next frame it sees is its own message
			emit(a, realtime.EventSendMessage, map[string]string{"content": "done"})
			Expect(next(a).Type).To(Equal(realtime.EventNewMessage))
		})
	})

	Describe("protocol errors", func() {
		It("answers unknown events and keeps the connection open", func() {
			conn := connect(alice)
			emit(conn, "dance", nil)
			reply := next(conn)
			Expect(reply.Type).To(Equal(realtime.EventError))
			Expect(reply.field("message")).To(Equal("Unknown event type"))

			Expect(conn.WriteMessage(websocket.TextMessage, []byte("{not json"))).To(Succeed())
			Expect(next(conn).Type).To(Equal(realtime.EventError))

			Expect(join(conn, frontendID).Type).To(Equal(realtime.EventJoinedRoom))
		})
	})

	Describe("reassignment", func() {
		It("takes the employee out of the old department room", func() {
			a := connect(alice)
			b := connect(bob)
			join(a, frontendID)
			join(b, frontendID)

			_, err := users.AssignDepartment(ctx, admin, alice.ID, user.AssignDepartmentDTO{DepartmentID: &backendDeptID})
			Expect(err).NotTo(HaveOccurred())

			notice := next(a)
			Expect(notice.Type).To(Equal(realtime.EventError))
			Expect(notice.field("message")).To(Equal("Access denied"))
			Expect(hub.Members(realtime.RoomName(frontendID))).To(HaveLen(1))

			_, err = messages.Send(ctx, bob, frontendID, "after the move")
			Expect(err).NotTo(HaveOccurred())
			Expect(next(b).message().Content).To(Equal("after the move"))

			emit(a, realtime.EventSendMessage, map[string]string{"content": "still here?"})
			Expect(next(a).field("message")).To(Equal("You must join a room first"))

			Expect(join(a, backendID).Type).To(Equal(realtime.EventJoinedRoom))
		})

		It("keeps an employee whose department did not change", func() {
			conn := connect(carol)
			join(conn, backendID)

			_, err := users.AssignDepartment(ctx, admin, carol.ID, user.AssignDepartmentDTO{DepartmentID: &backendDeptID})
			Expect(err).NotTo(HaveOccurred())

			_, err = messages.Send(ctx, admin, backendID, "still in")
			Expect(err).NotTo(HaveOccurred())
			got := next(conn)
			Expect(got.Type).To(Equal(realtime.EventNewMessage))
			Expect(got.message().Content).To(Equal("still in"))
		})
	})

	Describe("deactivation", func() {
		It("closes live sessions of a deactivated account", func() {
			conn := connect(alice)
			join(conn, frontendID)

			_, err := users.ToggleStatus(ctx, admin, alice.ID)
			Expect(err).NotTo(HaveOccurred())

			reply := next(conn)
			Expect(reply.Type).To(Equal(realtime.EventError))
			Expect(reply.field("message")).To(Equal("Account is inactive"))

			Expect(conn.SetReadDeadline(time.Now().Add(3 * time.Second))).To(Succeed())
			_, _, err = conn.ReadMessage()
			Expect(err).To(HaveOccurred())
			Eventually(hub.Len).Should(BeZero())
		})
	})
})
