package message_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gbytes"
	"gorm.io/gorm"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/core/account"
	"github.com/frahmantamala/teamchat/internal/core/datamodel/dbtest"
	"github.com/frahmantamala/teamchat/internal/core/events"
	"github.com/frahmantamala/teamchat/internal/group"
	groupPostgres "github.com/frahmantamala/teamchat/internal/group/postgres"
	"github.com/frahmantamala/teamchat/internal/message"
	"github.com/frahmantamala/teamchat/internal/message/postgres"
	"github.com/frahmantamala/teamchat/internal/metrics"
)

func TestMessage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Message Suite")
}

type recorder struct {
	mu      sync.Mutex
	created []int64
	deleted []int64
}

func (r *recorder) subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeMessageCreated, func(_ context.Context, e events.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.created = append(r.created, e.(*events.MessageCreatedEvent).MessageID)
		return nil
	})
	bus.Subscribe(events.EventTypeMessageDeleted, func(_ context.Context, e events.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.deleted = append(r.deleted, e.(*events.MessageDeletedEvent).MessageID)
		return nil
	})
}

var _ = Describe("Message", func() {
	var (
		db           *gorm.DB
		logs         *gbytes.Buffer
		svc          *message.Service
		rec          *recorder
		ctx          context.Context
		admin        *account.Account
		alice        *account.Account
		bob          *account.Account
		carol        *account.Account
		rivalAdmin   *account.Account
		frontendID   int64
		backendGroup int64
	)

	BeforeEach(func() {
		db = dbtest.MustOpen()
		ctx = context.Background()
		logs = gbytes.NewBuffer()
		logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelWarn}))

		bus := events.NewEventBus(logger)
		rec = &recorder{}
		rec.subscribe(bus)

		groups := group.NewService(groupPostgres.NewGroupRepository(db), logger)
		svc = message.NewService(postgres.NewMessageRepository(db), groups, bus, logger)

		c := dbtest.Company(db, "Nexus Corp")
		frontend, fg := dbtest.Department(db, c.ID, "Frontend")
		backend, bg := dbtest.Department(db, c.ID, "Backend")
		frontendID, backendGroup = fg.ID, bg.ID

		admin = account.FromDataModel(dbtest.Admin(db, c.ID, "admin@nexus.test"))
		alice = account.FromDataModel(dbtest.Employee(db, c.ID, frontend.ID, "Alice", "alice@nexus.test"))
		bob = account.FromDataModel(dbtest.Employee(db, c.ID, frontend.ID, "Bob", "bob@nexus.test"))
		carol = account.FromDataModel(dbtest.Employee(db, c.ID, backend.ID, "Carol", "carol@nexus.test"))

		rival := dbtest.Company(db, "Rival")
		rivalAdmin = account.FromDataModel(dbtest.Admin(db, rival.ID, "admin@rival.test"))
	})

	Describe("Send", func() {
		It("persists trimmed content with sender details and fans it out", func() {
			msg, err := svc.Send(ctx, alice, frontendID, "  hello team  ")
			Expect(err).NotTo(HaveOccurred())
			Expect(msg.Content).To(Equal("hello team"))
			Expect(msg.SenderID).To(Equal(alice.ID))
			Expect(msg.Sender.Name).To(Equal("Alice"))
			Expect(msg.CompanyID).To(Equal(alice.CompanyID))
			Expect(msg.DepartmentID).To(Equal(alice.DepartmentID()))
			Expect(rec.created).To(Equal([]int64{msg.ID}))
		})

		It("lets admins post in any group of their company", func() {
			_, err := svc.Send(ctx, admin, backendGroup, "announcement")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects groups of other departments", func() {
			_, err := svc.Send(ctx, carol, frontendID, "hi")
			Expect(err).To(MatchError(errors.ErrAccessDenied))
			Expect(rec.created).To(BeEmpty())
		})

		It("hides groups of other companies and logs the attempt", func() {
			_, err := svc.Send(ctx, rivalAdmin, frontendID, "hi")
			Expect(err).To(MatchError(errors.ErrGroupNotFound))
			Expect(logs).To(gbytes.Say(fmt.Sprintf(
				`msg="message access to unknown group" actor_id=%d company_id=%d group_id=%d`,
				rivalAdmin.ID, rivalAdmin.CompanyID, frontendID)))
		})

		It("rejects blank content", func() {
			_, err := svc.Send(ctx, alice, frontendID, "   \n\t")
			Expect(err).To(MatchError(errors.ErrEmptyContent))
		})

		It("accepts exactly 2000 characters and rejects 2001", func() {
			_, err := svc.Send(ctx, alice, frontendID, strings.Repeat("a", 2000))
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Send(ctx, alice, frontendID, strings.Repeat("a", 2001))
			Expect(err).To(MatchError(errors.ErrContentTooLong))
		})

		It("fans out concurrent sends in creation order", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func(i int) {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := svc.Send(ctx, alice, frontendID, "msg "+strconv.Itoa(i))
					Expect(err).NotTo(HaveOccurred())
				}(i)
			}
			wg.Wait()

			Expect(rec.created).To(HaveLen(20))
			for i := 1; i < len(rec.created); i++ {
				Expect(rec.created[i]).To(BeNumerically(">", rec.created[i-1]))
			}
		})
	})

	Describe("History", func() {
		BeforeEach(func() {
			for i := 1; i <= 5; i++ {
				_, err := svc.Send(ctx, alice, frontendID, "m"+strconv.Itoa(i))
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns the newest page in chronological order", func() {
			page, err := svc.History(ctx, bob, frontendID, 1, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Messages).To(HaveLen(2))
			Expect(page.Messages[0].Content).To(Equal("m4"))
			Expect(page.Messages[1].Content).To(Equal("m5"))
			Expect(page.Pagination).To(Equal(message.Pagination{Page: 1, Limit: 2, Total: 5, TotalPages: 3}))
		})

		It("walks back to the oldest page", func() {
			page, err := svc.History(ctx, bob, frontendID, 3, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Messages).To(HaveLen(1))
			Expect(page.Messages[0].Content).To(Equal("m1"))
			Expect(page.Messages[0].Sender.Email).To(Equal("alice@nexus.test"))
		})

		It("caps the page size", func() {
			page, err := svc.History(ctx, bob, frontendID, 0, 500)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Pagination.Page).To(Equal(1))
			Expect(page.Pagination.Limit).To(Equal(message.MaxPageSize))
		})

		It("denies other departments", func() {
			_, err := svc.History(ctx, carol, frontendID, 1, 50)
			Expect(err).To(MatchError(errors.ErrAccessDenied))
		})

		It("excludes deleted messages", func() {
			page, err := svc.History(ctx, alice, frontendID, 1, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(svc.Delete(ctx, alice, page.Messages[0].ID)).To(Succeed())

			page, err = svc.History(ctx, alice, frontendID, 1, 50)
			Expect(err).NotTo(HaveOccurred())
			Expect(page.Pagination.Total).To(BeEquivalentTo(4))
			Expect(page.Messages[0].Content).To(Equal("m2"))
		})
	})

	Describe("Delete", func() {
		var msgID int64

		BeforeEach(func() {
			msg, err := svc.Send(ctx, alice, frontendID, "oops")
			Expect(err).NotTo(HaveOccurred())
			msgID = msg.ID
		})

		It("lets the sender delete and fans out the deletion", func() {
			Expect(svc.Delete(ctx, alice, msgID)).To(Succeed())
			Expect(rec.deleted).To(Equal([]int64{msgID}))
		})

		It("lets an admin of the company delete", func() {
			Expect(svc.Delete(ctx, admin, msgID)).To(Succeed())
		})

		It("refuses other employees", func() {
			Expect(svc.Delete(ctx, bob, msgID)).To(MatchError(errors.ErrMessageNotFound))
		})

		It("refuses admins of other companies", func() {
			Expect(svc.Delete(ctx, rivalAdmin, msgID)).To(MatchError(errors.ErrMessageNotFound))
		})

		It("does not delete twice", func() {
			Expect(svc.Delete(ctx, alice, msgID)).To(Succeed())
			Expect(svc.Delete(ctx, alice, msgID)).To(MatchError(errors.ErrMessageNotFound))
			Expect(rec.deleted).To(HaveLen(1))
		})
	})

	Describe("Handler", func() {
		var (
			router chi.Router
			actor  *account.Account
			m      *metrics.Metrics
		)

		scrape := func() string {
			w := httptest.NewRecorder()
			m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
			return w.Body.String()
		}

		BeforeEach(func() {
			m = metrics.New()
			h := message.NewHandler(svc, m)
			router = chi.NewRouter()
			router.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					next.ServeHTTP(w, r.WithContext(account.WithContext(r.Context(), actor)))
				})
			})
			router.Get("/messages/group/{groupId}", h.History)
			router.Post("/messages", h.Send)
			router.Delete("/messages/{messageId}", h.Delete)
		})

		It("creates a message over REST and reports it to subscribers", func() {
			actor = alice
			body := `{"groupId":` + strconv.FormatInt(frontendID, 10) + `,"content":"via rest"}`
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body)))
			Expect(w.Code).To(Equal(http.StatusCreated))

			var env message.MessageEnvelope
			Expect(json.Unmarshal(w.Body.Bytes(), &env)).To(Succeed())
			Expect(env.Message.Content).To(Equal("via rest"))
			Expect(rec.created).To(Equal([]int64{env.Message.ID}))
		})

		It("returns 400 for empty content", func() {
			actor = alice
			body := `{"groupId":` + strconv.FormatInt(frontendID, 10) + `,"content":"  "}`
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body)))
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("Message cannot be empty"))
		})

		It("returns 403 for a foreign group history", func() {
			actor = carol
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages/group/"+strconv.FormatInt(frontendID, 10), nil))
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(scrape()).To(ContainSubstring(`teamchat_access_denied_total{action="rest_history"} 1`))
		})

		It("counts REST sends and denied REST sends", func() {
			actor = alice
			body := `{"groupId":` + strconv.FormatInt(frontendID, 10) + `,"content":"counted"}`
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body)))
			Expect(w.Code).To(Equal(http.StatusCreated))

			actor = rivalAdmin
			w = httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(body)))
			Expect(w.Code).To(Equal(http.StatusNotFound))

			out := scrape()
			Expect(out).To(ContainSubstring(`teamchat_messages_sent_total{transport="rest"} 1`))
			Expect(out).To(ContainSubstring(`teamchat_access_denied_total{action="rest_send"} 1`))
		})

		It("returns 404 when deleting someone else's message", func() {
			msg, err := svc.Send(ctx, alice, frontendID, "mine")
			Expect(err).NotTo(HaveOccurred())

			actor = bob
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/messages/"+strconv.FormatInt(msg.ID, 10), nil))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
