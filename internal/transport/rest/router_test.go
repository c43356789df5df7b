package rest_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/teamchat/internal/auth"
	"github.com/frahmantamala/teamchat/internal/company"
	"github.com/frahmantamala/teamchat/internal/department"
	"github.com/frahmantamala/teamchat/internal/group"
	"github.com/frahmantamala/teamchat/internal/message"
	"github.com/frahmantamala/teamchat/internal/metrics"
	"github.com/frahmantamala/teamchat/internal/transport/rest"
	"github.com/frahmantamala/teamchat/internal/transport/swagger"
	"github.com/frahmantamala/teamchat/internal/user"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Rest Suite")
}

var _ = Describe("Router", func() {
	var router *chi.Mux

	BeforeEach(func() {
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Auth:       auth.NewHandler(nil),
			Company:    company.NewHandler(nil),
			Department: department.NewHandler(nil),
			Group:      group.NewHandler(nil),
			User:       user.NewHandler(nil),
			Message:    message.NewHandler(nil, nil),
			Realtime:   http.NotFoundHandler(),
			Health:     rest.NewHealthHandler(failingPinger{}, nil),
			Metrics:    metrics.New(),
		}, []string{"http://localhost:3000"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	})

	It("documents exactly the mounted API routes", func() {
		doc, err := swagger.Document()
		Expect(err).NotTo(HaveOccurred())

		var documented []string
		for path, item := range doc.Paths.Map() {
			for method := range item.Operations() {
				documented = append(documented, method+" "+path)
			}
		}

		var mounted []string
		Expect(chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
			if !strings.HasPrefix(route, "/api/v1/") {
				return nil
			}
			path := strings.TrimSuffix(strings.TrimPrefix(route, "/api/v1"), "/")
			mounted = append(mounted, method+" "+path)
			return nil
		})).To(Succeed())

		sort.Strings(documented)
		Expect(mounted).To(ConsistOf(documented))
	})

	It("requires a token on protected routes", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/groups", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("serves the API document and metrics", func() {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yml", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("openapi: 3.0.3"))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("teamchat_http_requests_total"))
	})
})

var _ = Describe("Health", func() {
	It("reports an unreachable database", func() {
		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health: rest.NewHealthHandler(failingPinger{}, nil),
		}, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})

type failingPinger struct{}

func (failingPinger) PingContext(ctx context.Context) error {
	return errors.New("connection refused")
}
