package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/teamchat/internal/metrics"
)

func TestMetrics(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Metrics Suite")
}

var _ = Describe("Metrics", func() {
	It("labels requests by route pattern", func() {
		m := metrics.New()
		r := chi.NewRouter()
		r.Use(m.Middleware)
		r.Get("/groups/{groupId}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		r.Get("/metrics", m.Handler().ServeHTTP)

		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/groups/7", nil))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		body, _ := io.ReadAll(rec.Body)
		Expect(string(body)).To(ContainSubstring(`teamchat_http_requests_total{method="GET",route="/groups/{groupId}",status="418"} 1`))
	})

	It("tracks realtime connections", func() {
		m := metrics.New()
		m.ConnOpened()
		m.ConnOpened()
		m.ConnClosed()
		m.Event("join_room", "denied")

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(rec.Body.String()).To(ContainSubstring("teamchat_ws_connections 1"))
		Expect(rec.Body.String()).To(ContainSubstring(`teamchat_ws_events_total{outcome="denied",type="join_room"} 1`))
	})

	It("ignores calls on a nil receiver", func() {
		var m *metrics.Metrics
		Expect(func() {
			m.ConnOpened()
			m.MessageSent("rest")
			m.AccessDenied("join_room")
		}).NotTo(Panic())
	})
})
