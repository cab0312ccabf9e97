package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/courses", "200"))
	RecordRequest("GET", "/api/courses", "200", 15*time.Millisecond)
	if got := testutil.ToFloat64(RequestsTotal.WithLabelValues("GET", "/api/courses", "200")); got != before+1 {
		t.Errorf("requests_total = %v, want %v", got, before+1)
	}

	RecordAuth("login", "failure")
	if got := testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues("login", "failure")); got < 1 {
		t.Errorf("auth_attempts_total = %v", got)
	}

	RecordEnrollment("enroll")
	if got := testutil.ToFloat64(EnrollmentsTotal.WithLabelValues("enroll")); got < 1 {
		t.Errorf("enrollments_total = %v", got)
	}
}

func TestHandler(t *testing.T) {
	RecordEvent("course.created", "ok")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "learnhub_events_published_total") {
		t.Error("exposition is missing learnhub_events_published_total")
	}
}
