package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/letterloop/letterloop/internal/interview"
)

var _ interview.Recorder = (*PrometheusRecorder)(nil)

func scrape(t *testing.T, r *PrometheusRecorder) string {
	t.Helper()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(body)
}

func TestRecorderCounts(t *testing.T) {
	r := NewPrometheusRecorder()

	r.AnswerSubmitted()
	r.AnswerSubmitted()
	r.FollowUpAsked()
	r.QuestionAdvanced(interview.ReasonPolicy)
	r.QuestionAdvanced(interview.ReasonSkip)
	r.QuestionAdvanced(interview.ReasonSkip)
	r.DeliveryObserved(true)
	r.DeliveryObserved(false)
	r.GenerationObserved(interview.ModeArticle, true, 1500*time.Millisecond)

	out := scrape(t, r)
	for _, want := range []string{
		"letterloop_answers_total 2",
		"letterloop_follow_ups_total 1",
		`letterloop_questions_advanced_total{reason="policy"} 1`,
		`letterloop_questions_advanced_total{reason="skip"} 2`,
		`letterloop_deliveries_total{status="error"} 1`,
		`letterloop_deliveries_total{status="success"} 1`,
		`letterloop_generation_duration_seconds_count{mode="article",status="success"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestRecordersAreIndependent(t *testing.T) {
	a := NewPrometheusRecorder()
	b := NewPrometheusRecorder()
	a.AnswerSubmitted()

	if out := scrape(t, b); !strings.Contains(out, "letterloop_answers_total 0") {
		t.Error("second recorder should not see the first recorder's answers")
	}
}
