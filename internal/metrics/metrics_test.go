package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"countdown/internal/events"
	"countdown/internal/reminders"
)

func TestGauges(t *testing.T) {
	m := New()
	m.SetEventCounts(map[events.State]int{events.StateUpcoming: 3, events.StateCompleted: 1})
	m.SetPending(4)
	m.SetPro(true)

	if got := testutil.ToFloat64(m.events.WithLabelValues("upcoming")); got != 3 {
		t.Fatalf("upcoming=%v", got)
	}
	if got := testutil.ToFloat64(m.events.WithLabelValues("past_due")); got != 0 {
		t.Fatalf("past_due=%v", got)
	}
	if got := testutil.ToFloat64(m.pending); got != 4 {
		t.Fatalf("pending=%v", got)
	}
	if got := testutil.ToFloat64(m.pro); got != 1 {
		t.Fatalf("pro=%v", got)
	}
	m.SetPro(false)
	if got := testutil.ToFloat64(m.pro); got != 0 {
		t.Fatalf("pro=%v", got)
	}
}

func TestDeliveredCounter(t *testing.T) {
	m := New()
	m.Delivered([]reminders.Request{
		{Kind: reminders.KindDayBefore},
		{Kind: reminders.KindDayBefore},
		{Kind: reminders.KindMorningOf},
	})
	if got := testutil.ToFloat64(m.delivered.WithLabelValues("1day")); got != 2 {
		t.Fatalf("1day=%v", got)
	}
	if got := testutil.ToFloat64(m.delivered.WithLabelValues("1hour")); got != 0 {
		t.Fatalf("1hour=%v", got)
	}
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.ObserveTick(15 * time.Millisecond)
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{"countdown_tick_duration_seconds_count 1", "countdown_reminders_pending", "countdown_pro"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics missing %q", want)
		}
	}

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil || health.StatusCode != http.StatusOK {
		t.Fatalf("healthz=%v, %v", health, err)
	}
	health.Body.Close()
}
