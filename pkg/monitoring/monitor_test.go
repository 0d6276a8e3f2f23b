package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordTrainingEvent(t *testing.T) {
	before := counterValue(t, TrainingEvents.WithLabelValues(EventUnlocked))
	RecordTrainingEvent(EventUnlocked)
	RecordTrainingEvent(EventUnlocked)

	got := counterValue(t, TrainingEvents.WithLabelValues(EventUnlocked))
	if got-before != 2 {
		t.Fatalf("unlocked events: want=%v got=%v", 2, got-before)
	}
}

func TestInitIsIdempotent(t *testing.T) {
	Init()
	Init()
}
