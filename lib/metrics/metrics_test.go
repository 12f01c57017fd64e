package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())
	t.Run("events by action check", func(t *testing.T) {
		m.IncrementEvent("Submitted")
		m.IncrementEvent("Submitted")
		m.IncrementEvent("Rejected")
		require.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("Submitted")))
		require.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("Rejected")))
	})
	t.Run("publish results check", func(t *testing.T) {
		m.IncrementPublished(true)
		m.IncrementPublished(false)
		m.IncrementPublished(false)
		require.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("ok")))
		require.Equal(t, 2.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues("error")))
	})
}
