package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_RegistersCollectors(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterSessionsStarted.Inc()
	m.CounterPlansGenerated.WithLabelValues("mock").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CounterSessionsStarted))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CounterPlansGenerated.WithLabelValues("mock")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fittrack_test_server_sessions_started")
	assert.Contains(t, names, "fittrack_test_server_plans_generated")
}
