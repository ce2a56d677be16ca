package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestIncr(t *testing.T) {
	m, err := New("node1")
	require.NoError(t, err)

	require.NoError(t, m.Incr(MetricRuleCount, map[string]string{"op": "push", "result": "ok"}))
	require.NoError(t, m.Add(MetricRuleCount, 2, map[string]string{"op": "push", "result": "ok"}))
	require.NoError(t, m.Incr(MetricActiveConnections, nil))
	require.NoError(t, m.Decr(MetricActiveConnections, nil))
	m.IncrError("provision")

	require.Error(t, m.Incr("nope", nil))
	require.Error(t, m.Decr(MetricRuleCount, map[string]string{"op": "push", "result": "ok"}))

	n, err := testutil.GatherAndCount(m.Gatherer(), MetricRuleCount, MetricErrorCount)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	col := m.collectors[MetricRuleCount]
	require.Equal(t, float64(3), testutil.ToFloat64(col))
}
