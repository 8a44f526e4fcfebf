package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatherNames(t *testing.T, reg *prometheus.Registry) map[string]bool {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool, len(families))
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	return names
}

func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	require.NotNil(t, c)

	c.RecordOp("users", "add", 5*time.Millisecond)
	c.RecordOpFailure("users", "add")

	names := gatherNames(t, reg)
	assert.True(t, names["mflix_store_operation_seconds"])
	assert.True(t, names["mflix_store_operation_failures_total"])
}

func TestRecordOp_WithoutFailureKeepsCounterUnset(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOp("comments", "get", time.Millisecond)

	names := gatherNames(t, reg)
	assert.True(t, names["mflix_store_operation_seconds"])
	assert.False(t, names["mflix_store_operation_failures_total"])
}
