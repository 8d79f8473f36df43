package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Idempotent(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg))

	AuthorizeResults.WithLabelValues(OutcomeSucceeded).Inc()
	n, err := testutil.GatherAndCount(reg, "lock_authorize_results_total")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 1)
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(TenantFetches.WithLabelValues(SourceCache))
	TenantFetches.WithLabelValues(SourceCache).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TenantFetches.WithLabelValues(SourceCache)))
}
