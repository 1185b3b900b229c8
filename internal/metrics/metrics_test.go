package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveGenerationSetsGaugesFromTheLatestCall(t *testing.T) {
	Recorder{}.ObserveGeneration(3, 42, 0, 10)

	assert.Equal(t, float64(3), testutil.ToFloat64(gaGeneration))
	assert.Equal(t, float64(42), testutil.ToFloat64(gaBestCost))
	assert.Equal(t, float64(10), testutil.ToFloat64(gaPopulationSize))
}

func TestSetCatalogClassesTotalUpdatesTheGauge(t *testing.T) {
	SetCatalogClassesTotal(17)

	assert.Equal(t, float64(17), testutil.ToFloat64(catalogClassesTotal))
}

func TestRecordCacheHitAndMissIncrementIndependentCounters(t *testing.T) {
	before := testutil.ToFloat64(conflictCacheHitsTotal)
	RecordCacheHit()
	assert.Equal(t, before+1, testutil.ToFloat64(conflictCacheHitsTotal))

	beforeMiss := testutil.ToFloat64(conflictCacheMissesTotal)
	RecordCacheMiss()
	assert.Equal(t, beforeMiss+1, testutil.ToFloat64(conflictCacheMissesTotal))
}

func TestHandlerIsNonNil(t *testing.T) {
	assert.NotNil(t, Handler())
}
