package events

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitDeliversToSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var received []*Event
	bus.Subscribe(AnalysisComplete, func(e *Event) {
		received = append(received, e)
	})

	bus.Emit(AnalysisComplete, "analysis", map[string]interface{}{"symbol": "AAPL"})

	require.Len(t, received, 1)
	assert.Equal(t, AnalysisComplete, received[0].Type)
	assert.Equal(t, "analysis", received[0].Module)
	assert.Equal(t, "AAPL", received[0].Data["symbol"])
	assert.False(t, received[0].Timestamp.IsZero())
}

func TestEmitOnlyMatchingType(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var completeCount, failedCount int
	bus.Subscribe(AnalysisComplete, func(e *Event) { completeCount++ })
	bus.Subscribe(AnalysisFailed, func(e *Event) { failedCount++ })

	bus.Emit(AnalysisFailed, "analysis", nil)

	assert.Equal(t, 0, completeCount)
	assert.Equal(t, 1, failedCount)
}

func TestEmitWithNoSubscribers(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	bus.Emit(IndicesSynced, "market", nil)
	assert.Equal(t, 0, bus.SubscriberCount(IndicesSynced))
}

func TestMultipleSubscribersAllInvoked(t *testing.T) {
	bus := NewBus(zerolog.Nop())

	var calls int
	for i := 0; i < 3; i++ {
		bus.Subscribe(CompanyRefreshed, func(e *Event) { calls++ })
	}

	bus.Emit(CompanyRefreshed, "analysis", nil)

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, bus.SubscriberCount(CompanyRefreshed))
}

func TestManagerEmitTyped(t *testing.T) {
	bus := NewBus(zerolog.Nop())
	manager := NewManager(bus, zerolog.Nop())

	var received *Event
	bus.Subscribe(AnalysisComplete, func(e *Event) { received = e })

	manager.EmitTyped(AnalysisComplete, "analysis", &AnalysisCompleteData{
		Symbol:       "AAPL",
		AnalysisID:   "abc-123",
		OverallScore: 74.0,
		RiskRating:   "Medium-Low Risk",
	})

	require.NotNil(t, received)
	assert.Equal(t, "AAPL", received.Data["symbol"])
	assert.Equal(t, "abc-123", received.Data["analysis_id"])
	assert.Equal(t, 74.0, received.Data["overall_score"])
	assert.Equal(t, "Medium-Low Risk", received.Data["risk_rating"])
}
