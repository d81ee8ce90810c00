package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retraceio/retrace/internal/tracker"
)

func sampleResult() *Result {
	return &Result{
		Pass:    true,
		TraceID: "trace-0001",
		Trace: []TraceEvent{
			{Type: "env", Source: "test", Payload: map[string]any{"k": "v"}},
			{Type: "step", StepID: 1, Node: "a", Status: "enter"},
			{Type: "step", StepID: 2, Node: "a", Status: "exit"},
		},
		Stats: tracker.Stats{
			TotalRecords: 3,
			ActiveTraces: 1,
			Traces: []tracker.TraceSummary{
				{TraceID: "trace-0001", EnvID: "env-0001", Steps: 2, Nodes: 1},
			},
		},
	}
}

func TestAssertRecordCount(t *testing.T) {
	result := sampleResult()

	assert.NoError(t, evaluate(result, Assertion{Type: AssertRecordCount, Count: 3}))

	err := evaluate(result, Assertion{Type: AssertRecordCount, Count: 5})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertRecordCount, ae.Type)
}

func TestAssertStepCount(t *testing.T) {
	result := sampleResult()

	assert.NoError(t, evaluate(result, Assertion{Type: AssertStepCount, Count: 2}))
	assert.Error(t, evaluate(result, Assertion{Type: AssertStepCount, Count: 3}))
}

func TestAssertCriticalError(t *testing.T) {
	result := sampleResult()

	assert.NoError(t, evaluate(result, Assertion{Type: AssertCriticalError, Value: false}))
	assert.Error(t, evaluate(result, Assertion{Type: AssertCriticalError, Value: true}))

	result.Stats.Traces[0].HasCriticalError = true
	assert.NoError(t, evaluate(result, Assertion{Type: AssertCriticalError, Value: true}))
}

func TestAssertStepOrder(t *testing.T) {
	result := sampleResult()

	assert.NoError(t, evaluate(result, Assertion{
		Type:  AssertStepOrder,
		Steps: []string{"a:enter", "a:exit"},
	}))

	err := evaluate(result, Assertion{
		Type:  AssertStepOrder,
		Steps: []string{"a:enter"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a:enter, a:exit")
}

func TestEvaluate_UnknownType(t *testing.T) {
	assert.Error(t, evaluate(sampleResult(), Assertion{Type: "nope"}))
}
