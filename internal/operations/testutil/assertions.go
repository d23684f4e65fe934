package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demandprep/internal/operations"
)

// AssertStepStatus checks the status of a single step state
func AssertStepStatus(t *testing.T, step *operations.StepState, expected operations.StepStatus) {
	t.Helper()
	require.NotNil(t, step)
	assert.Equal(t, expected, step.GetStatus(), "step %s", step.ID)
}

// AssertStageStatus checks the status of stageID within an operation
func AssertStageStatus(t *testing.T, p *operations.OperationState, stageID string, expected operations.StepStatus) {
	t.Helper()
	step := p.GetStage(stageID)
	require.NotNil(t, step, "step %s not found", stageID)
	assert.Equal(t, expected, step.GetStatus(), "step %s", stageID)
}

// AssertStageCompleted checks that stageID completed
func AssertStageCompleted(t *testing.T, p *operations.OperationState, stageID string) {
	t.Helper()
	AssertStageStatus(t, p, stageID, operations.StepStatusCompleted)
}

// AssertStageFailed checks that stageID failed
func AssertStageFailed(t *testing.T, p *operations.OperationState, stageID string) {
	t.Helper()
	AssertStageStatus(t, p, stageID, operations.StepStatusFailed)
}

// AssertStageSkipped checks that stageID was skipped
func AssertStageSkipped(t *testing.T, p *operations.OperationState, stageID string) {
	t.Helper()
	AssertStageStatus(t, p, stageID, operations.StepStatusSkipped)
}

// AssertErrorType checks the operation error type of err
func AssertErrorType(t *testing.T, err error, expected operations.ErrorType) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, expected, operations.GetErrorType(err), "error: %v", err)
}

// AssertExecutedBefore checks that first ran before second
func AssertExecutedBefore(t *testing.T, first, second *MockStage) {
	t.Helper()
	a, ok := first.FirstExecuteTime()
	require.True(t, ok, "step %s never executed", first.ID())
	b, ok := second.FirstExecuteTime()
	require.True(t, ok, "step %s never executed", second.ID())
	assert.False(t, b.Before(a), "step %s ran before %s", second.ID(), first.ID())
}
