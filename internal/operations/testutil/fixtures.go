package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"demandprep/internal/operations"
)

// CreateTestConfig returns a config with short timeouts and fast retries
func CreateTestConfig() *operations.Config {
	return operations.NewConfigBuilder().
		WithDefaultTimeout(5 * time.Second).
		WithRetryConfig(operations.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: time.Millisecond,
			MaxDelay:     5 * time.Millisecond,
			Multiplier:   2,
		}).
		Build()
}

// CreateTestRegistry registers steps and fails the test setup on error
func CreateTestRegistry(steps ...operations.Step) *operations.Registry {
	r := operations.NewRegistry()
	for _, s := range steps {
		if err := r.Register(s); err != nil {
			panic(fmt.Sprintf("register %s: %v", s.ID(), err))
		}
	}
	return r
}

// CreateSuccessfulStage creates a step that always succeeds
func CreateSuccessfulStage(id, name string, deps ...string) *MockStage {
	return NewStageBuilder(id, name).WithDependencies(deps...).Build()
}

// CreateFailingStage creates a step that always fails with err
func CreateFailingStage(id, name string, err error, deps ...string) *MockStage {
	return NewStageBuilder(id, name).
		WithDependencies(deps...).
		WithExecute(func(context.Context, *operations.OperationState) error {
			return err
		}).
		Build()
}

// CreateRetryableStage creates a step that fails with a retryable error
// failCount times before succeeding
func CreateRetryableStage(id, name string, failCount int, deps ...string) *MockStage {
	var calls int32
	return NewStageBuilder(id, name).
		WithDependencies(deps...).
		WithExecute(func(context.Context, *operations.OperationState) error {
			if int(atomic.AddInt32(&calls, 1)) <= failCount {
				return operations.NewExecutionError(id, fmt.Errorf("transient failure"), true)
			}
			return nil
		}).
		Build()
}

// CreateSlowStage creates a step that waits for duration or until its
// context ends
func CreateSlowStage(id, name string, duration time.Duration, deps ...string) *MockStage {
	return NewStageBuilder(id, name).
		WithDependencies(deps...).
		WithExecute(func(ctx context.Context, _ *operations.OperationState) error {
			select {
			case <-time.After(duration):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}).
		Build()
}

// CreateValidationFailingStage creates a step whose Validate fails
func CreateValidationFailingStage(id, name string, validationErr error, deps ...string) *MockStage {
	return NewStageBuilder(id, name).
		WithDependencies(deps...).
		WithValidate(func(*operations.OperationState) error {
			return validationErr
		}).
		Build()
}

// CreateContextWritingStage creates a step that publishes value under key
func CreateContextWritingStage(id, name, key string, value interface{}, deps ...string) *MockStage {
	return NewStageBuilder(id, name).
		WithDependencies(deps...).
		WithExecute(func(_ context.Context, state *operations.OperationState) error {
			state.SetContext(key, value)
			return nil
		}).
		Build()
}

// StageBuilder builds mock steps
type StageBuilder struct {
	stage *MockStage
}

// NewStageBuilder creates a builder for a step with id and name
func NewStageBuilder(id, name string) *StageBuilder {
	return &StageBuilder{stage: &MockStage{IDValue: id, NameValue: name}}
}

// WithDependencies sets the step dependencies
func (b *StageBuilder) WithDependencies(deps ...string) *StageBuilder {
	b.stage.DependenciesValue = deps
	return b
}

// WithExecute sets the execute function
func (b *StageBuilder) WithExecute(fn func(context.Context, *operations.OperationState) error) *StageBuilder {
	b.stage.ExecuteFunc = fn
	return b
}

// WithValidate sets the validate function
func (b *StageBuilder) WithValidate(fn func(*operations.OperationState) error) *StageBuilder {
	b.stage.ValidateFunc = fn
	return b
}

// Build returns the mock step
func (b *StageBuilder) Build() *MockStage {
	return b.stage
}
