package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"demandprep/internal/infrastructure"
)

// Manager orchestrates pipeline runs
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger

	mu         sync.RWMutex
	operations map[string]*runningOperation
}

type runningOperation struct {
	state  *OperationState
	cancel context.CancelFunc
}

// NewManager creates a new pipeline manager
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if tracer == nil {
		tracer = NewNoopOperationTracer()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{
		registry:   registry,
		config:     config,
		tracer:     tracer,
		logger:     logger.With(slog.String("component", "operation_manager")),
		operations: make(map[string]*runningOperation),
	}
}

// RegisterStage registers a step with the pipeline
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs the requested steps in dependency order. The returned state
// holds every step's outputs in its context; the response summarizes it.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, *OperationState, error) {
	if req.ID == "" {
		req.ID = infrastructure.GenerateRunID()
	}
	ctx = infrastructure.WithTraceID(ctx, req.ID)

	state := NewOperationState(req.ID)

	steps, err := m.selectSteps(req.Steps)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		return m.createResponse(state), state, err
	}

	ids := make([]string, len(steps))
	for i, step := range steps {
		ids[i] = step.ID()
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.storeOperation(state, cancel)
	defer m.removeOperation(req.ID)

	runCtx, span := m.tracer.TraceOperationExecution(runCtx, req.ID, ids)
	defer span.End()

	m.logOperationStart(runCtx, req.ID, ids)
	state.Start()

	err = m.executeSequential(runCtx, state, steps)

	if err != nil {
		if GetErrorType(err) == ErrorTypeCancellation {
			state.Cancel(err)
		} else {
			state.Fail(err)
		}
	} else {
		state.Complete()
	}

	m.tracer.RecordOperationCompletion(runCtx, span, req.ID, state.Duration(), err)
	m.logOperationComplete(runCtx, req.ID, state.Duration(), state.GetStatus())

	return m.createResponse(state), state, err
}

// selectSteps returns the requested steps in dependency order. Every
// dependency of a requested step must be requested too.
func (m *Manager) selectSteps(requested []string) ([]Step, error) {
	ordered, err := m.registry.GetDependencyOrder()
	if err != nil {
		return nil, NewFatalError("failed to get dependency order", err)
	}
	if len(requested) == 0 {
		return ordered, nil
	}

	want := make(map[string]bool, len(requested))
	for _, id := range requested {
		if !m.registry.Has(id) {
			return nil, NewFatalError(fmt.Sprintf("requested step not found: %s", id), nil)
		}
		want[id] = true
	}

	selected := make([]Step, 0, len(requested))
	for _, step := range ordered {
		if !want[step.ID()] {
			continue
		}
		for _, dep := range step.GetDependencies() {
			if !want[dep] {
				return nil, NewDependencyError(step.ID(), dep,
					fmt.Sprintf("dependency %s was not requested", dep))
			}
		}
		selected = append(selected, step)
	}
	return selected, nil
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var firstErr error

	for i, step := range steps {
		if ctx.Err() != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID())
		}

		stepState := state.GetStage(step.ID())
		if stepState.GetStatus() == StepStatusSkipped {
			m.logger.InfoContext(ctx, "stage_skipped",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.Int("stage_number", i+1),
				slog.Int("total_stages", len(steps)))
			continue
		}

		m.logger.InfoContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.logStageError(ctx, state.ID, step.ID(), err)
			m.skipDependentStages(state, steps, step.ID())
			if !m.config.ContinueOnError {
				m.skipRemaining(state, steps[i+1:], "operation failed")
				return err
			}
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

// executeStage executes a single step with retry logic
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state for step %s not found", step.ID()), nil)
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Skip(err.Error())
		return err
	}

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err)
		stepState.Fail(verr)
		return verr
	}

	m.logStageStart(ctx, state.ID, step.ID())

	timeout := m.config.GetStageTimeout(step.ID())
	retry := m.config.RetryConfig
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		stepState.Start()

		err := m.runAttempt(ctx, state, step, attempt, timeout)
		if err == nil {
			stepState.Complete()
			m.logStageComplete(ctx, state.ID, step.ID(), stepState.Duration())
			return nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt >= retry.MaxAttempts {
			break
		}

		delay := retry.Delay(attempt)
		m.logger.WarnContext(ctx, "stage_retry",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", retry.MaxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			lastErr = NewCancellationError(step.ID())
			stepState.Fail(lastErr)
			return lastErr
		}
	}

	stepState.Fail(lastErr)
	return lastErr
}

// runAttempt runs one attempt of step under its own timeout and span
func (m *Manager) runAttempt(ctx context.Context, state *OperationState, step Step, attempt int, timeout time.Duration) error {
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepCtx, span := m.tracer.TraceStageExecution(stepCtx, state.ID, step.ID())
	defer span.End()

	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			err = NewCancellationError(step.ID())
		case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
			err = NewTimeoutError(step.ID(), timeout.String())
		default:
			err = WrapError(err, step.ID(), "step execution failed")
		}
	}

	m.tracer.RecordStageCompletion(stepCtx, span, step.ID(), attempt, duration, err)
	return err
}

// skipDependentStages marks every pending step that transitively depends
// on failedID as skipped
func (m *Manager) skipDependentStages(state *OperationState, steps []Step, failedID string) {
	for _, step := range steps {
		for _, dep := range step.GetDependencies() {
			if dep != failedID {
				continue
			}
			stepState := state.GetStage(step.ID())
			if stepState != nil && stepState.GetStatus() == StepStatusPending {
				stepState.Skip(fmt.Sprintf("dependency %s failed", failedID))
				m.skipDependentStages(state, steps, step.ID())
			}
			break
		}
	}
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// checkDependencies verifies that all dependencies completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStage(dep)
		if depState == nil {
			return NewDependencyError(step.ID(), dep, fmt.Sprintf("dependency %s not found", dep))
		}
		if status := depState.GetStatus(); status != StepStatusCompleted {
			return NewDependencyError(step.ID(), dep,
				fmt.Sprintf("dependency %s not completed (status: %s)", dep, status))
		}
	}
	return nil
}

// createResponse creates a response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.GetStatus(),
		Duration: state.Duration(),
		Steps:    state.Summaries(),
	}
	if err := state.GetError(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

// GetOperation returns the step summaries of a running operation
func (m *Manager) GetOperation(id string) (*OperationResponse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, exists := m.operations[id]
	if !exists {
		return nil, fmt.Errorf("operation %s not found", id)
	}
	return m.createResponse(op.state), nil
}

// CancelOperation cancels a running operation. The step in progress sees
// its context cancelled and no further step starts.
func (m *Manager) CancelOperation(id string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, exists := m.operations[id]
	if !exists {
		return fmt.Errorf("operation %s not found", id)
	}
	op.cancel()
	return nil
}

func (m *Manager) storeOperation(state *OperationState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = &runningOperation{state: state, cancel: cancel}
}

func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}
