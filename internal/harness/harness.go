package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/favnum/internal/events"
	"github.com/roach88/favnum/internal/ir"
	"github.com/roach88/favnum/internal/registry"
	"github.com/roach88/favnum/internal/store"
	"github.com/roach88/favnum/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	store    *store.Memory
	registry *registry.Registry
	recorder *events.Recorder
	names    *testutil.Names
}

// Run executes a scenario against a fresh in-memory registry and returns
// the result. Expect and assertion mismatches are reported in the result;
// the returned error is reserved for failures of the harness itself.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st := store.NewMemory()
	rec := events.NewRecorder(nil)
	h := &Harness{
		store: st,
		registry: registry.New(st,
			registry.WithPublisher(rec),
			registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		),
		recorder: rec,
		names:    testutil.NewNames(),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for _, msg := range h.evaluateAssertions(ctx, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	published := len(h.recorder.Events())
	ctx = registry.WithRequestID(ctx, fmt.Sprintf("%s-%d", step.Op, index))

	outcome, err := h.invoke(ctx, step)
	if err != nil && ir.CodeOf(err) == "" {
		return err
	}

	event := TraceEvent{
		Seq:    index + 1,
		Op:     step.Op,
		Caller: step.Caller,
		Target: step.Target,
		Value:  step.Value,
		Case:   caseOf(err),
	}
	if err == nil {
		event.Result = outcome
	}
	for _, p := range h.recorder.Events()[published:] {
		event.Events = append(event.Events, p.Topic)
	}
	result.Trace = append(result.Trace, event)

	for _, msg := range checkExpect(index, step, err, outcome) {
		result.AddError(msg)
	}
	return nil
}

func (h *Harness) invoke(ctx context.Context, step Step) (*Outcome, error) {
	switch step.Op {
	case OpInitialize:
		cfg, err := h.registry.Initialize(ctx, h.names.Identity(step.Caller))
		if err != nil {
			return nil, err
		}
		return &Outcome{Admin: h.names.Name(cfg.Admin)}, nil
	case OpSet:
		rec, err := h.registry.SetOwnRecord(ctx, h.names.Identity(step.Caller), *step.Value)
		if err != nil {
			return nil, err
		}
		return h.recordOutcome(rec), nil
	case OpRead:
		rec, err := h.registry.ReadRecord(ctx, h.names.Identity(step.Target))
		if err != nil {
			return nil, err
		}
		return h.recordOutcome(rec), nil
	case OpReset:
		rec, err := h.registry.AdminResetRecord(ctx,
			h.names.Identity(step.Caller), h.names.Identity(step.Target), *step.Value)
		if err != nil {
			return nil, err
		}
		return h.recordOutcome(rec), nil
	case OpConfig:
		cfg, err := h.registry.ReadConfig(ctx)
		if err != nil {
			return nil, err
		}
		return &Outcome{Admin: h.names.Name(cfg.Admin)}, nil
	}
	return nil, fmt.Errorf("unknown op %q", step.Op)
}

func (h *Harness) recordOutcome(rec ir.UserRecord) *Outcome {
	v := rec.Value
	return &Outcome{Owner: h.names.Name(rec.Owner), Value: &v}
}

// caseOf names the outcome of a step: "ok" or the error code.
func caseOf(err error) string {
	if err == nil {
		return CaseOK
	}
	return string(ir.CodeOf(err))
}

// matchCase reports whether err satisfies the expected case. An expected
// ALREADY_EXISTS also accepts ALREADY_INITIALIZED.
func matchCase(err error, want string) bool {
	if want == CaseOK {
		return err == nil
	}
	if err == nil {
		return false
	}
	sentinel := ir.ErrorCode(want).Err()
	return sentinel != nil && errors.Is(err, sentinel)
}

func checkExpect(index int, step Step, err error, got *Outcome) []string {
	want := step.Expect
	if want == nil {
		want = &Expect{Case: CaseOK}
	}

	if !matchCase(err, want.Case) {
		return []string{fmt.Sprintf("steps[%d] %s: expected case %s, got %s", index, step.Op, want.Case, caseOf(err))}
	}
	if err != nil {
		return nil
	}

	var msgs []string
	if want.Value != nil && (got.Value == nil || *got.Value != *want.Value) {
		msgs = append(msgs, fmt.Sprintf("steps[%d] %s: expected value %d, got %s", index, step.Op, *want.Value, formatValue(got.Value)))
	}
	if want.Owner != "" && got.Owner != want.Owner {
		msgs = append(msgs, fmt.Sprintf("steps[%d] %s: expected owner %s, got %s", index, step.Op, want.Owner, got.Owner))
	}
	if want.Admin != "" && got.Admin != want.Admin {
		msgs = append(msgs, fmt.Sprintf("steps[%d] %s: expected admin %s, got %s", index, step.Op, want.Admin, got.Admin))
	}
	return msgs
}

func formatValue(v *uint64) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%d", *v)
}
