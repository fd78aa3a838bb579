package harness

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/favnum/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s caller=%s target=%s -> %s\n",
			event.Seq, event.Op, event.Caller, event.Target, event.Case)
	}
	return buf.String()
}

func (h *Harness) evaluateAssertions(ctx context.Context, result *Result, assertions []Assertion) []string {
	var msgs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertFinalRecord:
			err = h.assertFinalRecord(ctx, result.Trace, a)
		case AssertFinalConfig:
			err = h.assertFinalConfig(ctx, result.Trace, a)
		case AssertRecordCount:
			err = h.assertRecordCount(ctx, result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			msgs = append(msgs, err.Error())
		}
	}
	return msgs
}

func (h *Harness) assertFinalRecord(ctx context.Context, trace []TraceEvent, a Assertion) error {
	rec, err := h.registry.ReadRecord(ctx, h.names.Identity(a.Owner))
	if a.Absent {
		if errors.Is(err, ir.ErrNotFound) {
			return nil
		}
		return &AssertionError{
			Type:     AssertFinalRecord,
			Expected: fmt.Sprintf("no record for %s", a.Owner),
			Actual:   describeRecord(h, rec, err),
			Trace:    trace,
		}
	}

	if err == nil && rec.Owner == h.names.Identity(a.Owner) && rec.Value == *a.Value {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalRecord,
		Expected: fmt.Sprintf("record owner=%s value=%d", a.Owner, *a.Value),
		Actual:   describeRecord(h, rec, err),
		Trace:    trace,
	}
}

func describeRecord(h *Harness, rec ir.UserRecord, err error) string {
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("record owner=%s value=%d", h.names.Name(rec.Owner), rec.Value)
}

func (h *Harness) assertFinalConfig(ctx context.Context, trace []TraceEvent, a Assertion) error {
	cfg, err := h.registry.ReadConfig(ctx)
	if err == nil && cfg.Admin == h.names.Identity(a.Admin) {
		return nil
	}
	actual := ""
	if err != nil {
		actual = err.Error()
	} else {
		actual = "admin=" + h.names.Name(cfg.Admin)
	}
	return &AssertionError{
		Type:     AssertFinalConfig,
		Expected: "admin=" + a.Admin,
		Actual:   actual,
		Trace:    trace,
	}
}

func (h *Harness) assertRecordCount(ctx context.Context, trace []TraceEvent, a Assertion) error {
	n, err := h.store.Count(ctx)
	if err != nil {
		return err
	}
	if n == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecordCount,
		Expected: fmt.Sprintf("%d records", *a.Count),
		Actual:   fmt.Sprintf("%d records", n),
		Trace:    trace,
	}
}

// assertTraceCount checks how often op appears in the trace, restricted to
// events with the given case when one is set.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Op != a.Op {
			continue
		}
		if a.Case != "" && event.Case != a.Case {
			continue
		}
		count++
	}
	if count == *a.Count {
		return nil
	}

	what := a.Op
	if a.Case != "" {
		what += " with case " + a.Case
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("%s exactly %d times", what, *a.Count),
		Actual:   fmt.Sprintf("%d times", count),
		Trace:    trace,
	}
}
