package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/roach88/favnum/internal/events"
	"github.com/roach88/favnum/internal/ir"
	"github.com/roach88/favnum/internal/store"
)

// racingStore simulates a concurrent first write landing between the
// caller's Load and CreateIfAbsent: the first Load reports NotFound even
// though the record is already committed.
type racingStore struct {
	*store.Memory
	raced bool
}

func (s *racingStore) Update(ctx context.Context, fn func(store.Tx) error) error {
	return s.Memory.Update(ctx, func(tx store.Tx) error {
		return fn(&racingTx{Tx: tx, store: s})
	})
}

type racingTx struct {
	store.Tx
	store *racingStore
}

func (t *racingTx) Load(ctx context.Context, addr ir.Address) (store.Handle, []byte, error) {
	if !t.store.raced {
		t.store.raced = true
		return store.Handle{}, nil, ir.NewRecordError(ir.CodeNotFound, "load", addr, "")
	}
	return t.Tx.Load(ctx, addr)
}

func TestSetOwnRecordRetriesAfterLosingCreationRace(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()

	// The winner's record is already committed.
	_, err := New(mem, WithLogger(quietLogger())).SetOwnRecord(ctx, userD, 1)
	require.NoError(t, err)

	rec := events.NewRecorder(nil)
	r := New(&racingStore{Memory: mem}, WithLogger(quietLogger()), WithPublisher(rec))

	got, err := r.SetOwnRecord(ctx, userD, 2)
	require.NoError(t, err)
	assert.Equal(t, ir.UserRecord{Owner: userD, Value: 2}, got)

	stored, err := r.ReadRecord(ctx, userD)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), stored.Value)

	n, err := mem.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	published := rec.Events()
	require.Len(t, published, 1)
	assert.False(t, published[0].Event.(events.RecordUpdated).Created)
}

func TestOperationSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := New(store.NewMemory(), WithLogger(quietLogger()), WithTracerProvider(tp))
	ctx := context.Background()

	mustInit(t, r, admin)
	_, err := r.AdminResetRecord(ctx, userB, userB, 1)
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)

	assert.Equal(t, "registry.initialize", spans[0].Name)
	assert.Equal(t, "registry.admin reset record", spans[1].Name)

	var code string
	for _, kv := range spans[1].Attributes {
		if kv.Key == attribute.Key("favnum.error_code") {
			code = kv.Value.AsString()
		}
	}
	assert.Equal(t, string(ir.CodeUnauthorized), code)
}
