package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/favnum/internal/ir"
)

// Memory is an in-memory record store for tests and ephemeral use.
//
// Thread-safety: one mutex is held for the duration of each transaction, so
// transactions are serializable.
type Memory struct {
	mu      sync.Mutex
	records map[ir.Address]memRecord
}

type memRecord struct {
	data  []byte
	payer ir.Identity
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{records: make(map[ir.Address]memRecord)}
}

// Update runs fn with staged writes that are applied only if fn returns nil.
func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	return m.run(ctx, false, fn)
}

// View runs fn against a read-only view.
func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	return m.run(ctx, true, fn)
}

func (m *Memory) run(ctx context.Context, readOnly bool, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memTx{base: m.records, staged: make(map[ir.Address]memRecord), readOnly: readOnly}
	if err := fn(tx); err != nil {
		return err
	}
	for addr, rec := range tx.staged {
		m.records[addr] = rec
	}
	return nil
}

// Payer returns the identity charged for the record at addr.
func (m *Memory) Payer(_ context.Context, addr ir.Address) (ir.Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[addr]
	if !ok {
		return ir.Identity{}, ir.NewRecordError(ir.CodeNotFound, "load payer", addr, "")
	}
	return rec.payer, nil
}

// Count returns the number of committed records.
func (m *Memory) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records), nil
}

type memTx struct {
	base     map[ir.Address]memRecord
	staged   map[ir.Address]memRecord
	readOnly bool
}

func (t *memTx) lookup(addr ir.Address) (memRecord, bool) {
	if rec, ok := t.staged[addr]; ok {
		return rec, true
	}
	rec, ok := t.base[addr]
	return rec, ok
}

func (t *memTx) CreateIfAbsent(_ context.Context, addr ir.Address, size int, initial []byte, payer ir.Identity) (Handle, error) {
	const op = "create record"
	if t.readOnly {
		return Handle{}, fmt.Errorf("%s: %w", op, ErrReadOnly)
	}
	if len(initial) != size {
		return Handle{}, sizeMismatch(op, addr, len(initial), size)
	}
	if _, ok := t.lookup(addr); ok {
		return Handle{}, ir.NewRecordError(ir.CodeAlreadyExists, op, addr, "")
	}
	t.staged[addr] = memRecord{data: clone(initial), payer: payer}
	return Handle{Address: addr, Size: size}, nil
}

func (t *memTx) Load(_ context.Context, addr ir.Address) (Handle, []byte, error) {
	rec, ok := t.lookup(addr)
	if !ok {
		return Handle{}, nil, ir.NewRecordError(ir.CodeNotFound, "load record", addr, "")
	}
	return Handle{Address: addr, Size: len(rec.data)}, clone(rec.data), nil
}

func (t *memTx) Store(_ context.Context, h Handle, data []byte) error {
	const op = "store record"
	if t.readOnly {
		return fmt.Errorf("%s: %w", op, ErrReadOnly)
	}
	rec, ok := t.lookup(h.Address)
	if !ok {
		return ir.NewRecordError(ir.CodeNotFound, op, h.Address, "")
	}
	if len(data) != h.Size || len(data) != len(rec.data) {
		return sizeMismatch(op, h.Address, len(data), len(rec.data))
	}
	rec.data = clone(data)
	t.staged[h.Address] = rec
	return nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
