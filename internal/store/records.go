package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/favnum/internal/ir"
)

// sqlTx implements Tx over a database/sql transaction.
type sqlTx struct {
	tx       *sql.Tx
	dialect  Dialect
	readOnly bool
}

// CreateIfAbsent inserts a new record row.
// Uses ON CONFLICT(address) DO NOTHING so that an occupied address is
// reported as AlreadyExists rather than a constraint violation, and an
// existing record is never modified.
func (t *sqlTx) CreateIfAbsent(ctx context.Context, addr ir.Address, size int, initial []byte, payer ir.Identity) (Handle, error) {
	const op = "create record"
	if t.readOnly {
		return Handle{}, fmt.Errorf("%s: %w", op, ErrReadOnly)
	}
	if len(initial) != size {
		return Handle{}, sizeMismatch(op, addr, len(initial), size)
	}

	result, err := t.tx.ExecContext(ctx, rebind(t.dialect, `
		INSERT INTO records (address, size, data, payer)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO NOTHING
	`),
		addr.String(),
		size,
		initial,
		payer.String(),
	)
	if err != nil {
		return Handle{}, fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return Handle{}, fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rowsAffected == 0 {
		return Handle{}, ir.NewRecordError(ir.CodeAlreadyExists, op, addr, "")
	}

	return Handle{Address: addr, Size: size}, nil
}

// Load reads a record row.
func (t *sqlTx) Load(ctx context.Context, addr ir.Address) (Handle, []byte, error) {
	const op = "load record"
	var (
		size int
		data []byte
	)
	err := t.tx.QueryRowContext(ctx, rebind(t.dialect, `
		SELECT size, data FROM records WHERE address = ?
	`), addr.String()).Scan(&size, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return Handle{}, nil, ir.NewRecordError(ir.CodeNotFound, op, addr, "")
	}
	if err != nil {
		return Handle{}, nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(data) != size {
		return Handle{}, nil, sizeMismatch(op, addr, len(data), size)
	}

	return Handle{Address: addr, Size: size}, data, nil
}

// Store overwrites a record row in place. The size predicate keeps the
// layout fixed even if a caller forged a handle.
func (t *sqlTx) Store(ctx context.Context, h Handle, data []byte) error {
	const op = "store record"
	if t.readOnly {
		return fmt.Errorf("%s: %w", op, ErrReadOnly)
	}
	if len(data) != h.Size {
		return sizeMismatch(op, h.Address, len(data), h.Size)
	}

	result, err := t.tx.ExecContext(ctx, rebind(t.dialect, `
		UPDATE records SET data = ? WHERE address = ? AND size = ?
	`), data, h.Address.String(), h.Size)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rowsAffected == 0 {
		return ir.NewRecordError(ir.CodeNotFound, op, h.Address, "")
	}
	return nil
}

// Payer returns the identity charged for the record at addr.
func (s *Store) Payer(ctx context.Context, addr ir.Address) (ir.Identity, error) {
	var payer string
	err := s.db.QueryRowContext(ctx, rebind(s.dialect, `
		SELECT payer FROM records WHERE address = ?
	`), addr.String()).Scan(&payer)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Identity{}, ir.NewRecordError(ir.CodeNotFound, "load payer", addr, "")
	}
	if err != nil {
		return ir.Identity{}, fmt.Errorf("load payer: %w", err)
	}
	return ir.ParseIdentity(payer)
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
