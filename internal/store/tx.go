package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/favnum/internal/ir"
)

// ErrReadOnly is returned by write primitives inside View.
var ErrReadOnly = errors.New("write in read-only transaction")

// Handle identifies a record bound inside a transaction.
type Handle struct {
	Address ir.Address
	Size    int
}

// Tx is the set of record primitives available inside a transaction.
type Tx interface {
	// CreateIfAbsent allocates a size-byte record at addr charged to payer
	// and initializes it to initial. Fails with ir.ErrAlreadyExists if addr
	// is occupied and ir.ErrSizeMismatch if len(initial) != size.
	CreateIfAbsent(ctx context.Context, addr ir.Address, size int, initial []byte, payer ir.Identity) (Handle, error)

	// Load returns the record at addr. Fails with ir.ErrNotFound if absent.
	Load(ctx context.Context, addr ir.Address) (Handle, []byte, error)

	// Store overwrites the record bound to h. Fails with ir.ErrSizeMismatch
	// if len(data) != h.Size.
	Store(ctx context.Context, h Handle, data []byte) error
}

func sizeMismatch(op string, addr ir.Address, got, want int) error {
	return ir.NewRecordError(ir.CodeSizeMismatch, op, addr, fmt.Sprintf("got %d bytes, want %d", got, want))
}
