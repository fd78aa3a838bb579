package registry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/roach88/favnum/internal/events"
	"github.com/roach88/favnum/internal/ir"
	"github.com/roach88/favnum/internal/store"
)

// Initialize installs caller as the admin.
//
// The GlobalConfig singleton is created with create-if-absent at its fixed
// derived address, so at most one Initialize ever succeeds. Later calls fail
// with CodeAlreadyInitialized (which also matches ir.ErrAlreadyExists) and
// leave the original admin in place.
func (r *Registry) Initialize(ctx context.Context, caller ir.Identity) (cfg ir.GlobalConfig, err error) {
	const op = "initialize"
	ctx, span, logger := r.start(ctx, op, identityAttr("favnum.caller", caller))
	defer func() { r.end(ctx, span, logger, err) }()

	addr, _, err := ir.ConfigAddress()
	if err != nil {
		return ir.GlobalConfig{}, fmt.Errorf("%s: derive config address: %w", op, err)
	}
	span.SetAttributes(attribute.String("favnum.address", addr.String()))

	cfg = ir.GlobalConfig{Admin: caller}
	data, err := cfg.MarshalBinary()
	if err != nil {
		return ir.GlobalConfig{}, fmt.Errorf("%s: encode config: %w", op, err)
	}

	err = r.store.Update(ctx, func(tx store.Tx) error {
		_, err := tx.CreateIfAbsent(ctx, addr, ir.GlobalConfigSize, data, caller)
		if errors.Is(err, ir.ErrAlreadyExists) {
			return ir.NewRecordError(ir.CodeAlreadyInitialized, op, addr, "")
		}
		return err
	})
	if err != nil {
		return ir.GlobalConfig{}, err
	}

	r.publish(ctx, logger, events.TopicConfigInitialized, events.ConfigInitialized{
		Address: addr,
		Admin:   caller,
	})
	return cfg, nil
}

// SetOwnRecord creates or overwrites the caller's own record.
//
// The record address is derived from caller and nothing else, so this
// operation can only ever write the caller's record. On creation owner is
// set to caller; on overwrite only value changes. If creation loses a race
// to a concurrent first write, the operation retries as an overwrite.
func (r *Registry) SetOwnRecord(ctx context.Context, caller ir.Identity, value uint64) (rec ir.UserRecord, err error) {
	const op = "set own record"
	ctx, span, logger := r.start(ctx, op, identityAttr("favnum.caller", caller))
	defer func() { r.end(ctx, span, logger, err) }()

	addr, _, err := ir.UserRecordAddress(caller)
	if err != nil {
		return ir.UserRecord{}, fmt.Errorf("%s: derive record address: %w", op, err)
	}
	span.SetAttributes(attribute.String("favnum.address", addr.String()))

	var created bool
	err = r.store.Update(ctx, func(tx store.Tx) error {
		created = false
		h, data, err := tx.Load(ctx, addr)
		if errors.Is(err, ir.ErrNotFound) {
			rec = ir.UserRecord{Owner: caller, Value: value}
			initial, encErr := rec.MarshalBinary()
			if encErr != nil {
				return fmt.Errorf("%s: encode record: %w", op, encErr)
			}
			_, err = tx.CreateIfAbsent(ctx, addr, ir.UserRecordSize, initial, caller)
			if err == nil {
				created = true
				return nil
			}
			if !errors.Is(err, ir.ErrAlreadyExists) {
				return err
			}
			logger.DebugContext(ctx, "lost creation race, overwriting", "address", addr)
			h, data, err = tx.Load(ctx, addr)
		}
		if err != nil {
			return err
		}

		rec, err = decodeUserRecord(addr, data)
		if err != nil {
			return err
		}
		rec.Value = value
		return storeUserRecord(ctx, tx, h, rec)
	})
	if err != nil {
		return ir.UserRecord{}, err
	}

	r.publish(ctx, logger, events.TopicRecordUpdated, events.RecordUpdated{
		Address: addr,
		Owner:   rec.Owner,
		Value:   rec.Value,
		By:      caller,
		Created: created,
	})
	return rec, nil
}

// ReadRecord returns target's record. Anyone may read any record.
func (r *Registry) ReadRecord(ctx context.Context, target ir.Identity) (rec ir.UserRecord, err error) {
	const op = "read record"
	ctx, span, logger := r.start(ctx, op, identityAttr("favnum.target", target))
	defer func() { r.end(ctx, span, logger, err) }()

	addr, _, err := ir.UserRecordAddress(target)
	if err != nil {
		return ir.UserRecord{}, fmt.Errorf("%s: derive record address: %w", op, err)
	}
	span.SetAttributes(attribute.String("favnum.address", addr.String()))

	err = r.store.View(ctx, func(tx store.Tx) error {
		_, data, err := tx.Load(ctx, addr)
		if err != nil {
			return err
		}
		rec, err = decodeUserRecord(addr, data)
		return err
	})
	if err != nil {
		return ir.UserRecord{}, err
	}
	return rec, nil
}

// AdminResetRecord overwrites target's value on behalf of the admin.
//
// Preconditions are checked in order: GlobalConfig exists
// (CodeNotInitialized), caller equals GlobalConfig.Admin (CodeUnauthorized),
// target's record exists (CodeNotFound). The record's owner never changes.
func (r *Registry) AdminResetRecord(ctx context.Context, caller, target ir.Identity, value uint64) (rec ir.UserRecord, err error) {
	const op = "admin reset record"
	ctx, span, logger := r.start(ctx, op,
		identityAttr("favnum.caller", caller),
		identityAttr("favnum.target", target),
	)
	defer func() { r.end(ctx, span, logger, err) }()

	cfgAddr, _, err := ir.ConfigAddress()
	if err != nil {
		return ir.UserRecord{}, fmt.Errorf("%s: derive config address: %w", op, err)
	}
	addr, _, err := ir.UserRecordAddress(target)
	if err != nil {
		return ir.UserRecord{}, fmt.Errorf("%s: derive record address: %w", op, err)
	}
	span.SetAttributes(attribute.String("favnum.address", addr.String()))

	err = r.store.Update(ctx, func(tx store.Tx) error {
		cfg, err := loadConfig(ctx, tx, op, cfgAddr)
		if err != nil {
			return err
		}
		if cfg.Admin != caller {
			return ir.NewRecordError(ir.CodeUnauthorized, op, cfgAddr, "")
		}

		h, data, err := tx.Load(ctx, addr)
		if err != nil {
			return err
		}
		rec, err = decodeUserRecord(addr, data)
		if err != nil {
			return err
		}
		rec.Value = value
		return storeUserRecord(ctx, tx, h, rec)
	})
	if err != nil {
		return ir.UserRecord{}, err
	}

	r.publish(ctx, logger, events.TopicRecordUpdated, events.RecordUpdated{
		Address: addr,
		Owner:   rec.Owner,
		Value:   rec.Value,
		By:      caller,
	})
	return rec, nil
}

// ReadConfig returns the GlobalConfig singleton.
func (r *Registry) ReadConfig(ctx context.Context) (cfg ir.GlobalConfig, err error) {
	const op = "read config"
	ctx, span, logger := r.start(ctx, op)
	defer func() { r.end(ctx, span, logger, err) }()

	addr, _, err := ir.ConfigAddress()
	if err != nil {
		return ir.GlobalConfig{}, fmt.Errorf("%s: derive config address: %w", op, err)
	}

	err = r.store.View(ctx, func(tx store.Tx) error {
		cfg, err = loadConfig(ctx, tx, op, addr)
		return err
	})
	if err != nil {
		return ir.GlobalConfig{}, err
	}
	return cfg, nil
}

// loadConfig reads GlobalConfig, mapping an absent record to NotInitialized.
func loadConfig(ctx context.Context, tx store.Tx, op string, addr ir.Address) (ir.GlobalConfig, error) {
	_, data, err := tx.Load(ctx, addr)
	if errors.Is(err, ir.ErrNotFound) {
		return ir.GlobalConfig{}, ir.NewRecordError(ir.CodeNotInitialized, op, addr, "")
	}
	if err != nil {
		return ir.GlobalConfig{}, err
	}

	var cfg ir.GlobalConfig
	if err := cfg.UnmarshalBinary(data); err != nil {
		return ir.GlobalConfig{}, withAddress(err, addr)
	}
	return cfg, nil
}

func decodeUserRecord(addr ir.Address, data []byte) (ir.UserRecord, error) {
	var rec ir.UserRecord
	if err := rec.UnmarshalBinary(data); err != nil {
		return ir.UserRecord{}, withAddress(err, addr)
	}
	return rec, nil
}

func storeUserRecord(ctx context.Context, tx store.Tx, h store.Handle, rec ir.UserRecord) error {
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return tx.Store(ctx, h, data)
}

// withAddress stamps addr on a decode error, which has none of its own.
func withAddress(err error, addr ir.Address) error {
	var re *ir.RecordError
	if errors.As(err, &re) && re.Address.IsZero() {
		re.Address = addr
	}
	return err
}
