package cli

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/favnum/internal/auth"
	"github.com/roach88/favnum/internal/config"
	"github.com/roach88/favnum/internal/events"
	"github.com/roach88/favnum/internal/ir"
	"github.com/roach88/favnum/internal/registry"
	"github.com/roach88/favnum/internal/store"
)

// session is everything a registry command needs, opened from the
// effective config and released by close.
type session struct {
	registry *registry.Registry
	closers  []func() error
}

func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// openSession opens the configured store and event publisher.
func (o *RootOptions) openSession(ctx context.Context) (*session, error) {
	s := &session{}

	st, err := o.openStore(ctx, s)
	if err != nil {
		return nil, err
	}

	var pub events.Publisher = events.NoopPublisher{}
	if o.Config.NATSURL != "" {
		np, err := events.NewNATSPublisher(o.Config.NATSURL)
		if err != nil {
			s.close()
			return nil, WrapExitError(ExitCommandError, "failed to connect to NATS", err)
		}
		pub = np
		s.closers = append(s.closers, np.Close)
	}

	s.registry = registry.New(st,
		registry.WithPublisher(pub),
		registry.WithLogger(o.logger()),
	)
	return s, nil
}

func (o *RootOptions) openStore(ctx context.Context, s *session) (registry.Store, error) {
	cfg := o.Config
	switch cfg.Driver {
	case config.DriverMemory:
		return store.NewMemory(), nil
	case config.DriverPostgres:
		st, err := store.OpenPostgres(ctx, cfg.DB)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.closers = append(s.closers, st.Close)
		return st, nil
	default:
		if dir := filepath.Dir(cfg.DB); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
			}
		}
		st, err := store.Open(cfg.DB)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		s.closers = append(s.closers, st.Close)
		return st, nil
	}
}

func (o *RootOptions) keyring() *auth.Keyring {
	return auth.NewKeyring(o.Config.Keyring)
}

// signingKey loads the active key. Key names an existing file or a keyring
// alias.
func (o *RootOptions) signingKey() (ed25519.PrivateKey, error) {
	ref := o.Config.Key
	if ref == "" {
		return nil, NewExitError(ExitCommandError, "no signing key: pass --key or set FAVNUM_KEY")
	}
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		priv, err := auth.LoadKeyFile(ref)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load key", err)
		}
		return priv, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, WrapExitError(ExitCommandError, "failed to load key", err)
	}

	priv, err := o.keyring().Load(ref)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load key", err)
	}
	return priv, nil
}

// caller authenticates the active key through a signed token and returns
// the verified identity.
func (o *RootOptions) caller() (ir.Identity, error) {
	priv, err := o.signingKey()
	if err != nil {
		return ir.Identity{}, err
	}
	id, err := auth.Authenticate(priv, auth.TokenOptions{})
	if err != nil {
		return ir.Identity{}, WrapExitError(ExitCommandError, "authentication failed", err)
	}
	return id, nil
}

// resolve maps a hex identity or keyring alias to an identity.
func (o *RootOptions) resolve(ref string) (ir.Identity, error) {
	id, err := o.keyring().Resolve(ref)
	if err != nil {
		return ir.Identity{}, WrapExitError(ExitCommandError, "unknown identity", err)
	}
	return id, nil
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// requestContext tags ctx with a fresh request ID.
func requestContext(ctx context.Context) (context.Context, string) {
	id := registry.NewRequestID()
	return registry.WithRequestID(ctx, id), id
}

func parseValue(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid value %q: want an unsigned 64-bit integer", s))
	}
	return v, nil
}
