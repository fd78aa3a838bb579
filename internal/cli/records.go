package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/favnum/internal/ir"
)

// recordView is the output of set, get and reset.
type recordView struct {
	Owner ir.Identity `json:"owner"`
	Value uint64      `json:"value"`
}

func (v recordView) String() string {
	return fmt.Sprintf("owner=%s value=%d", v.Owner, v.Value)
}

// configView is the output of init and config.
type configView struct {
	Admin ir.Identity `json:"admin"`
}

func (v configView) String() string {
	return fmt.Sprintf("admin=%s", v.Admin)
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Install the active key as registry admin",
		Long: `Install the active key's identity as the registry admin.

Succeeds exactly once per database. Later attempts fail with
ALREADY_INITIALIZED and leave the admin unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := rootOpts.caller()
			if err != nil {
				return err
			}
			s, err := rootOpts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			f := rootOpts.formatter(cmd)
			ctx, reqID := requestContext(cmd.Context())
			cfg, err := s.registry.Initialize(ctx, caller)
			if err != nil {
				return f.Fail(err)
			}
			return f.SuccessWithRequest(reqID, configView{Admin: cfg.Admin})
		},
	}
}

// NewSetCommand creates the set command.
func NewSetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <value>",
		Short: "Set your own favorite number",
		Long: `Create or overwrite the active identity's record.

The record is always the caller's own: there is no way to name another
identity.

Example:
  favnum --key alice set 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := parseValue(args[0])
			if err != nil {
				return err
			}
			caller, err := rootOpts.caller()
			if err != nil {
				return err
			}
			s, err := rootOpts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			f := rootOpts.formatter(cmd)
			ctx, reqID := requestContext(cmd.Context())
			rec, err := s.registry.SetOwnRecord(ctx, caller, value)
			if err != nil {
				return f.Fail(err)
			}
			return f.SuccessWithRequest(reqID, recordView{Owner: rec.Owner, Value: rec.Value})
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <identity|alias>",
		Short: "Read an identity's favorite number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := rootOpts.resolve(args[0])
			if err != nil {
				return err
			}
			s, err := rootOpts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			f := rootOpts.formatter(cmd)
			ctx, reqID := requestContext(cmd.Context())
			rec, err := s.registry.ReadRecord(ctx, target)
			if err != nil {
				return f.Fail(err)
			}
			return f.SuccessWithRequest(reqID, recordView{Owner: rec.Owner, Value: rec.Value})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <identity|alias> <value>",
		Short: "Overwrite any existing record (admin only)",
		Long: `Overwrite another identity's value as the registry admin.

Fails with NOT_INITIALIZED before "favnum init", UNAUTHORIZED when the active
key is not the admin, and NOT_FOUND when the target never set a value.

Example:
  favnum --key admin reset bob 9`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := rootOpts.resolve(args[0])
			if err != nil {
				return err
			}
			value, err := parseValue(args[1])
			if err != nil {
				return err
			}
			caller, err := rootOpts.caller()
			if err != nil {
				return err
			}
			s, err := rootOpts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			f := rootOpts.formatter(cmd)
			ctx, reqID := requestContext(cmd.Context())
			rec, err := s.registry.AdminResetRecord(ctx, caller, target, value)
			if err != nil {
				return f.Fail(err)
			}
			return f.SuccessWithRequest(reqID, recordView{Owner: rec.Owner, Value: rec.Value})
		},
	}
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	var showSettings bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the registry admin",
		Long: `Show the registry's global config (its admin).

With --settings, print the CLI's effective settings instead, after layering
defaults, the config file, FAVNUM_* environment variables and flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if showSettings {
				if f.Format == "json" {
					return f.Success(rootOpts.Config)
				}
				c := rootOpts.Config
				return f.Success(fmt.Sprintf("driver=%s\ndb=%s\nkey=%s\nkeyring=%s\nnats_url=%s\nlog_level=%s",
					c.Driver, c.DB, c.Key, c.Keyring, c.NATSURL, c.LogLevel))
			}

			s, err := rootOpts.openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			ctx, reqID := requestContext(cmd.Context())
			cfg, err := s.registry.ReadConfig(ctx)
			if err != nil {
				return f.Fail(err)
			}
			return f.SuccessWithRequest(reqID, configView{Admin: cfg.Admin})
		},
	}

	cmd.Flags().BoolVar(&showSettings, "settings", false, "print effective CLI settings")
	return cmd
}
