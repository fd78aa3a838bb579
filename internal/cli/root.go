package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/favnum/internal/config"
	"github.com/roach88/favnum/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Driver     string
	DB         string
	Key        string
	Keyring    string

	// Config is the effective configuration, resolved before any
	// subcommand runs.
	Config config.Config

	// Logger is configured from --verbose, --format and log_level.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the favnum CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "favnum",
		Short:   "favnum - a favorite number registry",
		Version: ir.Version,
		Long: `favnum keeps one number per identity in a keyed record store.

Every identity may set its own record. A single admin, installed once by
"favnum init", may overwrite any existing record. Records live at addresses
derived deterministically from the owner's identity.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if err := opts.resolveConfig(cmd); err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			opts.Logger = newLogger(cmd, opts)
			slog.SetDefault(opts.Logger)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "path to config file")
	flags.StringVar(&opts.Driver, "driver", "", "record store driver (sqlite|postgres|memory)")
	flags.StringVar(&opts.DB, "db", "", "SQLite database path or PostgreSQL DSN")
	flags.StringVar(&opts.Key, "key", "", "signing key alias or key file path")
	flags.StringVar(&opts.Keyring, "keyring", "", "keyring directory")

	// Add subcommands
	cmd.AddCommand(NewKeygenCommand(opts))
	cmd.AddCommand(NewKeysCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSetCommand(opts))
	cmd.AddCommand(NewGetCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewAddressCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolveConfig layers flags over the file and environment settings.
func (o *RootOptions) resolveConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Driver = o.Driver
	}
	if flags.Changed("db") {
		cfg.DB = o.DB
	}
	if flags.Changed("key") {
		cfg.Key = o.Key
	}
	if flags.Changed("keyring") {
		cfg.Keyring = o.Keyring
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.Config = cfg
	return nil
}

// newLogger writes diagnostics to stderr so they never mix with command
// output. JSON output gets JSON logs.
func newLogger(cmd *cobra.Command, opts *RootOptions) *slog.Logger {
	level := parseLevel(opts.Config.LogLevel)
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.Format == "json" {
		return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	}
	return slog.LevelWarn
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
