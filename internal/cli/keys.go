package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/favnum/internal/auth"
	"github.com/roach88/favnum/internal/ir"
)

// keyView is the output of keygen and whoami.
type keyView struct {
	Alias    string      `json:"alias,omitempty"`
	Identity ir.Identity `json:"identity"`
}

func (v keyView) String() string {
	if v.Alias == "" {
		return v.Identity.String()
	}
	return fmt.Sprintf("%s %s", v.Alias, v.Identity)
}

// NewKeygenCommand creates the keygen command.
func NewKeygenCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <alias>",
		Short: "Create a signing key in the keyring",
		Long: `Create a new ed25519 signing key and store it in the keyring under alias.

The key's public half is the identity used by every registry operation.
Existing aliases are never overwritten.

Example:
  favnum keygen alice
  favnum --keyring ./keys keygen ops-admin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			kr := rootOpts.keyring()

			id, err := kr.Create(args[0])
			if err != nil {
				return f.Fail(err)
			}
			alias, _ := auth.NormalizeAlias(args[0])
			rootOpts.logger().Info("key created", "alias", alias, "keyring", kr.Dir())
			return f.Success(keyView{Alias: alias, Identity: id})
		},
	}
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List keys in the keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			entries, err := rootOpts.keyring().List()
			if err != nil {
				return f.Fail(err)
			}
			if f.Format == "json" {
				if entries == nil {
					entries = []auth.KeyEntry{}
				}
				return f.Success(entries)
			}

			if len(entries) == 0 {
				return f.Success("No keys.")
			}
			lines := make([]string, len(entries))
			for i, e := range entries {
				lines[i] = keyView{Alias: e.Alias, Identity: e.Identity}.String()
			}
			return f.Success(strings.Join(lines, "\n"))
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the identity of the active key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := rootOpts.caller()
			if err != nil {
				return err
			}
			return rootOpts.formatter(cmd).Success(keyView{Identity: id})
		},
	}
}

// addressView is the output of the address command.
type addressView struct {
	Identity ir.Identity `json:"identity"`
	Address  ir.Address  `json:"address"`
	Nonce    ir.Nonce    `json:"nonce"`
}

func (v addressView) String() string {
	return fmt.Sprintf("address=%s nonce=%d", v.Address, v.Nonce)
}

// NewAddressCommand creates the address command.
func NewAddressCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "address <identity|alias>",
		Short: "Print the derived record address for an identity",
		Long: `Print the record address and nonce derived from an identity.

The derivation is pure: it needs no database and always yields the same
address for the same identity.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)

			id, err := rootOpts.resolve(args[0])
			if err != nil {
				return err
			}
			addr, nonce, err := ir.UserRecordAddress(id)
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(addressView{Identity: id, Address: addr, Nonce: nonce})
		},
	}
}
