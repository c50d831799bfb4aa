// Package cli implements shopctl, the operator command line for the shop's
// database: schema migration, role changes, catalogue seeding, order listing
// and payment reconciliation.
package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command backed by the configured database.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWithOpener(OpenBackend)
}

// NewRootCommandWithOpener creates the root command with a custom backend
// opener.
func NewRootCommandWithOpener(open Opener) *cobra.Command {
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "shopctl",
		Short: "shopctl - shop operations",
		Long:  "Operator commands for the shop database and payment ledger.",
		// main prints the returned error once.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewRoleCommand(opts, "grant-admin", "Give a customer the admin role", RoleAdminGrant))
	cmd.AddCommand(NewRoleCommand(opts, "revoke-admin", "Return an admin to the customer role", RoleAdminRevoke))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewOrdersCommand(opts))
	cmd.AddCommand(NewReconcileCommand(opts))

	return cmd
}
