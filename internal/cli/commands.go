package cli

import (
	"fmt"
	"io"
	"strings"

	"shopfront/internal/model"
	"shopfront/internal/seed"

	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RoleChange is the role a role command assigns.
type RoleChange model.Role

const (
	RoleAdminGrant  = RoleChange(model.RoleAdmin)
	RoleAdminRevoke = RoleChange(model.RoleCustomer)
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "migrate",
		Short:        "Apply the database schema",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(b *Backend, _ zerolog.Logger) error {
				if err := b.Migrate(cmd.Context()); err != nil {
					return err
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(map[string]string{"status": "migrated"}, Line("schema applied"))
			})
		},
	}
}

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "ping",
		Short:        "Check database connectivity",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(b *Backend, _ zerolog.Logger) error {
				version, err := b.ServerVersion(cmd.Context())
				if err != nil {
					return err
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(map[string]string{"serverVersion": version}, Line("PostgreSQL %s", version))
			})
		},
	}
}

// NewRoleCommand creates a command that sets a customer's role by email.
func NewRoleCommand(rootOpts *RootOptions, use, short string, role RoleChange) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.ToLower(strings.TrimSpace(email))
			if email == "" {
				return fmt.Errorf("--email is required")
			}

			return withBackend(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(b *Backend, _ zerolog.Logger) error {
				if err := b.Customers.SetRole(cmd.Context(), email, model.Role(role)); err != nil {
					return fmt.Errorf("%s: %w", email, err)
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(
					map[string]string{"email": email, "role": string(role)},
					Line("%s is now %s", email, role),
				)
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "customer email address")
	return cmd
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products from a YAML catalogue",
		Long: `Load products from a YAML catalogue file.

The whole file is validated before anything is written.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			catalog, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			return withBackend(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(b *Backend, logger zerolog.Logger) error {
				created, err := seed.Apply(cmd.Context(), b.Products, catalog, logger)
				if err != nil {
					return fmt.Errorf("seeded %d product(s) before failing: %w", len(created), err)
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(created, Line("seeded %d product(s)", len(created)))
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalogue YAML file")
	return cmd
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "orders",
		Short:        "List all orders, newest first",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(b *Backend, _ zerolog.Logger) error {
				orders, err := b.Orders.ListAll(cmd.Context())
				if err != nil {
					return err
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(orders, func(w io.Writer) error {
					return renderOrders(w, orders)
				})
			})
		},
	}
}

func renderOrders(w io.Writer, orders []model.Order) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Customer", "Product", "Qty", "Price", "Status", "Payment", "Created")
	for _, o := range orders {
		if err := table.Append([]string{
			fmt.Sprint(o.ID),
			fmt.Sprint(o.CustomerID),
			o.ProductName,
			fmt.Sprint(o.Quantity),
			o.Price.StringFixed(2),
			string(o.Status),
			o.PaymentID,
			o.CreatedAt.Format("2006-01-02 15:04"),
		}); err != nil {
			return fmt.Errorf("failed to render orders: %w", err)
		}
	}
	return table.Render()
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Retry refunds that previously failed",
		Long: `Retry refunds for charges that were taken but could not be turned
into orders, and whose first refund attempt failed.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd.Context(), rootOpts, cmd.ErrOrStderr(), func(b *Backend, _ zerolog.Logger) error {
				report, err := b.Payments.Reconcile(cmd.Context())
				if err != nil {
					return err
				}
				out := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}
				return out.Success(report, Line("checked %d, refunded %d, failed %d",
					report.Checked, report.Refunded, report.Failed))
			})
		},
	}
}
