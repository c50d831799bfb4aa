package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shopfront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCustomers struct {
	roles map[string]model.Role
}

func (f *fakeCustomers) SetRole(_ context.Context, email string, role model.Role) error {
	if _, ok := f.roles[email]; !ok {
		return model.NewNotFoundError("Customer")
	}
	f.roles[email] = role
	return nil
}

type fakeProducts struct {
	created []model.Product
}

func (f *fakeProducts) Create(_ context.Context, p *model.Product) error {
	p.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *p)
	return nil
}

type fakeOrders []model.Order

func (f fakeOrders) ListAll(context.Context) ([]model.Order, error) {
	return f, nil
}

type fakePayments struct {
	report *model.ReconcileReport
	err    error
}

func (f fakePayments) Reconcile(context.Context) (*model.ReconcileReport, error) {
	return f.report, f.err
}

type fixture struct {
	backend   *Backend
	customers *fakeCustomers
	products  *fakeProducts
	migrated  bool
	closed    bool
	openErr   error
}

func newFixture() *fixture {
	f := &fixture{
		customers: &fakeCustomers{roles: map[string]model.Role{"jane@example.com": model.RoleCustomer}},
		products:  &fakeProducts{},
	}
	f.backend = &Backend{
		Migrate: func(context.Context) error {
			f.migrated = true
			return nil
		},
		ServerVersion: func(context.Context) (string, error) { return "16.4", nil },
		Customers:     f.customers,
		Products:      f.products,
		Orders: fakeOrders{{
			ID: 1, CustomerID: 7, ProductName: "Blue Shirt", Quantity: 2,
			Price: decimal.RequireFromString("1500.5"), Status: model.OrderPending,
			PaymentID: "PAY-1", CreatedAt: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		}},
		Payments: fakePayments{report: &model.ReconcileReport{Checked: 3, Refunded: 2, Failed: 1}},
		Close:    func() { f.closed = true },
	}
	return f
}

func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommandWithOpener(func(context.Context, zerolog.Logger) (*Backend, error) {
		if f.openErr != nil {
			return nil, f.openErr
		}
		return f.backend, nil
	})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "shopctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"migrate", "ping", "grant-admin", "revoke-admin", "seed", "orders", "reconcile"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestInvalidFormat(t *testing.T) {
	_, err := newFixture().run(t, "ping", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestMigrateAndPing(t *testing.T) {
	f := newFixture()

	out, err := f.run(t, "migrate")
	require.NoError(t, err)
	assert.True(t, f.migrated)
	assert.True(t, f.closed)
	assert.Equal(t, "schema applied\n", out)

	out, err = f.run(t, "ping", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"serverVersion":"16.4"}`, out)
}

func TestOpenFailure(t *testing.T) {
	f := newFixture()
	f.openErr = errors.New("connection refused")

	_, err := f.run(t, "migrate")
	assert.EqualError(t, err, "connection refused")
	assert.False(t, f.migrated)
}

func TestRoleCommands(t *testing.T) {
	f := newFixture()

	out, err := f.run(t, "grant-admin", "--email", " Jane@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, f.customers.roles["jane@example.com"])
	assert.Contains(t, out, "jane@example.com is now admin")

	_, err = f.run(t, "revoke-admin", "--email", "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, f.customers.roles["jane@example.com"])

	_, err = f.run(t, "grant-admin", "--email", "nobody@example.com")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.run(t, "grant-admin")
	assert.EqualError(t, err, "--email is required")
}

func TestSeedCommand(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`products:
  - name: Blue Shirt
    current_price: 1500.50
    previous_price: 1800
    stock: 12
    flash_sale: true
  - name: Red Hat
    current_price: "250"
    stock: 3
`), 0o600))

	f := newFixture()
	out, err := f.run(t, "seed", "--file", file, "--format", "json")
	require.NoError(t, err)
	require.Len(t, f.products.created, 2)
	assert.Equal(t, "Blue Shirt", f.products.created[0].Name)

	var seeded []model.Product
	require.NoError(t, json.Unmarshal([]byte(out), &seeded))
	assert.Equal(t, int64(2), seeded[1].ID)

	_, err = f.run(t, "seed", "--file", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestOrdersCommand(t *testing.T) {
	f := newFixture()

	out, err := f.run(t, "orders")
	require.NoError(t, err)
	assert.Contains(t, out, "Blue Shirt")
	assert.Contains(t, out, "1500.50")
	assert.Contains(t, out, "PAY-1")

	out, err = f.run(t, "orders", "--format", "json")
	require.NoError(t, err)
	var orders []model.Order
	require.NoError(t, json.Unmarshal([]byte(out), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, model.OrderPending, orders[0].Status)
}

func TestReconcileCommand(t *testing.T) {
	f := newFixture()

	out, err := f.run(t, "reconcile")
	require.NoError(t, err)
	assert.Equal(t, "checked 3, refunded 2, failed 1\n", out)

	f.backend.Payments = fakePayments{err: errors.New("database down")}
	_, err = f.run(t, "reconcile")
	assert.EqualError(t, err, "database down")
}
