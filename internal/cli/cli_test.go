package cli_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nainai/backend/internal/app"
	"nainai/backend/internal/cli"
	"nainai/backend/internal/store/memory"
)

// shop keeps one repository alive across command runs.
type shop struct {
	repo *memory.Store
}

func newShop() *shop {
	return &shop{repo: memory.New()}
}

func (s *shop) open(context.Context) (*app.App, error) {
	return app.FromRepository(s.repo), nil
}

func (s *shop) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest(s.open)
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func (s *shop) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := s.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// stockMilkTea creates ingredients 1 (tea) and 2 (milk) and product 1.
func (s *shop) stockMilkTea(t *testing.T) {
	t.Helper()
	s.mustRun(t, "ingredient", "add", "Black Tea", "--stock", "1", "--unit", "kg", "--threshold", "0.2")
	s.mustRun(t, "ingredient", "add", "Milk", "--stock", "2", "--unit", "L", "--threshold", "0.5")
	s.mustRun(t, "product", "add", "Milk Tea", "4.50")
	s.mustRun(t, "recipe", "set", "1", "1=0.05", "2=0.3")
}

func TestVersionCommand(t *testing.T) {
	out := newShop().mustRun(t, "version")
	assert.Contains(t, out, "nainai")
}

func TestIngredientCommands(t *testing.T) {
	s := newShop()

	out := s.mustRun(t, "ingredient", "add", "Oat Milk", "--stock", "3", "--unit", "L", "--threshold", "1")
	assert.Contains(t, out, "ingredient 'Oat Milk' added")

	_, err := s.run(t, "ingredient", "add", "Oat Milk", "--unit", "L")
	require.EqualError(t, err, "ingredient 'Oat Milk' already exists")

	out = s.mustRun(t, "ing", "spoil", "1", "2.5")
	assert.Contains(t, out, "stock updated")
	assert.Contains(t, out, "Oat Milk: 0.50 L")
	assert.Contains(t, out, "(low stock!)")

	out = s.mustRun(t, "ingredient", "movements", "1")
	assert.Contains(t, out, "spoilage")
	assert.Contains(t, out, "-2.5")

	out = s.mustRun(t, "ingredient", "low")
	assert.Contains(t, out, "Oat Milk")

	_, err = s.run(t, "ingredient", "purchase", "1", "0")
	require.EqualError(t, err, "quantity must be positive")

	_, err = s.run(t, "ingredient", "adjust", "abc", "1")
	require.Error(t, err)
}

func TestSellAndReports(t *testing.T) {
	s := newShop()
	s.stockMilkTea(t)

	out := s.mustRun(t, "sell", "1", "2")
	assert.Contains(t, out, "sale completed, total: 9.00")

	out = s.mustRun(t, "order", "Milk Tea", "4")
	assert.Contains(t, out, "sale completed, total: 18.00")

	// 0.2 L of milk is left; one more cup needs 0.3 L.
	_, err := s.run(t, "sell", "1", "1")
	require.EqualError(t, err, "insufficient stock: Milk")

	_, err = s.run(t, "order", "Milk Tea", "0")
	require.EqualError(t, err, "quantity must be a positive integer")

	out = s.mustRun(t, "report", "today")
	assert.Contains(t, out, "- orders: 2")
	assert.Contains(t, out, "- revenue: 27.00")

	out = s.mustRun(t, "report", "ranking")
	assert.Contains(t, out, "1. Milk Tea - sold: 6, revenue: 27.00")

	out = s.mustRun(t, "report", "recent", "--limit", "1")
	assert.Contains(t, out, "Milk Tea x4 = 18.00")
	assert.NotContains(t, out, "x2")

	out = s.mustRun(t, "report", "inventory")
	assert.Contains(t, out, "Milk: 0.20 L (low stock!)")
}

func TestProductAndRecipeCommands(t *testing.T) {
	s := newShop()
	s.stockMilkTea(t)

	_, err := s.run(t, "product", "add", "Free Water", "0")
	require.EqualError(t, err, "price must be positive")

	out := s.mustRun(t, "product", "attr", "1", "flavor", "creamy")
	assert.Contains(t, out, "attribute 'flavor: creamy' added")
	out = s.mustRun(t, "product", "attrs", "1")
	assert.Contains(t, out, "creamy")

	out = s.mustRun(t, "recipe", "show", "1")
	assert.Contains(t, out, "Black Tea: 0.05 kg")
	assert.Contains(t, out, "Milk: 0.3 L")

	_, err = s.run(t, "recipe", "set", "1", "1=0.05", "1=0.1")
	require.EqualError(t, err, "recipe lists the same ingredient more than once")

	_, err = s.run(t, "recipe", "set", "1", "9=0.1")
	require.EqualError(t, err, "ingredient not found")

	_, err = s.run(t, "recipe", "set", "1", "nonsense")
	require.Error(t, err)

	out = s.mustRun(t, "product", "list")
	assert.Contains(t, out, "Milk Tea")
	assert.Contains(t, out, "4.50")
}

func TestRecipeExport(t *testing.T) {
	s := newShop()
	s.stockMilkTea(t)

	out := s.mustRun(t, "recipe", "export", "--out", "-")
	assert.Contains(t, out, "product id,product name,ingredient name,quantity needed,unit")
	assert.Contains(t, out, "1,Milk Tea,Milk,0.3,L")

	path := filepath.Join(t.TempDir(), "recipes.csv")
	s.mustRun(t, "recipe", "export", "-o", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Black Tea")
}

func TestRecommendCommand(t *testing.T) {
	s := newShop()
	s.stockMilkTea(t)
	s.mustRun(t, "product", "attr", "1", "flavor", "creamy")

	out := s.mustRun(t, "recommend", "something", "creamy")
	assert.Contains(t, out, "Milk Tea")
	assert.Contains(t, out, "flavor: creamy")
}

func TestSeedCommand(t *testing.T) {
	s := newShop()

	out := s.mustRun(t, "seed")
	assert.Contains(t, out, "seeded")

	_, err := s.run(t, "seed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed memory store")
}
