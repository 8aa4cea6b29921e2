package checkout

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"shopcart/internal/domain/catalog"
	"shopcart/internal/domain/pricing"
	"shopcart/internal/infrastructure/persistence/file"
)

type checkoutTestContext struct {
	dir      string
	products []catalog.Product
	svc      *Service
	receipt  *Receipt
	err      error
}

func (c *checkoutTestContext) reset() error {
	c.cleanup()
	dir, err := os.MkdirTemp("", "shopcart-features-*")
	if err != nil {
		return err
	}
	c.dir = dir
	c.products = nil
	c.svc = nil
	c.receipt = nil
	c.err = nil
	return nil
}

func (c *checkoutTestContext) cleanup() {
	if c.dir != "" {
		_ = os.RemoveAll(c.dir)
		c.dir = ""
	}
}

// open builds a service over the snapshot files in dir, as a fresh process would.
func (c *checkoutTestContext) open() error {
	cat, err := catalog.NewInMemory(c.products)
	if err != nil {
		return err
	}
	carts, err := file.NewCartRepository(filepath.Join(c.dir, "cart_data.avro"))
	if err != nil {
		return err
	}
	ledgers, err := file.NewLedgerRepository(filepath.Join(c.dir, "orders.avro"))
	if err != nil {
		return err
	}
	c.svc = NewService(cat, carts, ledgers, Options{Policy: pricing.DefaultPolicy(), MaxLineQuantity: 999})
	c.svc.Open(context.Background())
	return nil
}

func (c *checkoutTestContext) theSampleCatalog() error {
	c.products = catalog.DefaultProducts()
	return nil
}

func (c *checkoutTestContext) anEmptyCartAndLedger() error {
	return c.open()
}

func (c *checkoutTestContext) theCatalogAlsoSells(id, name, price string) error {
	p, err := catalog.NewProduct(id, name, decimal.RequireFromString(price))
	if err != nil {
		return err
	}
	c.products = append(c.products, p)
	return c.open()
}

func (c *checkoutTestContext) iAddOf(qty int, id string) error {
	return c.svc.AddToCart(context.Background(), id, qty)
}

func (c *checkoutTestContext) iRemove(id string) error {
	c.svc.RemoveFromCart(context.Background(), id)
	return nil
}

func (c *checkoutTestContext) iSetTheQuantityOfTo(id string, qty int) error {
	return c.svc.SetQuantity(context.Background(), id, qty)
}

func (c *checkoutTestContext) iCheckOutAs(buyer string) error {
	c.receipt, c.err = c.svc.Checkout(context.Background(), buyer)
	return nil
}

func (c *checkoutTestContext) theApplicationRestarts() error {
	return c.open()
}

func (c *checkoutTestContext) theCartHasLines(n int) error {
	if got := len(c.svc.CartView().Lines); got != n {
		return fmt.Errorf("expected %d cart lines, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	return c.theCartHasLines(0)
}

func (c *checkoutTestContext) theCartHoldsOf(qty int, id string) error {
	for _, l := range c.svc.CartView().Lines {
		if l.ProductID == id {
			if l.Quantity != qty {
				return fmt.Errorf("expected %d of %s, got %d", qty, id, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("%s is not in the cart", id)
}

func (c *checkoutTestContext) amountIs(field string) func(string) error {
	return func(want string) error {
		inv := c.svc.Invoice()
		var got decimal.Decimal
		switch field {
		case "subtotal":
			got = inv.Subtotal
		case "tax":
			got = inv.Tax
		case "shipping":
			got = inv.Shipping
		case "grand total":
			got = inv.GrandTotal
		}
		if got.StringFixed(2) != want {
			return fmt.Errorf("expected %s %s, got %s", field, want, got.StringFixed(2))
		}
		return nil
	}
}

func (c *checkoutTestContext) theCheckoutSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("checkout failed: %w", c.err)
	}
	if c.svc.CheckoutState() != StateDone {
		return fmt.Errorf("expected state done, got %s", c.svc.CheckoutState())
	}
	return nil
}

func (c *checkoutTestContext) theCheckoutFailsWith(msg string) error {
	if c.err == nil {
		return fmt.Errorf("expected checkout to fail")
	}
	if !strings.Contains(c.err.Error(), msg) {
		return fmt.Errorf("expected error containing %q, got %q", msg, c.err.Error())
	}
	if !IsValidation(c.err) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	return nil
}

func (c *checkoutTestContext) theLedgerHasOrders(n int) error {
	if got := len(c.svc.Orders()); got != n {
		return fmt.Errorf("expected %d orders, got %d", n, got)
	}
	return nil
}

func (c *checkoutTestContext) theLedgerExportShowsATotalOfFor(total, buyer string) error {
	row := fmt.Sprintf(`,"%s",`, buyer)
	for _, line := range strings.Split(c.svc.ExportLedger(), "\n") {
		if strings.Contains(line, row) && strings.HasSuffix(line, ","+total) {
			return nil
		}
	}
	return fmt.Errorf("no ledger row for %s with total %s", buyer, total)
}

func (c *checkoutTestContext) theLastOrderHoldsOf(qty int, id string) error {
	orders := c.svc.Orders()
	if len(orders) == 0 {
		return fmt.Errorf("ledger is empty")
	}
	for _, it := range orders[len(orders)-1].Items() {
		if it.ProductID == id {
			if it.Quantity != qty {
				return fmt.Errorf("expected %d of %s in the order, got %d", qty, id, it.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("%s is not in the last order", id)
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, tc.reset()
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		tc.cleanup()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the sample catalog$`, tc.theSampleCatalog)
	ctx.Step(`^an empty cart and ledger$`, tc.anEmptyCartAndLedger)
	ctx.Step(`^the catalog also sells "([^"]*)" "([^"]*)" at ([0-9.]+)$`, tc.theCatalogAlsoSells)

	// When steps
	ctx.Step(`^I add (-?\d+) of "([^"]*)"$`, tc.iAddOf)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, tc.iSetTheQuantityOfTo)
	ctx.Step(`^I check out as "([^"]*)"$`, tc.iCheckOutAs)
	ctx.Step(`^the application restarts$`, tc.theApplicationRestarts)

	// Then steps
	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
	ctx.Step(`^the cart holds (\d+) of "([^"]*)"$`, tc.theCartHoldsOf)
	ctx.Step(`^the subtotal is ([0-9.]+)$`, tc.amountIs("subtotal"))
	ctx.Step(`^the tax is ([0-9.]+)$`, tc.amountIs("tax"))
	ctx.Step(`^the shipping is ([0-9.]+)$`, tc.amountIs("shipping"))
	ctx.Step(`^the grand total is ([0-9.]+)$`, tc.amountIs("grand total"))
	ctx.Step(`^the checkout succeeds$`, tc.theCheckoutSucceeds)
	ctx.Step(`^the checkout fails with "([^"]*)"$`, tc.theCheckoutFailsWith)
	ctx.Step(`^the ledger has (\d+) orders?$`, tc.theLedgerHasOrders)
	ctx.Step(`^the ledger export shows a total of ([0-9.]+) for "([^"]*)"$`, tc.theLedgerExportShowsATotalOfFor)
	ctx.Step(`^the last order holds (\d+) of "([^"]*)"$`, tc.theLastOrderHoldsOf)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
