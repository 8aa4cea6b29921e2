// Package checkout is the command surface of the cart: every caller (CLI, HTTP
// API, tests) mutates the cart, prices it, places orders and exports CSV
// through Service.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shopcart/internal/domain/cart"
	"shopcart/internal/domain/catalog"
	"shopcart/internal/domain/order"
	"shopcart/internal/domain/pricing"
	"shopcart/internal/domain/repository"
	"shopcart/internal/infrastructure/encoding/csvexport"
	"shopcart/pkg/logger"
	"shopcart/pkg/metrics"
)

const (
	storeCart   = "cart"
	storeLedger = "ledger"
)

// Publisher receives every order once it is recorded and the cart is cleared.
type Publisher interface {
	PublishOrder(ctx context.Context, o *order.Order) error
}

type Options struct {
	Policy          pricing.Policy
	MaxLineQuantity int
	Logger          logger.Logger
	Metrics         *metrics.CheckoutMetrics
	// Publisher is optional.
	Publisher Publisher
	// Now defaults to time.Now.
	Now func() time.Time
	// Location is used for export dates, time.Local when nil.
	Location *time.Location
}

// Receipt is what a successful checkout hands back for display.
type Receipt struct {
	Order   *order.Order
	Lines   []pricing.Line
	Invoice pricing.Invoice
	Summary string
}

// CartView is the cart joined with the catalog plus its invoice.
type CartView struct {
	Lines   []pricing.Line
	Invoice pricing.Invoice
}

// Service owns the cart and the ledger. Commands run one at a time.
type Service struct {
	mu sync.Mutex

	catalog   catalog.Catalog
	carts     repository.CartRepository
	ledgers   repository.LedgerRepository
	policy    pricing.Policy
	log       logger.Logger
	metrics   *metrics.CheckoutMetrics
	publisher Publisher
	now       func() time.Time
	ids       *order.IDGenerator
	csv       *csvexport.Formatter

	cart   *cart.Cart
	ledger *order.Ledger
	state  State
	status string
}

func NewService(cat catalog.Catalog, carts repository.CartRepository, ledgers repository.LedgerRepository, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewCheckoutMetrics(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		catalog:   cat,
		carts:     carts,
		ledgers:   ledgers,
		policy:    opts.Policy,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
		now:       opts.Now,
		ids:       order.NewIDGenerator(opts.Now),
		csv:       csvexport.NewFormatter(opts.Location),
		cart:      cart.New(opts.MaxLineQuantity),
		ledger:    order.NewLedger(),
		state:     StateIdle,
	}
}

// Open restores the cart and the ledger from their snapshots. Failures leave
// the affected collection empty; they are returned joined and Status keeps
// every failure message instead of the last success.
func (s *Service) Open(ctx context.Context) error {
	var failed []string
	ledgerErr := s.LoadLedgerNow(ctx)
	if ledgerErr != nil {
		failed = append(failed, s.Status())
	}
	cartErr := s.LoadCartNow(ctx)
	if cartErr != nil {
		failed = append(failed, s.Status())
	}

	if len(failed) > 0 {
		s.mu.Lock()
		s.status = strings.Join(failed, "; ")
		s.mu.Unlock()
	}
	return errors.Join(ledgerErr, cartErr)
}

/* ================= cart commands ================= */

// AddToCart adds qty of a catalog product, merging onto an existing line.
func (s *Service) AddToCart(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalog.Lookup(productID); !ok {
		return fmt.Errorf("add %q: %w", productID, catalog.ErrProductNotFound)
	}
	if err := s.cart.Add(productID, qty); err != nil {
		return fmt.Errorf("add %q: %w", productID, err)
	}

	s.log.WithContext(ctx).Info("Cart item added",
		logger.String("product_id", productID),
		logger.Int("quantity", qty),
		logger.Int("line_quantity", s.cart.Quantity(productID)),
	)
	s.mutated(ctx, "add")
	return nil
}

// RemoveFromCart drops the line for productID. Unknown ids are a no-op.
func (s *Service) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(productID)
	s.log.WithContext(ctx).Info("Cart item removed", logger.String("product_id", productID))
	s.mutated(ctx, "remove")
}

// SetQuantity sets a line's quantity; qty <= 0 removes it and an id that is
// not in the cart is ignored.
func (s *Service) SetQuantity(ctx context.Context, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found, err := s.cart.UpdateQuantity(productID, qty)
	if err != nil {
		return fmt.Errorf("set %q: %w", productID, err)
	}
	if !found {
		s.log.WithContext(ctx).Debug("Quantity update ignored, product not in cart", logger.String("product_id", productID))
		return nil
	}

	s.log.WithContext(ctx).Info("Cart quantity set",
		logger.String("product_id", productID),
		logger.Int("quantity", qty),
	)
	s.mutated(ctx, "set")
	return nil
}

func (s *Service) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.log.WithContext(ctx).Info("Cart cleared")
	s.mutated(ctx, "clear")
}

// mutated counts the mutation and auto-saves. A failed save does not undo it.
func (s *Service) mutated(ctx context.Context, op string) {
	s.metrics.CartMutations.WithLabelValues(op).Inc()
	_ = s.saveCartLocked(ctx)
}

/* ================= reads ================= */

func (s *Service) Invoice() pricing.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.Compute(s.pricedLinesLocked())
}

func (s *Service) CartView() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.pricedLinesLocked()
	return CartView{Lines: lines, Invoice: s.policy.Compute(lines)}
}

// Products lists the catalog in its own order.
func (s *Service) Products() []catalog.Product {
	return s.catalog.ListAll()
}

// SearchProducts matches query against product names and ids.
func (s *Service) SearchProducts(query string) ([]catalog.Product, error) {
	searcher, ok := s.catalog.(catalog.Searcher)
	if !ok {
		return nil, fmt.Errorf("catalog does not support search")
	}
	return searcher.Search(query)
}

func (s *Service) Orders() []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Orders()
}

func (s *Service) FindOrder(id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.ledger.Find(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, nil
}

// Status is the last persistence message, empty until something was saved or loaded.
func (s *Service) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) CheckoutState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// pricedLinesLocked joins the cart with the catalog. Lines whose product has
// left the catalog are skipped; LoadCartNow prunes them anyway.
func (s *Service) pricedLinesLocked() []pricing.Line {
	items := s.cart.Lines()
	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		p, ok := s.catalog.Lookup(it.ProductID)
		if !ok {
			continue
		}
		lines = append(lines, pricing.Line{ProductID: p.ID, Name: p.Name, Quantity: it.Quantity, UnitPrice: p.Price})
	}
	return lines
}

/* ================= checkout ================= */

// Checkout turns the cart into an order. Validation failures leave the cart
// and the ledger untouched. The ledger is written before the cart is cleared;
// if that write fails the order is dropped and the cart is kept.
func (s *Service) Checkout(ctx context.Context, buyer string) (*Receipt, error) {
	s.mu.Lock()
	receipt, err := s.checkoutLocked(ctx, buyer)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if perr := s.publisher.PublishOrder(ctx, receipt.Order); perr != nil {
			s.log.WithContext(ctx).Error("Failed to publish order event",
				logger.String("order_id", receipt.Order.ID),
				logger.Error(perr),
			)
		}
	}
	return receipt, nil
}

func (s *Service) checkoutLocked(ctx context.Context, buyer string) (*Receipt, error) {
	log := s.log.WithContext(ctx)
	s.moveTo(ctx, StateValidating)

	if s.cart.IsEmpty() {
		return nil, s.reject(ctx, "empty_cart", ErrEmptyCart)
	}
	if strings.TrimSpace(buyer) == "" {
		return nil, s.reject(ctx, "missing_buyer", ErrMissingBuyer)
	}
	lines, err := pricing.Join(s.catalog, s.cart.Lines())
	if err != nil {
		return nil, s.reject(ctx, "unknown_product", err)
	}
	invoice := s.policy.Compute(lines)
	o, err := order.NewOrder(s.ids.Next(), buyer, s.now(), lines)
	if err != nil {
		return nil, s.reject(ctx, "invalid_order", err)
	}

	s.moveTo(ctx, StateCommitting)

	written, reset, err := s.ledgers.AppendOrder(ctx, o)
	if err != nil {
		s.persistFailed(ctx, storeLedger, "save", err)
		s.status = fmt.Sprintf("Failed to save orders: %v", err)
		return nil, s.reject(ctx, "ledger_write", fmt.Errorf("record order %s: %w", o.ID, err))
	}
	if reset {
		log.Warn("Stored ledger was unreadable and has been replaced", logger.String("order_id", o.ID))
		s.metrics.PersistenceFailures.WithLabelValues(storeLedger, "load").Inc()
	}
	s.ledger = order.NewLedger(written...)

	s.cart.Clear()
	_ = s.saveCartLocked(ctx)

	s.moveTo(ctx, StateDone)
	s.metrics.OrdersPlaced.Inc()
	s.metrics.OrderGrandTotal.Observe(invoice.GrandTotal.InexactFloat64())
	log.Info("Order placed",
		logger.String("order_id", o.ID),
		logger.String("buyer", o.Buyer),
		logger.Int("items", len(lines)),
		logger.String("grand_total", invoice.GrandTotal.StringFixed(2)),
	)

	return &Receipt{
		Order:   o,
		Lines:   lines,
		Invoice: invoice,
		Summary: invoice.Summary(lines, s.policy.TaxRate),
	}, nil
}

func (s *Service) reject(ctx context.Context, reason string, err error) error {
	s.moveTo(ctx, StateRejected)
	s.metrics.CheckoutRejected.WithLabelValues(reason).Inc()
	s.log.WithContext(ctx).Info("Checkout rejected", logger.String("reason", reason), logger.Error(err))
	return err
}

func (s *Service) moveTo(ctx context.Context, to State) {
	if !s.state.canMoveTo(to) {
		s.log.WithContext(ctx).Warn("Unexpected checkout transition",
			logger.Stringer("from", s.state),
			logger.Stringer("to", to),
		)
	}
	s.state = to
}

/* ================= persistence ================= */

// SaveCartNow writes the cart snapshot and returns the failure, if any.
func (s *Service) SaveCartNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCartLocked(ctx)
}

// LoadCartNow replaces the cart with the stored snapshot. On failure the cart
// becomes empty and the error is returned for display.
func (s *Service) LoadCartNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxQty := s.cart.MaxLineQuantity()
	items, err := s.carts.LoadCart(ctx)
	if err != nil {
		s.cart = cart.New(maxQty)
		s.persistFailed(ctx, storeCart, "load", err)
		s.status = fmt.Sprintf("Failed to load cart: %v", err)
		return err
	}

	kept := items[:0:0]
	for _, it := range items {
		if _, ok := s.catalog.Lookup(it.ProductID); !ok {
			s.log.WithContext(ctx).Warn("Dropping stored cart line for unknown product", logger.String("product_id", it.ProductID))
			continue
		}
		kept = append(kept, it)
	}
	s.cart = cart.Restore(maxQty, kept)
	s.status = fmt.Sprintf("Cart loaded (%d items)", s.cart.Len())
	s.log.WithContext(ctx).Info("Cart loaded", logger.Int("lines", s.cart.Len()))
	return nil
}

// LoadLedgerNow replaces the in-memory ledger with the stored one.
func (s *Service) LoadLedgerNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	orders, err := s.ledgers.LoadLedger(ctx)
	if err != nil {
		s.ledger = order.NewLedger()
		s.persistFailed(ctx, storeLedger, "load", err)
		s.status = fmt.Sprintf("Failed to load orders: %v", err)
		return err
	}
	s.ledger = order.NewLedger(orders...)
	s.ids.Seed(s.ledger.IDs()...)
	s.status = fmt.Sprintf("Orders loaded (%d)", s.ledger.Len())
	s.log.WithContext(ctx).Info("Ledger loaded", logger.Int("orders", s.ledger.Len()))
	return nil
}

func (s *Service) saveCartLocked(ctx context.Context) error {
	if err := s.carts.SaveCart(ctx, s.cart.Lines()); err != nil {
		s.persistFailed(ctx, storeCart, "save", err)
		s.status = fmt.Sprintf("Failed to save cart: %v", err)
		return err
	}
	s.status = "Cart saved"
	return nil
}

func (s *Service) persistFailed(ctx context.Context, store, op string, err error) {
	s.metrics.PersistenceFailures.WithLabelValues(store, op).Inc()
	s.log.WithContext(ctx).Warn("Snapshot "+op+" failed",
		logger.String("store", store),
		logger.Error(err),
	)
}

/* ================= export ================= */

func (s *Service) ExportCart() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.csv.Cart(s.pricedLinesLocked())
}

func (s *Service) ExportOrder(id string) (string, error) {
	o, err := s.FindOrder(id)
	if err != nil {
		return "", err
	}
	return s.csv.Order(o), nil
}

func (s *Service) ExportLedger() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.csv.Ledger(s.ledger.Orders())
}
