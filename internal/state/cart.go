package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/localstore"
)

// ErrLineNotSynced reports an authenticated mutation on a line that never
// received a server identifier. That is an internal-consistency bug, not
// a user error, and is never silently swallowed.
var ErrLineNotSynced = errors.New("cart line has no server id")

// Line is the view-facing projection of one cart position. ServerID is
// nil for guest (local-only) lines. Pending is set while a request for
// this line is in flight so the view can lock its controls.
type Line struct {
	Product  domain.Product
	Quantity int
	ServerID *int64
	Pending  bool
}

type cartAPI interface {
	GetCart(ctx context.Context) (*domain.Cart, error)
	AddCartItem(ctx context.Context, productID int64, quantity int) (*domain.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*domain.CartItem, error)
	RemoveCartItem(ctx context.Context, itemID int64) error
	MergeCart(ctx context.Context, items []api.MergeItem) (*domain.Cart, error)
}

type guestStore interface {
	GuestCart() []localstore.GuestLine
	SaveGuestCart(lines []localstore.GuestLine)
	ClearGuestCart()
}

type identitySource interface {
	Authenticated() bool
}

// Cart is the single source of truth for "what's in the cart". In guest
// mode it owns the data and mirrors every mutation to the local store; in
// authenticated mode it is a cache of server state and every mutation is
// applied from the server's response, never by local arithmetic.
type Cart struct {
	api    cartAPI
	store  guestStore
	auth   identitySource
	logger *log.Logger

	mu          sync.Mutex
	lines       []Line
	pending     map[int64]bool
	serverTotal float64
	serverBack  bool
	// gen invalidates in-flight responses: a mutation only applies its
	// result if the cart has not changed owners since the request left.
	gen uint64
}

func NewCart(apiClient cartAPI, store guestStore, auth identitySource, logger *log.Logger) *Cart {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Cart{
		api:     apiClient,
		store:   store,
		auth:    auth,
		logger:  logger,
		pending: map[int64]bool{},
	}
}

// Bind subscribes the cart to identity transitions: merge-then-refresh
// after login, plain refresh after logout. A failed merge is logged and
// never aborts the login flow; the guest cart stays stranded in the local
// store until a later login retries it.
func (c *Cart) Bind(auth *Auth) {
	auth.Subscribe(func(user *domain.User) {
		ctx := context.Background()
		c.invalidate()
		if user != nil {
			if err := c.MergeGuestCart(ctx); err != nil {
				c.logger.Printf("cart: merge after login failed, guest cart kept locally: %v", err)
			}
		}
		if err := c.Refresh(ctx); err != nil {
			c.logger.Printf("cart: refresh after identity change: %v", err)
		}
	})
}

// Lines returns a snapshot of the view projection.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	for i := range out {
		out[i].Pending = c.pending[out[i].Product.ID]
	}
	return out
}

// TotalQuantity sums line quantities. Pure, no I/O.
func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// TotalShmeckles returns the cart total in Shmeckles. When the cart is
// server-backed the server's total_price is authoritative; otherwise it
// is derived locally. Item-level mutations return no cart total, so they
// drop back to the derived value until the next Refresh.
func (c *Cart) TotalShmeckles() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.serverBack {
		return c.serverTotal
	}
	total := 0.0
	for _, l := range c.lines {
		total += l.Product.PriceShmeckles * float64(l.Quantity)
	}
	return total
}

// TotalFlurbos is always derived locally; the backend does not price the
// cart in Flurbos.
func (c *Cart) TotalFlurbos() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0.0
	for _, l := range c.lines {
		total += l.Product.PriceFlurbos * float64(l.Quantity)
	}
	return total
}

// Refresh re-derives the in-memory cart from the authoritative source for
// the current identity. Always safe to call.
func (c *Cart) Refresh(ctx context.Context) error {
	if !c.auth.Authenticated() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lines = linesFromGuest(c.store.GuestCart())
		c.serverBack = false
		c.serverTotal = 0
		return nil
	}

	gen := c.generation()
	cart, err := c.api.GetCart(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}
	c.lines = linesFromServer(cart.Items)
	c.serverBack = true
	c.serverTotal = cart.TotalPrice
	return nil
}

// Add puts one unit of product in the cart, incrementing an existing line.
// Guest mode mutates in memory and persists; authenticated mode applies
// the server's returned line so concurrent tabs never drift.
func (c *Cart) Add(ctx context.Context, product domain.Product) error {
	if !c.auth.Authenticated() {
		c.mu.Lock()
		defer c.mu.Unlock()
		found := false
		for i := range c.lines {
			if c.lines[i].Product.ID == product.ID {
				c.lines[i].Quantity++
				found = true
				break
			}
		}
		if !found {
			c.lines = append(c.lines, Line{Product: product, Quantity: 1})
		}
		c.persistGuestLocked()
		return nil
	}

	gen := c.acquire(product.ID)
	defer c.release(product.ID)

	item, err := c.api.AddCartItem(ctx, product.ID, 1)
	if err != nil {
		return err
	}
	c.applyServerLine(gen, *item, &product)
	return nil
}

// SetQuantity sets an absolute quantity for a product's line. n <= 0 is
// equivalent to Remove.
func (c *Cart) SetQuantity(ctx context.Context, productID int64, n int) error {
	if n <= 0 {
		return c.Remove(ctx, productID)
	}

	if !c.auth.Authenticated() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.lines {
			if c.lines[i].Product.ID == productID {
				c.lines[i].Quantity = n
				c.persistGuestLocked()
				return nil
			}
		}
		return nil
	}

	serverID, err := c.serverIDFor(productID)
	if err != nil {
		return err
	}

	gen := c.acquire(productID)
	defer c.release(productID)

	item, err := c.api.UpdateCartItem(ctx, serverID, n)
	if err != nil {
		return err
	}
	c.applyServerLine(gen, *item, nil)
	return nil
}

// Remove deletes a product's line. In authenticated mode the local copy
// is dropped only after the remote delete succeeds.
func (c *Cart) Remove(ctx context.Context, productID int64) error {
	if !c.auth.Authenticated() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.deleteLineLocked(productID)
		c.persistGuestLocked()
		return nil
	}

	serverID, err := c.serverIDFor(productID)
	if err != nil {
		return err
	}

	gen := c.acquire(productID)
	defer c.release(productID)

	if err := c.api.RemoveCartItem(ctx, serverID); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return nil
	}
	c.deleteLineLocked(productID)
	c.serverBack = false
	c.serverTotal = 0
	return nil
}

// Clear empties the in-memory cart. In guest mode the local store entry
// is erased too. It never calls the server: post-checkout the backend has
// already consumed the cart as part of order creation.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.lines = nil
	c.serverTotal = 0
	if !c.auth.Authenticated() {
		c.store.ClearGuestCart()
	}
}

// MergeGuestCart sends the guest cart to the server's merge endpoint in
// one batch. The server resolves conflicts; on success the local entry is
// consumed unconditionally, on failure it is left intact for a later
// retry. Callers follow with Refresh regardless of outcome.
func (c *Cart) MergeGuestCart(ctx context.Context) error {
	guest := c.store.GuestCart()
	if len(guest) == 0 {
		return nil
	}

	items := make([]api.MergeItem, 0, len(guest))
	for _, l := range guest {
		if l.ProductID <= 0 || l.Quantity < 1 {
			c.logger.Printf("cart: dropping invalid guest line product_id=%d quantity=%d", l.ProductID, l.Quantity)
			continue
		}
		items = append(items, api.MergeItem{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	if len(items) == 0 {
		c.store.ClearGuestCart()
		return nil
	}

	if _, err := c.api.MergeCart(ctx, items); err != nil {
		return fmt.Errorf("merge guest cart: %w", err)
	}
	c.store.ClearGuestCart()
	return nil
}

func (c *Cart) invalidate() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

func (c *Cart) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Cart) acquire(productID int64) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[productID] = true
	return c.gen
}

func (c *Cart) release(productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, productID)
}

// applyServerLine replaces the affected line with the server's
// representation. fallback supplies product details for a line the server
// response does not embed them on. Stale responses are dropped.
func (c *Cart) applyServerLine(gen uint64, item domain.CartItem, fallback *domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.serverBack = false
	c.serverTotal = 0

	product := fallback
	if item.Product != nil {
		product = item.Product
	}

	for i := range c.lines {
		if c.lines[i].Product.ID == item.ProductID {
			c.lines[i].Quantity = item.Quantity
			c.lines[i].ServerID = &item.ID
			if product != nil {
				c.lines[i].Product = *product
			}
			return
		}
	}

	line := Line{Quantity: item.Quantity, ServerID: &item.ID}
	if product != nil {
		line.Product = *product
	} else {
		line.Product = domain.Product{ID: item.ProductID}
	}
	c.lines = append(c.lines, line)
}

func (c *Cart) serverIDFor(productID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if l.Product.ID == productID {
			if l.ServerID == nil {
				return 0, fmt.Errorf("%w: product %d", ErrLineNotSynced, productID)
			}
			return *l.ServerID, nil
		}
	}
	return 0, fmt.Errorf("cart line for product %d: %w", productID, domain.ErrNotFound)
}

func (c *Cart) deleteLineLocked(productID int64) {
	for i := range c.lines {
		if c.lines[i].Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) persistGuestLocked() {
	out := make([]localstore.GuestLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, localstore.GuestLine{
			ProductID:      l.Product.ID,
			Name:           l.Product.Name,
			PriceShmeckles: l.Product.PriceShmeckles,
			PriceFlurbos:   l.Product.PriceFlurbos,
			Quantity:       l.Quantity,
		})
	}
	c.store.SaveGuestCart(out)
}

func linesFromGuest(guest []localstore.GuestLine) []Line {
	lines := make([]Line, 0, len(guest))
	for _, g := range guest {
		if g.ProductID <= 0 || g.Quantity < 1 {
			continue
		}
		lines = append(lines, Line{
			Product: domain.Product{
				ID:             g.ProductID,
				Name:           g.Name,
				PriceShmeckles: g.PriceShmeckles,
				PriceFlurbos:   g.PriceFlurbos,
			},
			Quantity: g.Quantity,
		})
	}
	return lines
}

func linesFromServer(items []domain.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, item := range items {
		id := item.ID
		line := Line{Quantity: item.Quantity, ServerID: &id}
		if item.Product != nil {
			line.Product = *item.Product
		} else {
			line.Product = domain.Product{ID: item.ProductID}
		}
		lines = append(lines, line)
	}
	return lines
}
