package httpserver

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/api"
	"storefront/internal/domain"
	"storefront/internal/localstore"
	cartrepo "storefront/internal/repository/cart"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	userrepo "storefront/internal/repository/user"
	accountsvc "storefront/internal/service/account"
	cartsvc "storefront/internal/service/cart"
	catalogsvc "storefront/internal/service/catalog"
	ordersvc "storefront/internal/service/order"
	"storefront/internal/state"
)

// newTestBackend wires the full stack on in-memory repositories and
// serves it over httptest.
func newTestBackend(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	products := productrepo.NewMemory()
	products.Load([]domain.Product{
		{ID: 101, Name: "Смарт-часы Pro", PriceShmeckles: 15000, PriceFlurbos: 150},
		{ID: 102, Name: "Беспроводные наушники Air", PriceShmeckles: 8000, PriceFlurbos: 80},
	})
	carts := cartrepo.NewMemory(products)

	deps := Deps{
		AccountSvc: accountsvc.New(userrepo.NewMemory(), "test-secret", time.Hour),
		CatalogSvc: catalogsvc.New(products),
		CartSvc:    cartsvc.New(carts, products),
		OrderSvc:   ordersvc.New(orderrepo.NewMemory(), carts),
	}
	router, err := buildRouter(logDiscard(), nil, deps, []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server) (*state.Auth, *state.Cart, *api.Client) {
	t.Helper()
	store := localstore.New(t.TempDir(), logDiscard())
	client := api.New(srv.URL, store, logDiscard())
	auth := state.NewAuth(client, store, logDiscard())
	cart := state.NewCart(client, store, auth, logDiscard())
	cart.Bind(auth)
	return auth, cart, client
}

func TestGuestToCheckoutFlow(t *testing.T) {
	srv := newTestBackend(t)
	auth, cart, client := newTestClient(t, srv)
	ctx := context.Background()

	auth.Resolve(ctx)
	if auth.Authenticated() {
		t.Fatal("expected guest identity at start")
	}

	watch := &domain.Product{ID: 101, Name: "Смарт-часы Pro", PriceShmeckles: 15000, PriceFlurbos: 150}
	headphones := &domain.Product{ID: 102, Name: "Беспроводные наушники Air", PriceShmeckles: 8000, PriceFlurbos: 80}
	if err := cart.Add(ctx, *watch); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if err := cart.Add(ctx, *watch); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if err := cart.Add(ctx, *headphones); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if got := cart.TotalQuantity(); got != 3 {
		t.Fatalf("expected guest quantity 3, got %d", got)
	}

	if _, err := auth.Register(ctx, "shopper@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if auth.Authenticated() {
		t.Fatal("register must not establish a session")
	}

	if err := auth.Login(ctx, "shopper@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !auth.Authenticated() {
		t.Fatal("expected authenticated identity after login")
	}

	// The guest batch was merged into the server cart on login.
	if got := cart.TotalQuantity(); got != 3 {
		t.Fatalf("expected merged quantity 3, got %d", got)
	}
	if got := cart.TotalShmeckles(); got != 38000 {
		t.Fatalf("expected merged total 38000, got %v", got)
	}

	lines := cart.Lines()
	for _, line := range lines {
		if line.ServerID == nil {
			t.Fatalf("line for product %d not synchronized", line.Product.ID)
		}
	}

	// Server-backed mutations.
	if err := cart.SetQuantity(ctx, 101, 1); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if got := cart.TotalShmeckles(); got != 23000 {
		t.Fatalf("expected total 23000, got %v", got)
	}
	if err := cart.Remove(ctx, 102); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := cart.TotalQuantity(); got != 1 {
		t.Fatalf("expected quantity 1, got %d", got)
	}

	// Checkout drains the server cart.
	order, err := client.CreateOrder(ctx, "ул. Пушкина, д. 1", "+7 900 000-00-00")
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != domain.OrderSubmitted {
		t.Fatalf("expected submitted order, got %s", order.Status)
	}
	if len(order.Items) != 1 || order.Items[0].ProductName != "Смарт-часы Pro" {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}

	if err := cart.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if got := cart.TotalQuantity(); got != 0 {
		t.Fatalf("expected empty cart after checkout, got %d", got)
	}
}

func TestLoginMergeSumsWithExistingServerCart(t *testing.T) {
	srv := newTestBackend(t)
	ctx := context.Background()

	// First device: register, log in, leave one watch in the server cart.
	authA, cartA, _ := newTestClient(t, srv)
	authA.Resolve(ctx)
	if _, err := authA.Register(ctx, "shopper@example.com", "secret123"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := authA.Login(ctx, "shopper@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := cartA.Add(ctx, domain.Product{ID: 101, Name: "Смарт-часы Pro", PriceShmeckles: 15000, PriceFlurbos: 150}); err != nil {
		t.Fatalf("add: %v", err)
	}

	// Second device: guest adds the same watch, then logs in. The server
	// resolves the conflict by summing.
	authB, cartB, _ := newTestClient(t, srv)
	authB.Resolve(ctx)
	if err := cartB.Add(ctx, domain.Product{ID: 101, Name: "Смарт-часы Pro", PriceShmeckles: 15000, PriceFlurbos: 150}); err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if err := authB.Login(ctx, "shopper@example.com", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if got := cartB.TotalQuantity(); got != 2 {
		t.Fatalf("expected summed quantity 2, got %d", got)
	}
	if got := cartB.TotalShmeckles(); got != 30000 {
		t.Fatalf("expected total 30000, got %v", got)
	}
}
