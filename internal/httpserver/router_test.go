package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubAccountService struct {
	user        *domain.User
	token       string
	registerErr error
	loginErr    error
	lookupErr   error
}

func (s *stubAccountService) Register(_ context.Context, _, _ string) (*domain.User, error) {
	return s.user, s.registerErr
}

func (s *stubAccountService) Login(_ context.Context, _, _ string) (*domain.User, string, error) {
	return s.user, s.token, s.loginErr
}

func (s *stubAccountService) LookupByToken(_ context.Context, _ string) (*domain.User, error) {
	return s.user, s.lookupErr
}

type stubCatalogService struct {
	products []domain.Product
	product  *domain.Product
	err      error
}

func (s *stubCatalogService) List(_ context.Context) ([]domain.Product, error) {
	return s.products, s.err
}

func (s *stubCatalogService) Get(_ context.Context, _ int64) (*domain.Product, error) {
	return s.product, s.err
}

type stubCartService struct {
	cart       *domain.Cart
	item       *domain.CartItem
	err        error
	mergeCalls [][]cartsvc.MergeInput
}

func (s *stubCartService) Get(_ context.Context, _ int64) (*domain.Cart, error) {
	return s.cart, s.err
}

func (s *stubCartService) AddItem(_ context.Context, _, _ int64, _ int) (*domain.CartItem, error) {
	return s.item, s.err
}

func (s *stubCartService) UpdateItem(_ context.Context, _, _ int64, _ int) (*domain.CartItem, error) {
	return s.item, s.err
}

func (s *stubCartService) RemoveItem(_ context.Context, _, _ int64) error {
	return s.err
}

func (s *stubCartService) Merge(_ context.Context, _ int64, items []cartsvc.MergeInput) (*domain.Cart, error) {
	s.mergeCalls = append(s.mergeCalls, items)
	return s.cart, s.err
}

type stubOrderService struct {
	order  *domain.Order
	orders []domain.Order
	err    error
}

func (s *stubOrderService) Create(_ context.Context, _ int64, _, _ string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) List(_ context.Context, _ int64) ([]domain.Order, error) {
	return s.orders, s.err
}

func (s *stubOrderService) Get(_ context.Context, _, _ int64) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) SetStatus(_ context.Context, _ int64, _ domain.OrderStatus) (*domain.Order, error) {
	return s.order, s.err
}

func stubDeps() Deps {
	return Deps{
		AccountSvc: &stubAccountService{user: &domain.User{ID: 1, Email: "user@example.com", IsActive: true}},
		CatalogSvc: &stubCatalogService{},
		CartSvc:    &stubCartService{cart: &domain.Cart{Items: []domain.CartItem{}}},
		OrderSvc:   &stubOrderService{},
	}
}

func TestBuildRouter_MissingDependency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := stubDeps()
	deps.CartSvc = nil

	if _, err := buildRouter(logDiscard(), nil, deps, []string{"*"}); err == nil {
		t.Fatal("expected error for missing dependency")
	}
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, stubDeps(), []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, stubDeps(), []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RejectedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := stubDeps()
	deps.AccountSvc = &stubAccountService{lookupErr: domain.ErrNotFound}
	router, err := buildRouter(logDiscard(), nil, deps, []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequestIDEchoedBack(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, stubDeps(), []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id echoed back, got %q", got)
	}
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, stubDeps(), []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected generated request id")
	}
}
