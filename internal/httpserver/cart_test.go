package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

func TestAddCartItemHandler_Created(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := stubDeps()
	deps.CartSvc = &stubCartService{
		item: &domain.CartItem{ID: 55, ProductID: 101, Quantity: 2},
	}
	router, err := buildRouter(logDiscard(), nil, deps, []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	body := `{"product_id":101,"quantity":2}`
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"id":55`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAddCartItemHandler_UnknownProduct(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := stubDeps()
	deps.CartSvc = &stubCartService{err: cartsvc.ErrUnknownProduct}
	router, err := buildRouter(logDiscard(), nil, deps, []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	body := `{"product_id":999,"quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/cart/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateCartItemHandler_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	deps := stubDeps()
	deps.CartSvc = &stubCartService{err: domain.ErrNotFound}
	router, err := buildRouter(logDiscard(), nil, deps, []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/cart/items/99", strings.NewReader(`{"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRemoveCartItemHandler_NoContent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, stubDeps(), []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/cart/items/55", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestMergeCartHandler_PassesBatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cartStub := &stubCartService{
		cart: &domain.Cart{ID: 1, Items: []domain.CartItem{{ID: 10, ProductID: 101, Quantity: 3}}, TotalPrice: 45000},
	}
	deps := stubDeps()
	deps.CartSvc = cartStub
	router, err := buildRouter(logDiscard(), nil, deps, []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	body := `{"items":[{"product_id":101,"quantity":2},{"product_id":102,"quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/cart/merge", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	if len(cartStub.mergeCalls) != 1 {
		t.Fatalf("expected 1 merge call, got %d", len(cartStub.mergeCalls))
	}
	if len(cartStub.mergeCalls[0]) != 2 {
		t.Fatalf("expected 2 lines in batch, got %d", len(cartStub.mergeCalls[0]))
	}
	if !strings.Contains(rec.Body.String(), `"total_price":45000`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCartEndpointsRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, stubDeps(), []string{"*"})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/cart/items"},
		{http.MethodPatch, "/cart/items/1"},
		{http.MethodDelete, "/cart/items/1"},
		{http.MethodPost, "/cart/merge"},
		{http.MethodPost, "/orders"},
		{http.MethodGet, "/orders"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, rec.Code)
		}
	}
}
