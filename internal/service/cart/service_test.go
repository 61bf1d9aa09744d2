package cart

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
)

func newTestService() (*Service, *productrepo.Memory) {
	products := productrepo.NewMemory()
	products.Load([]domain.Product{
		{ID: 101, Name: "Смарт-часы Pro", PriceShmeckles: 15000, PriceFlurbos: 150},
		{ID: 102, Name: "Беспроводные наушники Air", PriceShmeckles: 8000, PriceFlurbos: 80},
	})
	return New(cartrepo.NewMemory(products), products), products
}

func TestAddItemIncrementsExistingPosition(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 1, 101, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	item, err := svc.AddItem(ctx, 1, 101, 1)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", item.Quantity)
	}

	cart, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if cart.TotalPrice != 45000 {
		t.Fatalf("expected total 45000, got %v", cart.TotalPrice)
	}
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), 1, 999, 1)
	if !errors.Is(err, ErrUnknownProduct) {
		t.Fatalf("expected ErrUnknownProduct, got %v", err)
	}
}

func TestAddItemRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.AddItem(context.Background(), 1, 101, 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestUpdateItemSetsAbsoluteQuantity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, 1, 101, 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	updated, err := svc.UpdateItem(ctx, 1, item.ID, 5)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", updated.Quantity)
	}
}

func TestUpdateItemRejectsNonPositiveQuantity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, 1, 101, 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := svc.UpdateItem(ctx, 1, item.ID, 0); err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestUpdateItemUnknownItem(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpdateItem(context.Background(), 1, 999, 2)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, 1, 101, 2)
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.RemoveItem(ctx, 1, item.ID); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}

	cart, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
}

func TestMergeSumsOverlappingProducts(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 1, 101, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	cart, err := svc.Merge(ctx, 1, []MergeInput{
		{ProductID: 101, Quantity: 1},
		{ProductID: 102, Quantity: 4},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(cart.Items))
	}

	quantities := map[int64]int{}
	for _, item := range cart.Items {
		quantities[item.ProductID] = item.Quantity
	}
	if quantities[101] != 3 {
		t.Fatalf("expected quantity 3 for product 101, got %d", quantities[101])
	}
	if quantities[102] != 4 {
		t.Fatalf("expected quantity 4 for product 102, got %d", quantities[102])
	}
}

func TestMergeDropsInvalidLines(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cart, err := svc.Merge(ctx, 1, []MergeInput{
		{ProductID: 101, Quantity: 2},
		{ProductID: 0, Quantity: 5},
		{ProductID: 102, Quantity: -1},
	})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if cart.Items[0].ProductID != 101 {
		t.Fatalf("expected product 101, got %d", cart.Items[0].ProductID)
	}
}

func TestMergeEmptyBatchReturnsCart(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 1, 101, 1); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	cart, err := svc.Merge(ctx, 1, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
}

func TestClear(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 1, 101, 2); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.Clear(ctx, 1); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	cart, err := svc.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d items", len(cart.Items))
	}
}
