package repositories

import (
	"testing"

	"ecommerce-platform/internal/models"
)

func newCartRepos(t *testing.T) (*ProductRepository, *CartRepository) {
	t.Helper()
	db := newTestDB(t)
	products := NewProductRepository(db.DB)
	return products, NewCartRepository(db.DB, products)
}

func TestCartCreateAndGet(t *testing.T) {
	_, carts := newCartRepos(t)

	cart, err := carts.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if cart.ID == 0 {
		t.Fatal("expected a non-zero cart id")
	}
	if len(cart.Items) != 0 {
		t.Errorf("new cart should be empty, got %d items", len(cart.Items))
	}

	got, err := carts.GetByID(cart.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ID != cart.ID || len(got.Items) != 0 {
		t.Errorf("unexpected cart: %+v", got)
	}
}

func TestCartGetByIDNotFound(t *testing.T) {
	_, carts := newCartRepos(t)

	if _, err := carts.GetByID(404); !models.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestCartAddItemMergesLines(t *testing.T) {
	products, carts := newCartRepos(t)

	p := seedProduct(t, products, "SKU-MERGE", 1000, 50, models.ProductActive)
	cart, _ := carts.Create()

	if _, err := carts.AddItem(cart.ID, p.ID, 2); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	got, err := carts.AddItem(cart.ID, p.ID, 3)
	if err != nil {
		t.Fatalf("AddItem merge failed: %v", err)
	}

	if len(got.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(got.Items))
	}
	if got.Items[0].Quantity != 5 {
		t.Errorf("expected merged quantity 5, got %d", got.Items[0].Quantity)
	}
}

func TestCartAddItemPreservesOrder(t *testing.T) {
	products, carts := newCartRepos(t)

	p1 := seedProduct(t, products, "SKU-O1", 1000, 10, models.ProductActive)
	p2 := seedProduct(t, products, "SKU-O2", 1000, 10, models.ProductActive)
	p3 := seedProduct(t, products, "SKU-O3", 1000, 10, models.ProductActive)
	cart, _ := carts.Create()

	for _, id := range []int{p2.ID, p3.ID, p1.ID} {
		if _, err := carts.AddItem(cart.ID, id, 1); err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
	}
	// Merging into the first line must not move it
	got, err := carts.AddItem(cart.ID, p2.ID, 1)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	wantOrder := []int{p2.ID, p3.ID, p1.ID}
	if len(got.Items) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(got.Items))
	}
	for i, want := range wantOrder {
		if got.Items[i].ProductID != want {
			t.Errorf("line %d: expected product %d, got %d", i, want, got.Items[i].ProductID)
		}
	}
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	_, carts := newCartRepos(t)

	cart, _ := carts.Create()
	if _, err := carts.AddItem(cart.ID, 999, 1); !models.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestCartAddItemInvalidQuantity(t *testing.T) {
	products, carts := newCartRepos(t)

	p := seedProduct(t, products, "SKU-Q", 1000, 10, models.ProductActive)
	cart, _ := carts.Create()

	if _, err := carts.AddItem(cart.ID, p.ID, 0); !models.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCartSetItemQuantity(t *testing.T) {
	products, carts := newCartRepos(t)

	p := seedProduct(t, products, "SKU-SET", 1000, 10, models.ProductActive)
	cart, _ := carts.Create()
	carts.AddItem(cart.ID, p.ID, 2)

	got, err := carts.SetItemQuantity(cart.ID, p.ID, 7)
	if err != nil {
		t.Fatalf("SetItemQuantity failed: %v", err)
	}
	if got.Items[0].Quantity != 7 {
		t.Errorf("expected quantity 7, got %d", got.Items[0].Quantity)
	}

	if _, err := carts.SetItemQuantity(cart.ID, 999, 1); !models.IsNotFound(err) {
		t.Errorf("expected not found for missing line, got %v", err)
	}
}

func TestCartSetItemQuantityZeroRemovesLine(t *testing.T) {
	products, carts := newCartRepos(t)

	p := seedProduct(t, products, "SKU-ZERO", 1000, 10, models.ProductActive)
	cart, _ := carts.Create()
	carts.AddItem(cart.ID, p.ID, 2)

	got, err := carts.SetItemQuantity(cart.ID, p.ID, 0)
	if err != nil {
		t.Fatalf("SetItemQuantity failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("zero quantity should remove the line, got %+v", got.Items)
	}
}

func TestCartRemoveItem(t *testing.T) {
	products, carts := newCartRepos(t)

	p1 := seedProduct(t, products, "SKU-R1", 1000, 10, models.ProductActive)
	p2 := seedProduct(t, products, "SKU-R2", 1000, 10, models.ProductActive)
	cart, _ := carts.Create()
	carts.AddItem(cart.ID, p1.ID, 1)
	carts.AddItem(cart.ID, p2.ID, 1)

	got, err := carts.RemoveItem(cart.ID, p1.ID)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].ProductID != p2.ID {
		t.Errorf("unexpected items after removal: %+v", got.Items)
	}

	if _, err := carts.RemoveItem(cart.ID, p1.ID); !models.IsNotFound(err) {
		t.Errorf("expected not found for removed line, got %v", err)
	}
}

func TestCartRemoveItemsTrimsOnlyGiven(t *testing.T) {
	products, carts := newCartRepos(t)

	p1 := seedProduct(t, products, "SKU-T1", 1000, 10, models.ProductActive)
	p2 := seedProduct(t, products, "SKU-T2", 1000, 10, models.ProductActive)
	p3 := seedProduct(t, products, "SKU-T3", 1000, 10, models.ProductActive)
	cart, _ := carts.Create()
	for _, id := range []int{p1.ID, p2.ID, p3.ID} {
		carts.AddItem(cart.ID, id, 1)
	}

	if err := carts.RemoveItems(cart.ID, []int{p1.ID, p3.ID}); err != nil {
		t.Fatalf("RemoveItems failed: %v", err)
	}

	got, _ := carts.GetByID(cart.ID)
	if len(got.Items) != 1 || got.Items[0].ProductID != p2.ID {
		t.Errorf("expected only product %d to remain, got %+v", p2.ID, got.Items)
	}
}

func TestCartClear(t *testing.T) {
	products, carts := newCartRepos(t)

	p := seedProduct(t, products, "SKU-CLR", 1000, 10, models.ProductActive)
	cart, _ := carts.Create()
	carts.AddItem(cart.ID, p.ID, 3)

	got, err := carts.Clear(cart.ID)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(got.Items))
	}

	if _, err := carts.Clear(404); !models.IsNotFound(err) {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestValidateAgainstCatalogPartition(t *testing.T) {
	products, carts := newCartRepos(t)

	ok := seedProduct(t, products, "SKU-OK", 1000, 10, models.ProductActive)
	inactive := seedProduct(t, products, "SKU-OFF", 1000, 10, models.ProductInactive)
	low := seedProduct(t, products, "SKU-LOW", 1000, 2, models.ProductActive)
	deleted := seedProduct(t, products, "SKU-GONE", 1000, 10, models.ProductActive)

	cart, _ := carts.Create()
	carts.AddItem(cart.ID, ok.ID, 3)
	carts.AddItem(cart.ID, inactive.ID, 1)
	carts.AddItem(cart.ID, low.ID, 5)
	carts.AddItem(cart.ID, deleted.ID, 1)
	if err := products.Delete(deleted.ID); err != nil {
		t.Fatalf("failed to delete product: %v", err)
	}

	loaded, _ := carts.GetByID(cart.ID)
	validation, err := carts.ValidateAgainstCatalog(loaded)
	if err != nil {
		t.Fatalf("ValidateAgainstCatalog failed: %v", err)
	}

	// Every line lands in exactly one partition
	if len(validation.Valid)+len(validation.Invalid) != len(loaded.Items) {
		t.Fatalf("partition lost lines: %d valid + %d invalid != %d",
			len(validation.Valid), len(validation.Invalid), len(loaded.Items))
	}

	if len(validation.Valid) != 1 || validation.Valid[0].Item.ProductID != ok.ID {
		t.Fatalf("unexpected valid set: %+v", validation.Valid)
	}
	if validation.Valid[0].Product.Price != 1000 {
		t.Errorf("valid line must carry the product for price snapshot")
	}

	reasons := map[int]string{}
	available := map[int]int{}
	for _, line := range validation.Invalid {
		reasons[line.Item.ProductID] = line.Reason
		available[line.Item.ProductID] = line.AvailableStock
	}
	if reasons[inactive.ID] != models.ReasonProductInactive {
		t.Errorf("inactive product: got reason %q", reasons[inactive.ID])
	}
	if reasons[low.ID] != models.ReasonInsufficientStock {
		t.Errorf("low stock product: got reason %q", reasons[low.ID])
	}
	if available[low.ID] != 2 {
		t.Errorf("low stock product: expected available 2, got %d", available[low.ID])
	}
	if reasons[deleted.ID] != models.ReasonProductMissing {
		t.Errorf("deleted product: got reason %q", reasons[deleted.ID])
	}
}

func TestValidateAgainstCatalogEmptyCart(t *testing.T) {
	_, carts := newCartRepos(t)

	cart, _ := carts.Create()
	validation, err := carts.ValidateAgainstCatalog(cart)
	if err != nil {
		t.Fatalf("ValidateAgainstCatalog failed: %v", err)
	}
	if len(validation.Valid) != 0 || len(validation.Invalid) != 0 {
		t.Errorf("expected empty partition, got %+v", validation)
	}
}

func TestCartDelete(t *testing.T) {
	_, carts := newCartRepos(t)

	cart, _ := carts.Create()
	if err := carts.Delete(cart.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := carts.Delete(cart.ID); !models.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}
