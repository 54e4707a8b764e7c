package repositories

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"ecommerce-platform/internal/database"
	"ecommerce-platform/internal/models"
)

var testDBCounter int64

// newTestDB opens a fresh migrated in-memory database per test
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	name := fmt.Sprintf("%s_%d",
		strings.ReplaceAll(t.Name(), "/", "_"),
		atomic.AddInt64(&testDBCounter, 1))

	db, err := database.NewMemoryConnection(name)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func seedProduct(t *testing.T, repo *ProductRepository, code string, price, stock int, status models.ProductStatus) *models.Product {
	t.Helper()

	product, err := repo.Create(&models.ProductCreateRequest{
		Title:    "Product " + code,
		Code:     code,
		Price:    price,
		Stock:    stock,
		Status:   status,
		Category: "test",
	})
	if err != nil {
		t.Fatalf("failed to seed product %s: %v", code, err)
	}
	return product
}
