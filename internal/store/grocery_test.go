package store

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/villegasmiguelangel268-maker/listify/internal/database"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

func setupTestDB(t *testing.T) *GroceryStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGroceryStore(db)
}

func TestGroceryLoadEmpty(t *testing.T) {
	gs := setupTestDB(t)

	items, err := gs.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", items)
	}
}

func TestGrocerySaveAllRoundTrip(t *testing.T) {
	gs := setupTestDB(t)
	ctx := context.Background()

	// Deliberately not in id order: position must win.
	items := []model.GroceryItem{
		{ID: 42, Name: "Milk", Quantity: 2, Category: "Drinks"},
		{ID: 7, Name: "Apples", Quantity: 5, Category: "Fruits", IsBought: true},
		{ID: 1999, Name: "Soap", Quantity: 1},
	}
	if err := gs.SaveAll(ctx, items); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := gs.LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("loaded %+v, want %+v", got, items)
	}

	// A second save replaces the table.
	next := []model.GroceryItem{items[2], items[0]}
	if err := gs.SaveAll(ctx, next); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _ = gs.LoadAll(ctx)
	if !reflect.DeepEqual(got, next) {
		t.Errorf("loaded %+v, want %+v", got, next)
	}
}

func TestGrocerySaveAllIsAtomic(t *testing.T) {
	gs := setupTestDB(t)
	ctx := context.Background()

	good := []model.GroceryItem{{ID: 1, Name: "Bread", Quantity: 1}}
	if err := gs.SaveAll(ctx, good); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Quantity 0 violates the CHECK constraint halfway through the batch.
	bad := []model.GroceryItem{
		{ID: 2, Name: "Eggs", Quantity: 12},
		{ID: 3, Name: "Broken", Quantity: 0},
	}
	if err := gs.SaveAll(ctx, bad); err == nil {
		t.Fatal("expected constraint error")
	}

	got, _ := gs.LoadAll(ctx)
	if !reflect.DeepEqual(got, good) {
		t.Errorf("failed save changed table: %+v", got)
	}
}

func TestGroceryDuplicateIDRejected(t *testing.T) {
	gs := setupTestDB(t)
	dup := []model.GroceryItem{
		{ID: 5, Name: "A", Quantity: 1},
		{ID: 5, Name: "B", Quantity: 1},
	}
	if err := gs.SaveAll(context.Background(), dup); err == nil {
		t.Fatal("expected primary key error")
	}
}

func TestGroceryFileReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "listify.db")
	ctx := context.Background()
	items := []model.GroceryItem{{ID: 3, Name: "Rice", Quantity: 1, Category: "Others"}}

	db, err := database.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := NewGroceryStore(db).SaveAll(ctx, items); err != nil {
		t.Fatalf("save: %v", err)
	}
	db.Close()

	db, err = database.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	got, err := NewGroceryStore(db).LoadAll(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, items) {
		t.Errorf("loaded %+v, want %+v", got, items)
	}
}
