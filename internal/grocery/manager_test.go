package grocery

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"testing"

	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

func newTestManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]Option{WithLogger(logger)}, opts...)
	return NewManager(NewMemStore(), opts...)
}

// sequentialIDs returns a generator yielding ids in order, then 1, 2, 3...
func sequentialIDs(ids ...int64) func() int64 {
	var mu sync.Mutex
	next := int64(1000)
	return func() int64 {
		mu.Lock()
		defer mu.Unlock()
		if len(ids) > 0 {
			id := ids[0]
			ids = ids[1:]
			return id
		}
		next++
		return next
	}
}

func mustAdd(t *testing.T, m *Manager, name string, qty int, category string) model.GroceryItem {
	t.Helper()
	item, err := m.Add(context.Background(), model.GroceryItem{Name: name, Quantity: qty, Category: category})
	if err != nil {
		t.Fatalf("add %q: %v", name, err)
	}
	return item
}

func TestAddAssignsIDAndStores(t *testing.T) {
	m := newTestManager(t)

	item := mustAdd(t, m, "  Milk ", 2, "Drinks")
	if item.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if item.Name != "Milk" {
		t.Errorf("name = %q, want %q", item.Name, "Milk")
	}
	if item.IsBought {
		t.Error("expected not bought")
	}

	items := m.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0] != item {
		t.Errorf("stored = %+v, want %+v", items[0], item)
	}
}

func TestAddKeepsExplicitID(t *testing.T) {
	m := newTestManager(t)
	item, err := m.Add(context.Background(), model.GroceryItem{ID: 77, Name: "Bread", Quantity: 1})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.ID != 77 {
		t.Errorf("id = %d, want 77", item.ID)
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name  string
		item  model.GroceryItem
		field string
	}{
		{"blank name", model.GroceryItem{Name: " ", Quantity: 1}, "name"},
		{"empty name", model.GroceryItem{Name: "", Quantity: 1}, "name"},
		{"zero quantity", model.GroceryItem{Name: "Eggs", Quantity: 0}, "quantity"},
		{"negative quantity", model.GroceryItem{Name: "Eggs", Quantity: -3}, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			_, err := m.Add(context.Background(), tt.item)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Errorf("expected field %q, got %v", tt.field, err)
			}
			if got := len(m.Items()); got != 0 {
				t.Errorf("expected empty store, got %d items", got)
			}
		})
	}
}

func TestAddDuplicateID(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "Milk", 1, "")
	first := m.Items()[0]

	_, err := m.Add(context.Background(), model.GroceryItem{ID: first.ID, Name: "Other", Quantity: 1})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if got := len(m.Items()); got != 1 {
		t.Errorf("expected 1 item, got %d", got)
	}
}

func TestGeneratedIDSkipsCollisions(t *testing.T) {
	m := newTestManager(t, WithIDGenerator(sequentialIDs(5, 5, 5, 6)))
	a := mustAdd(t, m, "A", 1, "")
	b := mustAdd(t, m, "B", 1, "")
	if a.ID != 5 || b.ID != 6 {
		t.Errorf("ids = %d, %d; want 5, 6", a.ID, b.ID)
	}
}

func TestGeneratedIDSkipsPendingUndo(t *testing.T) {
	m := newTestManager(t, WithIDGenerator(sequentialIDs(5, 5, 9)))
	a := mustAdd(t, m, "A", 1, "")
	if _, err := m.DeleteWithUndo(context.Background(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	b := mustAdd(t, m, "B", 1, "")
	if b.ID != 9 {
		t.Errorf("id = %d, want 9 (5 is held by the undo slot)", b.ID)
	}
}

func TestGeneratedIDExhausted(t *testing.T) {
	m := newTestManager(t, WithIDGenerator(func() int64 { return 3 }))
	mustAdd(t, m, "A", 1, "")
	_, err := m.Add(context.Background(), model.GroceryItem{Name: "B", Quantity: 1})
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUpdateReplacesRecord(t *testing.T) {
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "Fruits")
	mustAdd(t, m, "Bread", 1, "")

	a.Quantity = 7
	a.IsBought = true
	got, err := m.Update(context.Background(), a)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got != a {
		t.Errorf("update returned %+v, want %+v", got, a)
	}
	items := m.Items()
	if items[0] != a {
		t.Errorf("stored = %+v, want %+v", items[0], a)
	}
	if items[1].Name != "Bread" {
		t.Errorf("order changed: %+v", items)
	}
}

func TestUpdateIdempotent(t *testing.T) {
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "Fruits")
	a.Name = "Green Apples"

	if _, err := m.Update(context.Background(), a); err != nil {
		t.Fatalf("update: %v", err)
	}
	once := m.Items()
	if _, err := m.Update(context.Background(), a); err != nil {
		t.Fatalf("update: %v", err)
	}
	if twice := m.Items(); !reflect.DeepEqual(once, twice) {
		t.Errorf("second update changed state: %+v vs %+v", once, twice)
	}
}

func TestUpdateMissing(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "Apples", 5, "")
	before := m.Items()

	_, err := m.Update(context.Background(), model.GroceryItem{ID: 424242, Name: "Ghost", Quantity: 1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if after := m.Items(); !reflect.DeepEqual(before, after) {
		t.Errorf("state changed: %+v", after)
	}

	// Manager stays usable.
	mustAdd(t, m, "Bread", 1, "")
}

func TestUpdateValidation(t *testing.T) {
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")
	a.Quantity = 0
	if _, err := m.Update(context.Background(), a); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := m.Items()[0].Quantity; got != 5 {
		t.Errorf("quantity = %d, want 5", got)
	}
}

func TestToggleBought(t *testing.T) {
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")

	got, err := m.ToggleBought(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !got.IsBought {
		t.Error("expected bought after first toggle")
	}
	got, _ = m.ToggleBought(context.Background(), a.ID)
	if got.IsBought {
		t.Error("expected not bought after second toggle")
	}

	if _, err := m.ToggleBought(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")

	if err := m.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := len(m.Items()); got != 0 {
		t.Errorf("expected empty, got %d", got)
	}
	if err := m.Delete(context.Background(), a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, ok := m.PendingUndo(); ok {
		t.Error("plain delete must not fill the undo slot")
	}
}

func TestDeleteWithUndoScenario(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "Fruits")
	if got := len(m.Items()); got != 1 {
		t.Fatalf("expected 1 item, got %d", got)
	}

	deleted, err := m.DeleteWithUndo(ctx, a.ID)
	if err != nil {
		t.Fatalf("delete with undo: %v", err)
	}
	if deleted != a {
		t.Errorf("deleted = %+v, want %+v", deleted, a)
	}
	if got := len(m.Items()); got != 0 {
		t.Fatalf("expected empty store, got %d", got)
	}
	pending, ok := m.PendingUndo()
	if !ok || pending != a {
		t.Fatalf("undo slot = %+v (%v), want %+v", pending, ok, a)
	}

	restored, ok, err := m.UndoDelete(ctx)
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if restored != a {
		t.Errorf("restored = %+v, want %+v", restored, a)
	}
	items := m.Items()
	if len(items) != 1 || items[0] != a {
		t.Errorf("store = %+v, want [%+v]", items, a)
	}
	if _, ok := m.PendingUndo(); ok {
		t.Error("expected empty undo slot after undo")
	}
}

func TestDeleteUndoRoundTripRestoresState(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	mustAdd(t, m, "Apples", 5, "Fruits")
	b := mustAdd(t, m, "Bread", 1, "")
	b, _ = m.ToggleBought(ctx, b.ID)
	mustAdd(t, m, "Cheese", 2, "")

	before := m.Items()
	if _, err := m.DeleteWithUndo(ctx, b.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := m.UndoDelete(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	after := m.Items()

	if !sameSet(before, after) {
		t.Errorf("round trip changed items:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUndoWithEmptySlotIsNoop(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "Apples", 5, "")

	item, ok, err := m.UndoDelete(context.Background())
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if ok {
		t.Errorf("expected nothing restored, got %+v", item)
	}
	if got := len(m.Items()); got != 1 {
		t.Errorf("expected 1 item, got %d", got)
	}
}

func TestDeleteWithUndoOverwritesSlot(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")
	b := mustAdd(t, m, "Bread", 1, "")

	m.DeleteWithUndo(ctx, a.ID)
	m.DeleteWithUndo(ctx, b.ID)

	restored, ok, err := m.UndoDelete(ctx)
	if err != nil || !ok {
		t.Fatalf("undo: ok=%v err=%v", ok, err)
	}
	if restored.ID != b.ID {
		t.Errorf("restored %d, want %d", restored.ID, b.ID)
	}
	items := m.Items()
	if len(items) != 1 || items[0].ID != b.ID {
		t.Errorf("store = %+v, want only B", items)
	}

	// A is gone for good; a second undo does nothing.
	if _, ok, _ := m.UndoDelete(ctx); ok {
		t.Error("second undo should restore nothing")
	}
}

func TestDeleteWithUndoMissingKeepsSlot(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")
	m.DeleteWithUndo(ctx, a.ID)

	if _, err := m.DeleteWithUndo(ctx, 123456); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if pending, ok := m.PendingUndo(); !ok || pending.ID != a.ID {
		t.Errorf("undo slot = %+v (%v), want A", pending, ok)
	}
}

func TestUndoSlotSurvivesUnrelatedMutations(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")
	b := mustAdd(t, m, "Bread", 1, "")
	c := mustAdd(t, m, "Cheese", 1, "")

	m.DeleteWithUndo(ctx, a.ID)

	mustAdd(t, m, "Dates", 3, "")
	b.Quantity = 4
	if _, err := m.Update(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := m.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := m.HandleReturnedItem(ctx, model.GroceryItem{ID: 77, Name: "Eggs", Quantity: 12}); err != nil {
		t.Fatalf("returned: %v", err)
	}

	pending, ok := m.PendingUndo()
	if !ok || pending != a {
		t.Fatalf("undo slot = %+v (%v), want %+v", pending, ok, a)
	}
	restored, ok, err := m.UndoDelete(ctx)
	if err != nil || !ok || restored != a {
		t.Errorf("undo = %+v ok=%v err=%v", restored, ok, err)
	}
}

func TestUndoConflictKeepsSlot(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")
	m.DeleteWithUndo(ctx, a.ID)

	// The edit flow hands the same id back before undo is pressed.
	if _, err := m.HandleReturnedItem(ctx, a); err != nil {
		t.Fatalf("returned: %v", err)
	}
	if _, _, err := m.UndoDelete(ctx); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if _, ok := m.PendingUndo(); !ok {
		t.Error("failed undo should keep the slot")
	}
}

func TestHandleReturnedItemUpsert(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")

	edited := a
	edited.Name = "Red Apples"
	got, err := m.HandleReturnedItem(ctx, edited)
	if err != nil {
		t.Fatalf("returned edit: %v", err)
	}
	if got != edited {
		t.Errorf("got %+v, want %+v", got, edited)
	}
	if items := m.Items(); len(items) != 1 || items[0].Name != "Red Apples" {
		t.Errorf("store = %+v", items)
	}

	created, err := m.HandleReturnedItem(ctx, model.GroceryItem{ID: 99, Name: "Bread", Quantity: 1})
	if err != nil {
		t.Fatalf("returned new: %v", err)
	}
	if created.ID != 99 {
		t.Errorf("id = %d, want 99", created.ID)
	}
	if got := len(m.Items()); got != 2 {
		t.Errorf("expected 2 items, got %d", got)
	}
}

func TestHandleReturnedItemIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	mustAdd(t, m, "Apples", 5, "")

	item := model.GroceryItem{ID: 55, Name: "Bread", Quantity: 2, Category: "Others"}
	if _, err := m.HandleReturnedItem(ctx, item); err != nil {
		t.Fatalf("first: %v", err)
	}
	once := m.Items()
	if _, err := m.HandleReturnedItem(ctx, item); err != nil {
		t.Fatalf("second: %v", err)
	}
	if twice := m.Items(); !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent:\nonce  %+v\ntwice %+v", once, twice)
	}
}

func TestHandleReturnedItemValidation(t *testing.T) {
	m := newTestManager(t)
	_, err := m.HandleReturnedItem(context.Background(), model.GroceryItem{ID: 3, Name: "", Quantity: 1})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestHandleReturnedItemRequiresID(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, WithIDGenerator(sequentialIDs(40, 41)))

	_, err := m.HandleReturnedItem(ctx, model.GroceryItem{Name: "Bread", Quantity: 2})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "id" {
		t.Fatalf("expected id ValidationError, got %v", err)
	}
	if got := m.Items(); len(got) != 0 {
		t.Fatalf("id-less record was stored: %+v", got)
	}

	// An add flow takes its id up front; returning that record twice adds once.
	id, err := m.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	fresh := model.GroceryItem{ID: id, Name: "Bread", Quantity: 2}
	for i := 0; i < 2; i++ {
		if _, err := m.HandleReturnedItem(ctx, fresh); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	if got := m.Items(); len(got) != 1 || got[0] != fresh {
		t.Errorf("items = %+v, want [%+v]", got, fresh)
	}
}

func TestNewIDSkipsTakenIDs(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, WithIDGenerator(sequentialIDs(1, 1, 2, 3)))
	a := mustAdd(t, m, "Apples", 1, "")
	if a.ID != 1 {
		t.Fatalf("id = %d", a.ID)
	}
	m.DeleteWithUndo(ctx, a.ID)
	mustAdd(t, m, "Bread", 1, "")

	// 1 sits in the undo slot and 2 is live.
	id, err := m.NewID()
	if err != nil || id != 3 {
		t.Errorf("NewID = %d, %v; want 3", id, err)
	}
}

func TestAutoCategorize(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, WithAutoCategorize(true))

	milk := mustAdd(t, m, "Milk", 1, "")
	if milk.Category != "Drinks" {
		t.Errorf("category = %q, want Drinks", milk.Category)
	}
	custom := mustAdd(t, m, "Milk", 1, "Dairy")
	if custom.Category != "Dairy" {
		t.Errorf("explicit category overwritten: %q", custom.Category)
	}

	// Undo restores the exact record, even with a blank category.
	plain := model.GroceryItem{ID: 7, Name: "Salmon", Quantity: 1}
	if err := m.ReplaceAll(ctx, []model.GroceryItem{plain}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	m.DeleteWithUndo(ctx, 7)
	restored, _, err := m.UndoDelete(ctx)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if restored.Category != "" {
		t.Errorf("undo changed category to %q", restored.Category)
	}
}

func TestReplaceAll(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	a := mustAdd(t, m, "Apples", 5, "")
	m.DeleteWithUndo(ctx, a.ID)

	next := []model.GroceryItem{
		{ID: 1, Name: "Bread", Quantity: 1},
		{ID: 2, Name: "Milk", Quantity: 2, Category: "Drinks"},
	}
	if err := m.ReplaceAll(ctx, next); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got := m.Items(); !reflect.DeepEqual(got, next) {
		t.Errorf("items = %+v, want %+v", got, next)
	}
	if _, ok := m.PendingUndo(); ok {
		t.Error("replace should clear the undo slot")
	}

	bad := []model.GroceryItem{{ID: 1, Name: "X", Quantity: 1}, {ID: 1, Name: "Y", Quantity: 1}}
	if err := m.ReplaceAll(ctx, bad); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("expected ErrDuplicateID, got %v", err)
	}
	if err := m.ReplaceAll(ctx, []model.GroceryItem{{Name: "X", Quantity: 1}}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for missing id, got %v", err)
	}
	if got := m.Items(); !reflect.DeepEqual(got, next) {
		t.Errorf("failed replace changed items: %+v", got)
	}
}

func TestSearch(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "Milk", 1, "Drinks")
	mustAdd(t, m, "Eggs", 12, "Others")

	got := m.Search("dr")
	if len(got) != 1 || got[0].Name != "Milk" {
		t.Errorf("search = %+v", got)
	}
	if got := m.Search(""); len(got) != 2 {
		t.Errorf("empty search returned %d items", len(got))
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	mustAdd(t, m, "Apples", 5, "")

	var got [][]model.GroceryItem
	unsubscribe := m.Subscribe(func(items []model.GroceryItem) {
		got = append(got, items)
	})

	b := mustAdd(t, m, "Bread", 1, "")
	m.DeleteWithUndo(ctx, b.ID)
	m.UndoDelete(ctx)

	// Failed mutations do not notify.
	m.Add(ctx, model.GroceryItem{Name: " ", Quantity: 1})
	m.Delete(ctx, 999999)

	wantLens := []int{1, 2, 1, 2}
	if len(got) != len(wantLens) {
		t.Fatalf("got %d notifications, want %d", len(got), len(wantLens))
	}
	for i, n := range wantLens {
		if len(got[i]) != n {
			t.Errorf("notification %d has %d items, want %d", i, len(got[i]), n)
		}
	}

	unsubscribe()
	unsubscribe()
	mustAdd(t, m, "Cheese", 1, "")
	if len(got) != len(wantLens) {
		t.Errorf("listener called after unsubscribe")
	}
}

func TestSubscribersGetCopies(t *testing.T) {
	m := newTestManager(t)
	mustAdd(t, m, "Apples", 5, "")

	m.Subscribe(func(items []model.GroceryItem) {
		for i := range items {
			items[i].Name = "mutated"
		}
	})
	mustAdd(t, m, "Bread", 1, "")

	for _, item := range m.Items() {
		if item.Name == "mutated" {
			t.Fatal("listener mutation leaked into the live view")
		}
	}
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	var mu sync.Mutex
	var lastLen int
	m.Subscribe(func(items []model.GroceryItem) {
		mu.Lock()
		lastLen = len(items)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			item, err := m.Add(ctx, model.GroceryItem{Name: "item", Quantity: 1})
			if err != nil {
				t.Errorf("add: %v", err)
				return
			}
			_ = m.Items()
			if i%2 == 0 {
				if _, err := m.DeleteWithUndo(ctx, item.ID); err != nil {
					t.Errorf("delete: %v", err)
				}
			}
		}()
	}
	wg.Wait()

	items := m.Items()
	seen := make(map[int64]bool)
	for _, item := range items {
		if seen[item.ID] {
			t.Fatalf("duplicate id %d", item.ID)
		}
		seen[item.ID] = true
	}
	if len(items) != 25 {
		t.Errorf("expected 25 items, got %d", len(items))
	}
	mu.Lock()
	defer mu.Unlock()
	if lastLen != len(items) {
		t.Errorf("last notification had %d items, live view has %d", lastLen, len(items))
	}
}

func sameSet(a, b []model.GroceryItem) bool {
	if len(a) != len(b) {
		return false
	}
	byID := make(map[int64]model.GroceryItem, len(a))
	for _, item := range a {
		byID[item.ID] = item
	}
	for _, item := range b {
		if byID[item.ID] != item {
			return false
		}
	}
	return true
}
