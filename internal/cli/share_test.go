package cli

import (
	"strings"
	"testing"

	"github.com/villegasmiguelangel268-maker/listify/internal/grocery"
	"github.com/villegasmiguelangel268-maker/listify/internal/model"
)

func TestShareMarkdown(t *testing.T) {
	items := []model.GroceryItem{
		{ID: 1, Name: "Milk", Quantity: 2, Category: "Drinks"},
		{ID: 2, Name: "Bread", Quantity: 1},
		{ID: 3, Name: "Apples", Quantity: 5, Category: "Fruits", IsBought: true},
		{ID: 4, Name: "Cheese", Quantity: 1, Category: "Dairy"},
		{ID: 5, Name: "Juice", Quantity: 1, Category: "drinks"},
	}

	got := shareMarkdown(items, grocery.DefaultRegistry())
	want := `# Grocery list

## Fruits

- [x] Apples x5

## Drinks

- [ ] Milk x2
- [ ] Juice x1

## Other items

- [ ] Bread x1
- [ ] Cheese x1
`
	if got != want {
		t.Errorf("shareMarkdown =\n%s\nwant\n%s", got, want)
	}
}

func TestShareMarkdownEmpty(t *testing.T) {
	got := shareMarkdown(nil, grocery.DefaultRegistry())
	if !strings.Contains(got, "Nothing to buy.") {
		t.Errorf("got %q", got)
	}
}

func TestShareMarkdownEscapesNames(t *testing.T) {
	items := []model.GroceryItem{
		{ID: 1, Name: "# Milk\n## now", Quantity: 1},
		{ID: 2, Name: "[x] *cheap*  bread", Quantity: 2},
	}

	got := shareMarkdown(items, grocery.DefaultRegistry())
	want := `# Grocery list

## Other items

- [ ] \# Milk \#\# now x1
- [ ] \[x\] \*cheap\* bread x2
`
	if got != want {
		t.Errorf("shareMarkdown =\n%s\nwant\n%s", got, want)
	}
}

func TestItemsShareCommand(t *testing.T) {
	db := isolate(t)
	mustRun(t, "--db", db, "items", "add", "Milk")

	raw := string(mustRun(t, "--db", db, "items", "share", "--raw"))
	if !strings.Contains(raw, "## Drinks") || !strings.Contains(raw, "- [ ] Milk x1") {
		t.Errorf("raw output = %q", raw)
	}

	rendered := string(mustRun(t, "--db", db, "--no-color", "items", "share"))
	if !strings.Contains(rendered, "Milk x1") {
		t.Errorf("rendered output = %q", rendered)
	}
}
