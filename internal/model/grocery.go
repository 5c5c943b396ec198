package model

// GroceryItem is a single entry on the grocery list. Identity is ID only;
// every other field is replaced wholesale on update.
type GroceryItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Category string `json:"category"`
	IsBought bool   `json:"is_bought"`
}

// CategoryEntry is the display metadata for a category chip.
type CategoryEntry struct {
	Key          string `json:"key"`
	DisplayLabel string `json:"display_label"`
	ColorToken   string `json:"color_token"`
	IconToken    string `json:"icon_token"`
}
