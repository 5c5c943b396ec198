package grocery

import "strings"

// Categorize suggests a registry category key for the given item name.
// It performs case-insensitive matching: exact match first, then substring match.
// Returns "" (uncategorized) if no match is found.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return ""
	}

	// Phase 1: exact match
	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	// Phase 2: substring match (ordered longer/more-specific first)
	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return ""
}

var exactMatch = map[string]string{
	// Fruits
	"apple":        "Fruits",
	"apples":       "Fruits",
	"banana":       "Fruits",
	"bananas":      "Fruits",
	"orange":       "Fruits",
	"oranges":      "Fruits",
	"lemon":        "Fruits",
	"lemons":       "Fruits",
	"lime":         "Fruits",
	"limes":        "Fruits",
	"grapes":       "Fruits",
	"strawberries": "Fruits",
	"blueberries":  "Fruits",
	"watermelon":   "Fruits",
	"pineapple":    "Fruits",
	"mango":        "Fruits",
	"mangoes":      "Fruits",
	"peach":        "Fruits",
	"peaches":      "Fruits",
	"pear":         "Fruits",
	"pears":        "Fruits",
	"avocado":      "Fruits",
	"avocados":     "Fruits",
	"papaya":       "Fruits",
	"kiwi":         "Fruits",

	// Vegetables
	"tomato":      "Vegetables",
	"tomatoes":    "Vegetables",
	"potato":      "Vegetables",
	"potatoes":    "Vegetables",
	"onion":       "Vegetables",
	"onions":      "Vegetables",
	"garlic":      "Vegetables",
	"lettuce":     "Vegetables",
	"spinach":     "Vegetables",
	"kale":        "Vegetables",
	"broccoli":    "Vegetables",
	"carrot":      "Vegetables",
	"carrots":     "Vegetables",
	"celery":      "Vegetables",
	"cucumber":    "Vegetables",
	"cucumbers":   "Vegetables",
	"peppers":     "Vegetables",
	"mushrooms":   "Vegetables",
	"corn":        "Vegetables",
	"cabbage":     "Vegetables",
	"zucchini":    "Vegetables",
	"asparagus":   "Vegetables",
	"green beans": "Vegetables",
	"ginger":      "Vegetables",

	// Meat
	"chicken":   "Meat",
	"beef":      "Meat",
	"pork":      "Meat",
	"ham":       "Meat",
	"bacon":     "Meat",
	"sausage":   "Meat",
	"sausages":  "Meat",
	"turkey":    "Meat",
	"lamb":      "Meat",
	"steak":     "Meat",
	"pepperoni": "Meat",

	// Seafood
	"salmon":  "Seafood",
	"tuna":    "Seafood",
	"shrimp":  "Seafood",
	"prawns":  "Seafood",
	"crab":    "Seafood",
	"squid":   "Seafood",
	"mussels": "Seafood",
	"tilapia": "Seafood",
	"cod":     "Seafood",

	// Snacks
	"chips":        "Snacks",
	"crackers":     "Snacks",
	"cookies":      "Snacks",
	"popcorn":      "Snacks",
	"pretzels":     "Snacks",
	"nuts":         "Snacks",
	"candy":        "Snacks",
	"chocolate":    "Snacks",
	"granola bars": "Snacks",

	// Drinks
	"milk":   "Drinks",
	"coffee": "Drinks",
	"tea":    "Drinks",
	"juice":  "Drinks",
	"soda":   "Drinks",
	"water":  "Drinks",
	"beer":   "Drinks",
	"wine":   "Drinks",

	// Frozen
	"ice cream": "Frozen",
	"ice":       "Frozen",
	"popsicles": "Frozen",

	// Household
	"paper towels":  "Household",
	"toilet paper":  "Household",
	"trash bags":    "Household",
	"dish soap":     "Household",
	"detergent":     "Household",
	"sponges":       "Household",
	"aluminum foil": "Household",
	"batteries":     "Household",
	"light bulbs":   "Household",
}

type substringEntry struct {
	keyword  string
	category string
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Frozen first: "frozen peas" is Frozen, not Vegetables
	{"frozen", "Frozen"},
	{"ice cream", "Frozen"},
	{"popsicle", "Frozen"},

	// Drinks before fruit: "apple juice" is a drink
	{"juice", "Drinks"},
	{"sparkling water", "Drinks"},
	{"almond milk", "Drinks"},
	{"oat milk", "Drinks"},
	{"milk", "Drinks"},
	{"coffee", "Drinks"},
	{"soda", "Drinks"},
	{"lemonade", "Drinks"},
	{"beer", "Drinks"},
	{"wine", "Drinks"},

	// Snacks before vegetables: "popcorn" contains "corn"
	{"popcorn", "Snacks"},
	{"potato chips", "Snacks"},
	{"tortilla chips", "Snacks"},
	{"chips", "Snacks"},
	{"cracker", "Snacks"},
	{"cookie", "Snacks"},
	{"pretzel", "Snacks"},
	{"chocolate", "Snacks"},
	{"candy", "Snacks"},
	{"granola", "Snacks"},
	{"peanut", "Snacks"},

	// Meat
	{"pepperoni", "Meat"},
	{"chicken", "Meat"},
	{"ground beef", "Meat"},
	{"beef", "Meat"},
	{"pork", "Meat"},
	{"bacon", "Meat"},
	{"sausage", "Meat"},
	{"turkey", "Meat"},
	{"steak", "Meat"},

	// Seafood
	{"salmon", "Seafood"},
	{"tuna", "Seafood"},
	{"shrimp", "Seafood"},
	{"fish", "Seafood"},
	{"crab", "Seafood"},
	{"lobster", "Seafood"},
	{"oyster", "Seafood"},

	// Household
	{"paper towel", "Household"},
	{"toilet paper", "Household"},
	{"trash bag", "Household"},
	{"soap", "Household"},
	{"detergent", "Household"},
	{"bleach", "Household"},
	{"cleaner", "Household"},
	{"sponge", "Household"},
	{"napkin", "Household"},

	// Fruits before vegetables: "watermelon" must not hit "melon" later, "pineapple" before "apple"
	{"watermelon", "Fruits"},
	{"pineapple", "Fruits"},
	{"berries", "Fruits"},
	{"berry", "Fruits"},
	{"apple", "Fruits"},
	{"banana", "Fruits"},
	{"orange", "Fruits"},
	{"grape", "Fruits"},
	{"melon", "Fruits"},
	{"mango", "Fruits"},
	{"peach", "Fruits"},
	{"pear", "Fruits"},
	{"lemon", "Fruits"},
	{"fruit", "Fruits"},

	// Vegetables
	{"sweet potato", "Vegetables"},
	{"bell pepper", "Vegetables"},
	{"green onion", "Vegetables"},
	{"baby spinach", "Vegetables"},
	{"salad", "Vegetables"},
	{"lettuce", "Vegetables"},
	{"spinach", "Vegetables"},
	{"tomato", "Vegetables"},
	{"potato", "Vegetables"},
	{"onion", "Vegetables"},
	{"pepper", "Vegetables"},
	{"carrot", "Vegetables"},
	{"broccoli", "Vegetables"},
	{"cabbage", "Vegetables"},
	{"mushroom", "Vegetables"},
	{"bean", "Vegetables"},
	{"corn", "Vegetables"},
	{"pea", "Vegetables"},
}
