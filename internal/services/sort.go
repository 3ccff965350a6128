package services

// SortOption pairs a sort key with its display label.
type SortOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SortOptions lists every sort key the catalog accepts, in display order.
var SortOptions = []SortOption{
	{Value: "name-asc", Label: "Name (A-Z)"},
	{Value: "name-desc", Label: "Name (Z-A)"},
	{Value: "price-asc", Label: "Price (Low to High)"},
	{Value: "price-desc", Label: "Price (High to Low)"},
	{Value: "newest", Label: "Newest First"},
	{Value: "oldest", Label: "Oldest First"},
	{Value: "stock-asc", Label: "Stock (Low to High)"},
	{Value: "stock-desc", Label: "Stock (High to Low)"},
}

// SortClause maps a sort key to an ORDER BY clause for the product listing.
// Unknown or empty keys fall back to name ascending.
func SortClause(sortBy string) string {
	switch sortBy {
	case "name-desc":
		return "name desc"
	case "price-asc":
		return "price asc"
	case "price-desc":
		return "price desc"
	case "newest":
		return "created_at desc"
	case "oldest":
		return "created_at asc"
	case "stock-asc":
		return "stock asc"
	case "stock-desc":
		return "stock desc"
	default:
		return "name asc"
	}
}
