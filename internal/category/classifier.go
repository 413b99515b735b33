package category

import "strings"

// Category tags used by the routing table.
const (
	Electronics = "electronics"
	Fashion     = "fashion"
	Grocery     = "grocery"
	Furniture   = "furniture"
	General     = "general"
)

// entry pairs a category with its trigger keywords. Entries are scanned
// in order and the first keyword hit wins, so the slice order is the
// tie-break rule.
type entry struct {
	tag      string
	keywords []string
}

var keywordTable = []entry{
	{Electronics, []string{
		"iphone", "phone", "mobile", "laptop", "macbook", "tablet", "ipad",
		"tv", "television", "camera", "headphone", "earbud", "speaker",
		"monitor", "console", "smartwatch",
	}},
	{Fashion, []string{
		"shirt", "tshirt", "t-shirt", "jeans", "dress", "saree", "kurta",
		"shoe", "sneaker", "sandal", "jacket", "hoodie", "trouser", "lehenga",
	}},
	{Grocery, []string{
		"rice", "atta", "flour", "sugar", "salt", "oil", "ghee", "dal",
		"milk", "tea", "coffee", "biscuit", "masala", "spice",
	}},
	{Furniture, []string{
		"sofa", "bed", "mattress", "table", "chair", "wardrobe", "desk",
		"bookshelf", "recliner", "dining",
	}},
}

// Classify maps a free-text query to a category tag. Matching is plain
// substring containment on the lowercased query; queries that trigger
// nothing fall back to General.
func Classify(query string) string {
	q := strings.ToLower(query)
	for _, e := range keywordTable {
		for _, kw := range e.keywords {
			if strings.Contains(q, kw) {
				return e.tag
			}
		}
	}
	return General
}
