package category

// Source identifiers. These are the keys of the extractor registry.
const (
	SourceAmazon         = "Amazon"
	SourceFlipkart       = "Flipkart"
	SourceMyntra         = "Myntra"
	SourceBigBasket      = "BigBasket"
	SourcePepperfry      = "Pepperfry"
	SourceEbay           = "eBay"
	SourceIndiaMART      = "IndiaMART"
	SourceTradeIndia     = "TradeIndia"
	SourceExportersIndia = "ExportersIndia"
)

// routingTable maps a category tag to the ordered source set queried
// for it. Immutable configuration, not runtime state.
var routingTable = map[string][]string{
	Electronics: {SourceAmazon, SourceFlipkart, SourceEbay},
	Fashion:     {SourceMyntra, SourceAmazon, SourceFlipkart},
	Grocery:     {SourceBigBasket, SourceAmazon, SourceFlipkart},
	Furniture:   {SourcePepperfry, SourceAmazon, SourceFlipkart},
	General:     {SourceAmazon, SourceFlipkart, SourceEbay},
}

var wholesaleSources = []string{SourceIndiaMART, SourceTradeIndia, SourceExportersIndia}

// SourcesFor returns the source set for a category tag. Unknown tags get
// the General set.
func SourcesFor(tag string) []string {
	if set, ok := routingTable[tag]; ok {
		return set
	}
	return routingTable[General]
}

// WholesaleSources returns the fixed B2B directory set used for
// bulk/wholesale intents regardless of category.
func WholesaleSources() []string {
	return wholesaleSources
}
