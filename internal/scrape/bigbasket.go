package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/guarzo/priceatlas/internal/category"
	"github.com/guarzo/priceatlas/internal/model"
)

const bigbasketMaxRecords = 6

var bigbasketCardClass = regexp.MustCompile(`SKUDeck|sku-deck|PaginateItems|product-item`)

// bigbasketExtractor scrapes BigBasket, the grocery source.
type bigbasketExtractor struct {
	client *Client
}

func (b *bigbasketExtractor) Name() string { return category.SourceBigBasket }

func (b *bigbasketExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	searchURL := "https://www.bigbasket.com/ps/?q=" + url.QueryEscape(query)

	doc, err := b.client.GetDocument(ctx, b.Name(), searchURL, "")
	if err != nil {
		return nil, err
	}

	cards := findByClassPattern(doc.Selection, "div,li", bigbasketCardClass)

	page := newPageOutcome(bigbasketMaxRecords)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := b.parseCard(card, categoryTag)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(b.Name()), nil
}

func (b *bigbasketExtractor) parseCard(card *goquery.Selection, categoryTag string) (model.ProductRecord, error) {
	title := cleanText(card.Find("h3").First().Text())
	if title == "" {
		title = cleanText(card.Find("a[title]").First().AttrOr("title", ""))
	}
	if title == "" {
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	// Discounted price renders before the struck-through MRP, so the
	// first rupee amount in the card is the selling price.
	price := ParsePrice(card.Find("span:contains('₹')").First().Text())
	if price == 0 {
		return model.ProductRecord{}, fmt.Errorf("no parseable price")
	}

	link, _ := card.Find("a[href]").First().Attr("href")
	if link != "" && !strings.HasPrefix(link, "http") {
		link = "https://www.bigbasket.com" + link
	}
	image, _ := card.Find("img").First().Attr("src")

	return model.ProductRecord{
		Title:    title,
		Category: categoryTag,
		Price:    price,
		Currency: "INR",
		URL:      link,
		Image:    image,
		Source:   b.Name(),
		Type:     model.TypeRetail,
	}, nil
}
