package scrape

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/guarzo/priceatlas/internal/category"
	"github.com/guarzo/priceatlas/internal/model"
)

const (
	ebayMaxRecords = 6

	// eBay quotes USD. Listings are converted with a fixed approximate
	// multiplier rather than the live forex table, matching the treatment
	// foreign-currency sources got upstream of the rate cache.
	ebayUSDToINR = 83.5
)

// ebayExtractor scrapes eBay search results, the auction source.
type ebayExtractor struct {
	client *Client
}

func (e *ebayExtractor) Name() string { return category.SourceEbay }

func (e *ebayExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	searchURL := "https://www.ebay.com/sch/i.html?_nkw=" + url.QueryEscape(query)

	doc, err := e.client.GetDocument(ctx, e.Name(), searchURL, "")
	if err != nil {
		return nil, err
	}

	page := newPageOutcome(ebayMaxRecords)
	doc.Find("li.s-item").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := e.parseCard(card, categoryTag)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(e.Name()), nil
}

func (e *ebayExtractor) parseCard(card *goquery.Selection, categoryTag string) (model.ProductRecord, error) {
	title := cleanText(card.Find(".s-item__title").First().Text())
	if title == "" || strings.EqualFold(title, "Shop on eBay") {
		// The first grid slot is a promo card, not a listing.
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	// Price ranges ("$10.00 to $25.00") take the lower bound.
	usd := ParsePrice(card.Find(".s-item__price").First().Text())
	if usd == 0 {
		return model.ProductRecord{}, fmt.Errorf("no parseable price")
	}
	inr := math.Round(usd*ebayUSDToINR*100) / 100

	link, _ := card.Find("a.s-item__link").First().Attr("href")
	image, _ := card.Find(".s-item__image img").First().Attr("src")

	return model.ProductRecord{
		Title:    title,
		Category: categoryTag,
		Price:    inr,
		Currency: "INR",
		URL:      link,
		Image:    image,
		Source:   e.Name(),
		Type:     model.TypeRetail,
	}, nil
}
