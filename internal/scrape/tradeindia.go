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

const tradeindiaMaxRecords = 6

var (
	tradeindiaCardClass   = regexp.MustCompile(`product-card|search-product-box|details`)
	tradeindiaSellerClass = regexp.MustCompile(`company|seller|name`)

	// Sellers rarely structure their location; fish a major city out of
	// the card's raw text instead.
	tradeindiaCity = regexp.MustCompile(`Delhi|Mumbai|Pune|Ahmedabad|Chennai|Bangalore|Kolkata|Surat|Jaipur|Lucknow`)
)

type tradeindiaExtractor struct {
	client *Client
}

func (t *tradeindiaExtractor) Name() string { return category.SourceTradeIndia }

func (t *tradeindiaExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	searchURL := "https://www.tradeindia.com/search.html?keyword=" + url.QueryEscape(query)

	doc, err := t.client.GetDocument(ctx, t.Name(), searchURL, mobileUserAgent)
	if err != nil {
		return nil, err
	}

	cards := findByClassPattern(doc.Selection, "div", tradeindiaCardClass)

	page := newPageOutcome(tradeindiaMaxRecords)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := t.parseCard(card)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(t.Name()), nil
}

func (t *tradeindiaExtractor) parseCard(card *goquery.Selection) (model.ProductRecord, error) {
	titleTag := card.Find("a[href]").First()
	title := cleanText(titleTag.Text())
	if len(title) < 5 {
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	link := titleTag.AttrOr("href", "")
	if !strings.HasPrefix(link, "http") {
		link = "https://www.tradeindia.com" + link
	}

	seller := cleanText(findByClassPattern(card, "p,span", tradeindiaSellerClass).First().Text())
	if seller == "" {
		seller = "Verified Supplier"
	}

	address := "India"
	if city := tradeindiaCity.FindString(card.Text()); city != "" {
		address = city
	}

	return model.ProductRecord{
		Title:     title,
		PriceText: "Check Quote",
		Currency:  "INR",
		URL:       link,
		Image:     indiamartLogo,
		Seller:    seller,
		Address:   address,
		Source:    t.Name(),
		Type:      model.TypeB2B,
	}, nil
}
