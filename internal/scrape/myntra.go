package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/guarzo/priceatlas/internal/category"
	"github.com/guarzo/priceatlas/internal/model"
)

const myntraMaxRecords = 8

// myntraExtractor scrapes Myntra, the fashion source. Myntra renders a
// server-side product grid under li.product-base with stable class
// names, the easiest markup of the retail set.
type myntraExtractor struct {
	client *Client
}

func (m *myntraExtractor) Name() string { return category.SourceMyntra }

func (m *myntraExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	slug := strings.ReplaceAll(strings.TrimSpace(query), " ", "-")
	searchURL := "https://www.myntra.com/" + url.PathEscape(slug)

	doc, err := m.client.GetDocument(ctx, m.Name(), searchURL, "")
	if err != nil {
		return nil, err
	}

	page := newPageOutcome(myntraMaxRecords)
	doc.Find("li.product-base").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := m.parseCard(card, categoryTag)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(m.Name()), nil
}

func (m *myntraExtractor) parseCard(card *goquery.Selection, categoryTag string) (model.ProductRecord, error) {
	brand := cleanText(card.Find("h3.product-brand").First().Text())
	name := cleanText(card.Find("h4.product-product").First().Text())
	title := cleanText(brand + " " + name)
	if title == "" {
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	// "Rs. 699" or "Rs. 699 Rs. 1399" with the struck-through MRP second.
	price := ParsePrice(card.Find("span.product-discountedPrice").First().Text())
	if price == 0 {
		price = ParsePrice(card.Find("div.product-price").First().Text())
	}
	if price == 0 {
		return model.ProductRecord{}, fmt.Errorf("no parseable price")
	}

	link, _ := card.Find("a[href]").First().Attr("href")
	if link != "" && !strings.HasPrefix(link, "http") {
		link = "https://www.myntra.com/" + strings.TrimPrefix(link, "/")
	}
	image, _ := card.Find("img").First().Attr("src")

	return model.ProductRecord{
		Title:    title,
		Brand:    brand,
		Category: categoryTag,
		Price:    price,
		Currency: "INR",
		URL:      link,
		Image:    image,
		Source:   m.Name(),
		Type:     model.TypeRetail,
	}, nil
}
