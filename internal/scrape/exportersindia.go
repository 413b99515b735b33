package scrape

import (
	"context"
	"fmt"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/guarzo/priceatlas/internal/category"
	"github.com/guarzo/priceatlas/internal/model"
)

const (
	exportersindiaMaxRecords = 4
	exportersindiaLogo       = "https://img.etimg.com/thumb/msid-64687661,width-300,imgsize-12497,,resizemode-4,quality-100/exporters-india.jpg"
)

var (
	exportersindiaCardClass  = regexp.MustCompile(`c-row|ser-row|b-list`)
	exportersindiaTitleClass = regexp.MustCompile(`pname|title`)
)

type exportersindiaExtractor struct {
	client *Client
}

func (e *exportersindiaExtractor) Name() string { return category.SourceExportersIndia }

func (e *exportersindiaExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	searchURL := "https://www.exportersindia.com/search.php?term=" + url.QueryEscape(query)

	doc, err := e.client.GetDocument(ctx, e.Name(), searchURL, mobileUserAgent)
	if err != nil {
		return nil, err
	}

	cards := findByClassPattern(doc.Selection, "div", exportersindiaCardClass)

	page := newPageOutcome(exportersindiaMaxRecords)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := e.parseCard(card)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(e.Name()), nil
}

func (e *exportersindiaExtractor) parseCard(card *goquery.Selection) (model.ProductRecord, error) {
	titleTag := findByClassPattern(card, "a", exportersindiaTitleClass).First()
	title := cleanText(titleTag.Text())
	if title == "" {
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	priceText := cleanText(card.Find("div.price").First().Text())
	if priceText == "" {
		priceText = "Quote Only"
	}

	seller := cleanText(card.Find("a.cname").First().Text())
	if seller == "" {
		seller = "Verified Exporter"
	}

	return model.ProductRecord{
		Title:     title,
		Price:     ParsePrice(priceText),
		PriceText: priceText,
		Currency:  "INR",
		URL:       titleTag.AttrOr("href", ""),
		Image:     exportersindiaLogo,
		Seller:    seller,
		Address:   "View Profile",
		Source:    e.Name(),
		Type:      model.TypeB2B,
	}, nil
}
