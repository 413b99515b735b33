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

const pepperfryMaxRecords = 6

var (
	pepperfryCardClass  = regexp.MustCompile(`product-card|clip-prd|card-wrapper`)
	pepperfryPriceClass = regexp.MustCompile(`offer-price|product-price|price`)
)

// pepperfryExtractor scrapes Pepperfry, the furniture source.
type pepperfryExtractor struct {
	client *Client
}

func (p *pepperfryExtractor) Name() string { return category.SourcePepperfry }

func (p *pepperfryExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	searchURL := "https://www.pepperfry.com/site_product/search?q=" + url.QueryEscape(query)

	doc, err := p.client.GetDocument(ctx, p.Name(), searchURL, "")
	if err != nil {
		return nil, err
	}

	cards := findByClassPattern(doc.Selection, "div", pepperfryCardClass)

	page := newPageOutcome(pepperfryMaxRecords)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := p.parseCard(card, categoryTag)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(p.Name()), nil
}

func (p *pepperfryExtractor) parseCard(card *goquery.Selection, categoryTag string) (model.ProductRecord, error) {
	titleTag := card.Find("a[href]").First()
	title := cleanText(titleTag.AttrOr("title", ""))
	if title == "" {
		title = cleanText(findByClassPattern(card, "div,h3,p", regexp.MustCompile(`product-name|prd-name`)).First().Text())
	}
	if title == "" || len(title) < 5 {
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	price := ParsePrice(findByClassPattern(card, "span,div", pepperfryPriceClass).First().Text())
	if price == 0 {
		return model.ProductRecord{}, fmt.Errorf("no parseable price")
	}

	link := titleTag.AttrOr("href", "")
	if link != "" && !strings.HasPrefix(link, "http") {
		link = "https://www.pepperfry.com" + link
	}
	image, _ := card.Find("img").First().Attr("src")

	return model.ProductRecord{
		Title:    title,
		Category: categoryTag,
		Price:    price,
		Currency: "INR",
		URL:      link,
		Image:    image,
		Source:   p.Name(),
		Type:     model.TypeRetail,
	}, nil
}
