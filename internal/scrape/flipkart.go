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

const flipkartMaxRecords = 8

// Flipkart's obfuscated class names churn between deployments, so the
// structural bits are matched by pattern rather than exact class.
var (
	flipkartPriceClass = regexp.MustCompile(`_30jeq3|Nx9bqj`)
	flipkartTitleClass = regexp.MustCompile(`_4rR01T|s1Q9rs|IRpwTa|KzDlHZ|wjcEIp`)
)

type flipkartExtractor struct {
	client *Client
}

func (f *flipkartExtractor) Name() string { return category.SourceFlipkart }

func (f *flipkartExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	searchURL := "https://www.flipkart.com/search?q=" + url.QueryEscape(query)

	doc, err := f.client.GetDocument(ctx, f.Name(), searchURL, "")
	if err != nil {
		return nil, err
	}

	page := newPageOutcome(flipkartMaxRecords)
	doc.Find("div[data-id]").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := f.parseCard(card, categoryTag)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(f.Name()), nil
}

func (f *flipkartExtractor) parseCard(card *goquery.Selection, categoryTag string) (model.ProductRecord, error) {
	title := cleanText(findByClassPattern(card, "div,a", flipkartTitleClass).First().Text())
	if title == "" {
		// Product anchors carry the name in the title attribute on grid
		// layouts.
		title, _ = card.Find("a[title]").First().Attr("title")
		title = cleanText(title)
	}
	if title == "" {
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	price := ParsePrice(findByClassPattern(card, "div", flipkartPriceClass).First().Text())
	if price == 0 {
		return model.ProductRecord{}, fmt.Errorf("no parseable price")
	}

	link, _ := card.Find("a[href]").First().Attr("href")
	if link != "" && !strings.HasPrefix(link, "http") {
		link = "https://www.flipkart.com" + link
	}
	image, _ := card.Find("img").First().Attr("src")

	return model.ProductRecord{
		Title:    title,
		Category: categoryTag,
		Price:    price,
		Currency: "INR",
		URL:      link,
		Image:    image,
		Source:   f.Name(),
		Type:     model.TypeRetail,
	}, nil
}

// findByClassPattern selects elements whose class attribute matches a
// pattern, tolerating minor markup drift the way exact selectors cannot.
func findByClassPattern(root *goquery.Selection, tags string, pattern *regexp.Regexp) *goquery.Selection {
	return root.Find(tags).FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, ok := s.Attr("class")
		return ok && pattern.MatchString(class)
	})
}
