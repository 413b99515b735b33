package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/guarzo/priceatlas/internal/category"
	"github.com/guarzo/priceatlas/internal/model"
)

const amazonMaxRecords = 8

// amazonExtractor scrapes Amazon.in search results. It is the flagship
// source: the only one with a retry, trying a stable desktop UA first
// and a rotated one second, and it detects CAPTCHA interstitials so a
// blocked page is retried rather than parsed.
type amazonExtractor struct {
	client *Client
}

func (a *amazonExtractor) Name() string { return category.SourceAmazon }

func (a *amazonExtractor) Extract(ctx context.Context, query, categoryTag string) ([]model.ProductRecord, error) {
	searchURL := "https://www.amazon.in/s?k=" + url.QueryEscape(query)

	userAgents := []string{FixedDesktopUA(), RandomDesktopUA()}

	var lastErr error
	for attempt, ua := range userAgents {
		doc, err := a.client.GetDocument(ctx, a.Name(), searchURL, ua)
		if err != nil {
			lastErr = err
			continue
		}

		if isCaptchaPage(doc) {
			log.Debug().Int("attempt", attempt+1).Msg("scrape: amazon served a captcha, rotating user agent")
			lastErr = fmt.Errorf("amazon served a captcha page")
			continue
		}

		records := a.parseResults(doc, categoryTag)
		if len(records) == 0 {
			lastErr = fmt.Errorf("no products parsed from amazon results")
			continue
		}
		return records, nil
	}

	return nil, fmt.Errorf("amazon: all attempts failed: %w", lastErr)
}

func isCaptchaPage(doc *goquery.Document) bool {
	title := strings.ToLower(doc.Find("title").Text())
	if strings.Contains(title, "robot check") {
		return true
	}
	return doc.Find("form[action*='validateCaptcha']").Length() > 0
}

func (a *amazonExtractor) parseResults(doc *goquery.Document, categoryTag string) []model.ProductRecord {
	// Organic results first; sponsored cards lack the component type but
	// still live in s-result-item.
	cards := doc.Find("div[data-component-type='s-search-result']")
	if cards.Length() == 0 {
		cards = doc.Find("div.s-result-item")
	}

	page := newPageOutcome(amazonMaxRecords)
	cards.EachWithBreak(func(_ int, card *goquery.Selection) bool {
		rec, err := a.parseCard(card, categoryTag)
		if err != nil {
			page.skip(err.Error())
			return true
		}
		page.keep(rec)
		return !page.full()
	})
	return page.done(a.Name())
}

func (a *amazonExtractor) parseCard(card *goquery.Selection, categoryTag string) (model.ProductRecord, error) {
	title := cleanText(card.Find("h2").First().Text())
	if title == "" {
		return model.ProductRecord{}, fmt.Errorf("missing title")
	}

	price := ParsePrice(card.Find("span.a-price-whole").First().Text())
	if price == 0 {
		return model.ProductRecord{}, fmt.Errorf("no parseable price")
	}

	link, _ := card.Find("a.a-link-normal").First().Attr("href")
	if link != "" && !strings.HasPrefix(link, "http") {
		link = "https://www.amazon.in" + link
	}

	return model.ProductRecord{
		Title:    title,
		Category: categoryTag,
		Price:    price,
		Currency: "INR",
		URL:      link,
		Image:    amazonImage(card),
		Source:   a.Name(),
		Type:     model.TypeRetail,
	}, nil
}

// amazonImage prefers src but falls back to the first srcset URL when
// the lazy loader left a grey pixel in place.
func amazonImage(card *goquery.Selection) string {
	img := card.Find("img.s-image").First()
	src, _ := img.Attr("src")
	if src == "" || strings.Contains(src, "grey-pixel") {
		if srcset, ok := img.Attr("srcset"); ok {
			if fields := strings.Fields(srcset); len(fields) > 0 {
				return fields[0]
			}
		}
	}
	return src
}
