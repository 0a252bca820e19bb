package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/normalize"
)

// RowExtractor maps table-row index listings (torrent index style) into
// candidate records. These sources expose everything, including the magnet
// link, in the listing itself, so rows feed the direct-insert path.
type RowExtractor struct {
	BaseURL   string
	Selectors config.RowSelectors
	Rules     normalize.TagRules
	Log       *zap.Logger
}

// ExtractPage parses one listing page and returns its rows. An empty slice
// means the page has no content.
func (e *RowExtractor) ExtractPage(html string) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse row listing: %w", err)
	}

	var items []Item
	doc.Find(e.Selectors.ItemRow).Each(func(_ int, row *goquery.Selection) {
		items = append(items, e.extractRow(row))
	})
	return items, nil
}

func (e *RowExtractor) extractRow(row *goquery.Selection) Item {
	c := Candidate{}
	c.Title = strings.TrimSpace(row.Find(e.Selectors.Title).First().Text())

	if href, ok := row.Find(e.Selectors.PostURL).First().Attr("href"); ok && href != "" {
		c.PostURL = resolveURL(e.BaseURL, href)
	}
	if href, ok := row.Find(e.Selectors.MagnetLink).First().Attr("href"); ok {
		c.MagnetLink = href
	}
	c.FileSize = strings.TrimSpace(row.Find(e.Selectors.FileSize).First().Text())
	c.PublishDate = e.extractDate(row)
	c.ItemNumber = ItemNumberStrict(c.Title)

	tags := normalize.ClassifyTags(c.Title, e.Rules)
	e.Log.Info("Extracted row", zap.String("item_number", orDefault(c.ItemNumber, "N/A")))
	e.Log.Debug("Full extract", zap.String("url", c.PostURL),
		zap.String("title", c.Title), zap.Strings("tags", tags))
	return Item{Candidate: c, Tags: tags}
}

// extractDate prefers the machine-readable data-timestamp attribute over
// the human-formatted cell text.
func (e *RowExtractor) extractDate(row *goquery.Selection) string {
	el := row.Find(e.Selectors.PublishDate).First()
	raw := ""
	if ts, ok := el.Attr("data-timestamp"); ok && ts != "" {
		raw = ts
	} else {
		raw = strings.TrimSpace(el.Text())
	}
	if raw == "" {
		return ""
	}
	normalized, ok := normalize.Date(raw)
	if !ok {
		e.Log.Warn("Unparseable publish date", zap.String("raw", raw))
	}
	return normalized
}
