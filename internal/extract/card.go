package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/normalize"
)

// defaults keep older site configs without a card selector block working.
const (
	defaultCardSelector      = "div.card.mb-3"
	defaultCardTitleSelector = "h5.title.is-4.is-spaced a"
	defaultCardSizeSelector  = "h5.title span.is-size-6"
	defaultCardDateSelector  = "p.subtitle.is-6 a"
	defaultCardMagnetSel     = `a[title="Download Magnet"]`
	defaultCardTorrentSel    = `a[title="Download .torrent"]`
	defaultCardImageSelector = "img.image.lazy"
	defaultCardImageAttr     = "data-src"
)

// CardExtractor maps card-listing pages into candidate records, one per
// card. Cards may expose a magnet link directly or only a .torrent link;
// the torrent URL is carried along for the orchestrator's fallback path.
type CardExtractor struct {
	BaseURL   string
	Selectors config.CardSelectors
	Rules     normalize.TagRules
	Log       *zap.Logger
}

// ExtractPage parses one listing page and returns its cards. An empty slice
// means the page has no content (a run-termination signal, not an error).
func (e *CardExtractor) ExtractPage(html string) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse card listing: %w", err)
	}

	var items []Item
	doc.Find(orDefault(e.Selectors.Card, defaultCardSelector)).Each(func(_ int, card *goquery.Selection) {
		items = append(items, e.extractCard(card))
	})
	return items, nil
}

func (e *CardExtractor) extractCard(card *goquery.Selection) Item {
	c := Candidate{}

	titleSel := orDefault(e.Selectors.TitleLink, defaultCardTitleSelector)
	titleEl := card.Find(titleSel).First()
	c.Title = strings.TrimSpace(titleEl.Text())
	if href, ok := titleEl.Attr("href"); ok && href != "" {
		c.PostURL = resolveURL(e.BaseURL, href)
	}

	c.FileSize = strings.TrimSpace(card.Find(orDefault(e.Selectors.Size, defaultCardSizeSelector)).First().Text())
	c.PublishDate = e.extractDate(card)
	c.ItemNumber = ItemNumber(c.Title)

	if href, ok := card.Find(orDefault(e.Selectors.Magnet, defaultCardMagnetSel)).First().Attr("href"); ok {
		c.MagnetLink = href
	}
	if href, ok := card.Find(orDefault(e.Selectors.Torrent, defaultCardTorrentSel)).First().Attr("href"); ok && href != "" {
		c.TorrentURL = resolveURL(e.BaseURL, href)
	}

	if img := card.Find(orDefault(e.Selectors.Image, defaultCardImageSelector)).First(); img.Length() > 0 {
		src := firstAttr(img, orDefault(e.Selectors.ImageAttr, defaultCardImageAttr), "src")
		c.CoverURL = resolveURL(e.BaseURL, src)
	}

	tags := normalize.ClassifyTags(c.Title, e.Rules)
	e.Log.Info("Extracted card", zap.String("item_number", orDefault(c.ItemNumber, "N/A")))
	return Item{Candidate: c, Tags: tags}
}

// extractDate reads the date element's text, falling back to its title
// attribute (some sites bury the full date there).
func (e *CardExtractor) extractDate(card *goquery.Selection) string {
	el := card.Find(orDefault(e.Selectors.Date, defaultCardDateSelector)).First()
	raw := strings.TrimSpace(el.Text())
	if raw == "" {
		if title, ok := el.Attr("title"); ok {
			raw = strings.TrimSpace(title)
		}
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

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
